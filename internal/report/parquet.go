// ABOUTME: Parquet encodings of splits and route locations for analysis tools.
// ABOUTME: Written to an in-memory buffer with snappy compression.
package report

import (
	"math"
	"time"

	"github.com/harperreed/pace/internal/models"
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type splitParquetRow struct {
	Index           int32   `parquet:"name=index, type=INT32"`
	StartedAt       string  `parquet:"name=started_at, type=BYTE_ARRAY, convertedtype=UTF8"`
	EndedAt         string  `parquet:"name=ended_at, type=BYTE_ARRAY, convertedtype=UTF8"`
	DistanceMeters  float64 `parquet:"name=distance_meters, type=DOUBLE"`
	DurationSeconds float64 `parquet:"name=duration_seconds, type=DOUBLE"`
	SecondsPerKm    float64 `parquet:"name=seconds_per_km, type=DOUBLE"`
}

type locationParquetRow struct {
	Timestamp string  `parquet:"name=timestamp, type=BYTE_ARRAY, convertedtype=UTF8"`
	Latitude  float64 `parquet:"name=latitude, type=DOUBLE"`
	Longitude float64 `parquet:"name=longitude, type=DOUBLE"`
	Altitude  float64 `parquet:"name=altitude, type=DOUBLE"`
	Speed     float64 `parquet:"name=speed, type=DOUBLE"`
	HeartRate float64 `parquet:"name=heart_rate, type=DOUBLE"`
}

// SplitsParquet encodes splits as a parquet file.
func SplitsParquet(splits []models.SplitEvent) ([]byte, error) {
	rows := make([]any, 0, len(splits))
	for i, s := range splits {
		rows = append(rows, splitParquetRow{
			Index:           int32(i + 1),
			StartedAt:       s.StartedAt.UTC().Format(time.RFC3339Nano),
			EndedAt:         s.EndedAt.UTC().Format(time.RFC3339Nano),
			DistanceMeters:  s.DistanceMeters,
			DurationSeconds: s.DurationSeconds,
			SecondsPerKm:    s.Pace() * 1000,
		})
	}
	return marshalParquet(new(splitParquetRow), rows)
}

// LocationsParquet encodes a detail's locations, each paired with the most
// recent heart rate reading at or before it. Missing values are NaN.
func LocationsParquet(detail *models.WorkoutDetail) ([]byte, error) {
	rows := make([]any, 0, len(detail.Locations))
	hr := detail.HeartRate
	next := 0
	current := math.NaN()
	for _, p := range detail.Locations {
		for next < len(hr) && !hr[next].StartedAt.After(p.Timestamp) {
			current = hr[next].Value
			next++
		}
		rows = append(rows, locationParquetRow{
			Timestamp: p.Timestamp.UTC().Format(time.RFC3339Nano),
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Altitude:  valueOrNaN(p.Altitude),
			Speed:     valueOrNaN(p.Speed),
			HeartRate: current,
		})
	}
	return marshalParquet(new(locationParquetRow), rows)
}

func marshalParquet(schema any, rows []any) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, schema, 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
