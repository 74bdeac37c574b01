// ABOUTME: Converts recorded activity files into workouts with samples and routes.
// ABOUTME: Shared types and the save path used by the GPX and FIT readers.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/pace/internal/models"
	"github.com/harperreed/pace/internal/storage"
)

// Format is an importable file format.
type Format string

const (
	FormatGPX  Format = "gpx"
	FormatFIT  Format = "fit"
	FormatJSON Format = "json"
)

// ErrNoTrackPoints is returned when a file has no timestamped samples.
var ErrNoTrackPoints = errors.New("no timestamped track points")

// Activity is one imported workout and the heart rate recorded during it.
type Activity struct {
	Record    storage.WorkoutRecord
	HeartRate []models.HeartRateSample
}

// Export wraps the activity in the backup format so it can be loaded.
func (a *Activity) Export() *storage.ExportData {
	return &storage.ExportData{
		Version:    storage.ExportVersion,
		ExportedAt: time.Now(),
		Tool:       "pace",
		Workouts:   []storage.WorkoutRecord{a.Record},
		HeartRate:  a.HeartRate,
	}
}

// Save writes the activity to dst.
func Save(ctx context.Context, dst storage.Writer, a *Activity) (*storage.ImportSummary, error) {
	return storage.Load(ctx, dst, a.Export())
}

// DetectFormat picks the format from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gpx":
		return FormatGPX, nil
	case ".fit":
		return FormatFIT, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported file type %q (expected .gpx, .fit, or .json)", filepath.Ext(path))
	}
}

// ReadFile parses a GPX or FIT file. kind overrides the activity kind found
// in the file when non-empty.
func ReadFile(path string, kind models.ActivityKind) (*Activity, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var activity *Activity
	switch format {
	case FormatGPX:
		activity, err = ParseGPX(data, kind)
	case FormatFIT:
		activity, err = ParseFIT(data, kind)
	default:
		return nil, fmt.Errorf("%s files hold backups, not activities", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return activity, nil
}

// routeRecord builds a route spanning the given points.
func routeRecord(w models.Workout, points []models.LocationPoint) storage.RouteRecord {
	route := models.NewRoute(w.ID, points[0].Timestamp, points[len(points)-1].Timestamp)
	return storage.RouteRecord{Route: *route, Points: points}
}
