// ABOUTME: FIT activity import using tormoder/fit.
// ABOUTME: Records become points, distance deltas, and heart rate; laps become segment events.
package importer

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/harperreed/pace/internal/models"
	"github.com/tormoder/fit"
)

// ParseFIT converts a FIT activity file into an Activity.
func ParseFIT(data []byte, kind models.ActivityKind) (*Activity, error) {
	decoded, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}
	file, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}

	var (
		points    []models.LocationPoint
		distance  []models.DistanceSample
		heartRate []models.HeartRateSample
		start     time.Time
		end       time.Time

		lastTS       time.Time
		lastDistance = math.NaN()
	)

	for _, rec := range file.Records {
		if rec == nil {
			continue
		}
		ts := validTimeOrZero(rec.Timestamp)
		if ts.IsZero() {
			continue
		}
		ts = ts.UTC()
		if start.IsZero() {
			start = ts
		}
		end = ts

		if !rec.PositionLat.Invalid() && !rec.PositionLong.Invalid() {
			p := models.LocationPoint{
				Timestamp: ts,
				Latitude:  rec.PositionLat.Degrees(),
				Longitude: rec.PositionLong.Degrees(),
			}
			if alt := rec.GetEnhancedAltitudeScaled(); isFinite(alt) {
				p.Altitude = &alt
			} else if alt := rec.GetAltitudeScaled(); isFinite(alt) {
				p.Altitude = &alt
			}
			if speed := rec.GetEnhancedSpeedScaled(); isFinite(speed) && speed >= 0 {
				p.Speed = &speed
			} else if speed := rec.GetSpeedScaled(); isFinite(speed) && speed >= 0 {
				p.Speed = &speed
			}
			points = append(points, p)
		}

		if rec.HeartRate != math.MaxUint8 && rec.HeartRate > 0 {
			heartRate = append(heartRate, models.NewHeartRateSample(ts, float64(rec.HeartRate)))
		}

		// Records carry cumulative distance; samples are the deltas.
		if d := rec.GetDistanceScaled(); isFinite(d) {
			if isFinite(lastDistance) && ts.After(lastTS) {
				distance = append(distance, models.DistanceSample{
					StartedAt: lastTS,
					EndedAt:   ts,
					Meters:    math.Max(d-lastDistance, 0),
				})
			}
			lastDistance = d
			lastTS = ts
		}
	}

	if start.IsZero() {
		return nil, ErrNoTrackPoints
	}

	fileKind := models.ActivityOther
	if len(file.Sessions) > 0 && file.Sessions[0] != nil {
		session := file.Sessions[0]
		fileKind = kindFromSport(session.Sport)
		if t := validTimeOrZero(session.StartTime); !t.IsZero() && t.Before(start) {
			start = t.UTC()
		}
		if t := validTimeOrZero(session.Timestamp); !t.IsZero() && t.After(end) {
			end = t.UTC()
		}
	}
	if kind == "" {
		kind = fileKind
	}

	w := models.NewWorkout(kind, start, end).WithSource("fit").WithEvents(lapEvents(file.Laps)...)

	activity := &Activity{HeartRate: heartRate}
	activity.Record.Workout = *w
	activity.Record.Distance = distance
	if len(points) > 0 {
		activity.Record.Routes = append(activity.Record.Routes, routeRecord(*w, points))
	}
	return activity, nil
}

// lapEvents turns device laps into recorded segment events.
func lapEvents(laps []*fit.LapMsg) []models.WorkoutEvent {
	var events []models.WorkoutEvent
	for _, lap := range laps {
		if lap == nil {
			continue
		}
		start := validTimeOrZero(lap.StartTime)
		end := validTimeOrZero(lap.Timestamp)
		if start.IsZero() || end.IsZero() || end.Before(start) {
			continue
		}
		meters := lap.GetTotalDistanceScaled()
		if !isFinite(meters) || meters < 0 {
			meters = 0
		}
		events = append(events, models.NewSegmentEvent(start.UTC(), end.UTC(), meters))
	}
	return events
}

func kindFromSport(sport fit.Sport) models.ActivityKind {
	switch sport {
	case fit.SportRunning:
		return models.ActivityRunning
	case fit.SportWalking:
		return models.ActivityWalking
	case fit.SportCycling:
		return models.ActivityCycling
	case fit.SportHiking:
		return models.ActivityHiking
	case fit.SportSwimming:
		return models.ActivitySwimming
	default:
		return models.ActivityOther
	}
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
