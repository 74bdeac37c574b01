// ABOUTME: Derived models: the joined workout detail and split events.
// ABOUTME: Both are computed on request and never written back to the store.
package models

import (
	"strconv"
	"time"
)

// WorkoutDetail is a workout together with its location and heart rate tracks.
type WorkoutDetail struct {
	Workout   Workout           `json:"workout" yaml:"workout"`
	Locations []LocationPoint   `json:"locations" yaml:"locations"`
	HeartRate []HeartRateSample `json:"heart_rate" yaml:"heart_rate"`
}

// SplitEvent is a fixed-distance segment of a workout.
type SplitEvent struct {
	Kind            EventKind         `json:"kind" yaml:"kind"`
	StartedAt       time.Time         `json:"started_at" yaml:"started_at"`
	EndedAt         time.Time         `json:"ended_at" yaml:"ended_at"`
	DistanceMeters  float64           `json:"distance_meters" yaml:"distance_meters"`
	DurationSeconds float64           `json:"duration_seconds" yaml:"duration_seconds"`
	Metadata        map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Pace returns seconds per meter, or 0 when no distance was covered.
func (e SplitEvent) Pace() float64 {
	if e.DistanceMeters <= 0 {
		return 0
	}
	return e.DurationSeconds / e.DistanceMeters
}

// SplitFromEvent converts a recorded segment event into a SplitEvent.
// Metadata is kept verbatim; the distance is read from it when present.
func SplitFromEvent(ev WorkoutEvent) SplitEvent {
	split := SplitEvent{
		Kind:            ev.Kind,
		StartedAt:       ev.StartedAt,
		EndedAt:         ev.EndedAt,
		DurationSeconds: ev.EndedAt.Sub(ev.StartedAt).Seconds(),
		Metadata:        ev.Metadata,
	}
	if raw, ok := ev.Metadata[MetadataDistanceMeters]; ok {
		if meters, err := strconv.ParseFloat(raw, 64); err == nil {
			split.DistanceMeters = meters
		}
	}
	return split
}
