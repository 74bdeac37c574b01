// ABOUTME: Sample models read from the activity store.
// ABOUTME: Distance deltas, heart rate readings, and route location points.
package models

import (
	"time"

	"github.com/google/uuid"
)

// HeartRateUnit is the unit heart rate samples are recorded in by default.
const HeartRateUnit = "count/min"

// DistanceSample is the distance accrued over one measurement interval.
type DistanceSample struct {
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	EndedAt   time.Time `json:"ended_at" yaml:"ended_at"`
	Meters    float64   `json:"meters" yaml:"meters"`
}

// Duration returns the length of the measurement interval.
func (s DistanceSample) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

// HeartRateSample is a single heart rate reading.
type HeartRateSample struct {
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	EndedAt   time.Time `json:"ended_at" yaml:"ended_at"`
	Value     float64   `json:"value" yaml:"value"`
	Unit      string    `json:"unit" yaml:"unit"`
}

// NewHeartRateSample creates an instantaneous reading in beats per minute.
func NewHeartRateSample(at time.Time, bpm float64) HeartRateSample {
	return HeartRateSample{
		StartedAt: at,
		EndedAt:   at,
		Value:     bpm,
		Unit:      HeartRateUnit,
	}
}

// Route groups the location points recorded for a workout.
// A workout may have several routes when recording was interrupted.
type Route struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	WorkoutID uuid.UUID `json:"workout_id" yaml:"workout_id"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	EndedAt   time.Time `json:"ended_at" yaml:"ended_at"`
}

// NewRoute creates a route for the given workout.
func NewRoute(workoutID uuid.UUID, start, end time.Time) *Route {
	return &Route{
		ID:        uuid.New(),
		WorkoutID: workoutID,
		StartedAt: start,
		EndedAt:   end,
	}
}

// LocationPoint is one geographic fix on a route.
// The optional fields are passed through as the device reported them.
type LocationPoint struct {
	Timestamp          time.Time `json:"timestamp" yaml:"timestamp"`
	Latitude           float64   `json:"latitude" yaml:"latitude"`
	Longitude          float64   `json:"longitude" yaml:"longitude"`
	Altitude           *float64  `json:"altitude,omitempty" yaml:"altitude,omitempty"`
	HorizontalAccuracy *float64  `json:"horizontal_accuracy,omitempty" yaml:"horizontal_accuracy,omitempty"`
	Speed              *float64  `json:"speed,omitempty" yaml:"speed,omitempty"`
	Course             *float64  `json:"course,omitempty" yaml:"course,omitempty"`
}
