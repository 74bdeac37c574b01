// ABOUTME: Workout and WorkoutEvent models for recorded activities.
// ABOUTME: Workouts carry their time range and any device-recorded events.
package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ActivityKind identifies the type of activity a workout recorded.
type ActivityKind string

const (
	ActivityRunning  ActivityKind = "running"
	ActivityWalking  ActivityKind = "walking"
	ActivityCycling  ActivityKind = "cycling"
	ActivityHiking   ActivityKind = "hiking"
	ActivitySwimming ActivityKind = "swimming"
	ActivityOther    ActivityKind = "other"
)

// AllActivityKinds returns all valid activity kinds.
var AllActivityKinds = []ActivityKind{
	ActivityRunning, ActivityWalking, ActivityCycling,
	ActivityHiking, ActivitySwimming, ActivityOther,
}

// ParseActivityKind maps a user supplied string onto an ActivityKind.
// Short aliases like "run" and "ride" are accepted.
func ParseActivityKind(s string) (ActivityKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "running", "run":
		return ActivityRunning, true
	case "walking", "walk":
		return ActivityWalking, true
	case "cycling", "ride", "bike":
		return ActivityCycling, true
	case "hiking", "hike":
		return ActivityHiking, true
	case "swimming", "swim":
		return ActivitySwimming, true
	case "other":
		return ActivityOther, true
	}
	return "", false
}

// EventKind identifies a workout event recorded by the source device.
type EventKind string

const (
	EventSegment EventKind = "segment"
	EventLap     EventKind = "lap"
	EventPause   EventKind = "pause"
	EventResume  EventKind = "resume"
	EventMarker  EventKind = "marker"
)

// MetadataDistanceMeters is the event metadata key holding a segment's distance.
const MetadataDistanceMeters = "distance_meters"

// WorkoutEvent is an event the device recorded during a workout.
type WorkoutEvent struct {
	Kind      EventKind         `json:"kind" yaml:"kind"`
	StartedAt time.Time         `json:"started_at" yaml:"started_at"`
	EndedAt   time.Time         `json:"ended_at" yaml:"ended_at"`
	Metadata  map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// NewSegmentEvent creates a segment event covering the given interval.
func NewSegmentEvent(start, end time.Time, meters float64) WorkoutEvent {
	return WorkoutEvent{
		Kind:      EventSegment,
		StartedAt: start,
		EndedAt:   end,
		Metadata: map[string]string{
			MetadataDistanceMeters: strconv.FormatFloat(meters, 'f', -1, 64),
		},
	}
}

// Workout represents one recorded activity.
type Workout struct {
	ID        uuid.UUID      `json:"id" yaml:"id"`
	Kind      ActivityKind   `json:"kind" yaml:"kind"`
	StartedAt time.Time      `json:"started_at" yaml:"started_at"`
	EndedAt   time.Time      `json:"ended_at" yaml:"ended_at"`
	Source    *string        `json:"source,omitempty" yaml:"source,omitempty"`
	Notes     *string        `json:"notes,omitempty" yaml:"notes,omitempty"`
	Events    []WorkoutEvent `json:"events,omitempty" yaml:"events,omitempty"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
}

// NewWorkout creates a new Workout with a generated UUID.
func NewWorkout(kind ActivityKind, start, end time.Time) *Workout {
	return &Workout{
		ID:        uuid.New(),
		Kind:      kind,
		StartedAt: start,
		EndedAt:   end,
		CreatedAt: time.Now(),
	}
}

// WithNotes sets notes on the workout.
func (w *Workout) WithNotes(notes string) *Workout {
	w.Notes = &notes
	return w
}

// WithSource records where the workout came from (device, file, app).
func (w *Workout) WithSource(source string) *Workout {
	w.Source = &source
	return w
}

// WithEvents appends device-recorded events.
func (w *Workout) WithEvents(events ...WorkoutEvent) *Workout {
	w.Events = append(w.Events, events...)
	return w
}

// Duration is the wall-clock length of the workout.
func (w *Workout) Duration() time.Duration {
	return w.EndedAt.Sub(w.StartedAt)
}
