// ABOUTME: Query contract consumed from the activity store.
// ABOUTME: Typed batch delivery per sample kind with predicate, sort, and limit.
package query

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pace/internal/models"
)

// Kind selects the sample type a query reads.
type Kind string

const (
	KindWorkout   Kind = "workout"
	KindDistance  Kind = "distance"
	KindHeartRate Kind = "heart_rate"
	KindRoute     Kind = "route"
	KindLocation  Kind = "location"
)

// SortField names the timestamp results are ordered by.
type SortField string

const (
	SortStart SortField = "start"
	SortEnd   SortField = "end"
)

// Sort orders query results.
type Sort struct {
	Field      SortField
	Descending bool
}

// Predicate narrows a query. Zero-valued fields do not filter.
// Start and End select records whose interval overlaps [Start, End].
type Predicate struct {
	WorkoutID    uuid.UUID
	IDPrefix     string
	RouteID      uuid.UUID
	ActivityKind models.ActivityKind
	Start        time.Time
	End          time.Time
}

// Query describes one request against the store. Limit 0 means unlimited.
type Query struct {
	Kind      Kind
	Predicate Predicate
	Sort      Sort
	Limit     int
}

// ForWorkout builds a query of the given kind restricted to one workout,
// sorted ascending by start time.
func ForWorkout(kind Kind, workoutID uuid.UUID) Query {
	return Query{
		Kind:      kind,
		Predicate: Predicate{WorkoutID: workoutID},
		Sort:      Sort{Field: SortStart},
	}
}

// ForRange builds a query of the given kind over [start, end],
// sorted ascending by end time.
func ForRange(kind Kind, start, end time.Time) Query {
	return Query{
		Kind:      kind,
		Predicate: Predicate{Start: start, End: end},
		Sort:      Sort{Field: SortEnd},
	}
}

// DeliverFunc receives one batch of results. Returning an error stops the
// query, and the query returns that error.
type DeliverFunc[T any] func(batch []T) error

// Source is the activity store. Each method delivers zero or more batches
// and then returns the terminal outcome: nil on success, an error otherwise.
// No batch may be delivered after the method returns.
type Source interface {
	QueryWorkouts(ctx context.Context, q Query, deliver DeliverFunc[models.Workout]) error
	QueryDistance(ctx context.Context, q Query, deliver DeliverFunc[models.DistanceSample]) error
	QueryHeartRate(ctx context.Context, q Query, deliver DeliverFunc[models.HeartRateSample]) error
	QueryRoutes(ctx context.Context, q Query, deliver DeliverFunc[models.Route]) error
	QueryLocations(ctx context.Context, q Query, deliver DeliverFunc[models.LocationPoint]) error
}

// Batches splits items into consecutive slices of at most size elements and
// hands each to deliver. A size of 0 or less delivers everything at once.
// An empty input delivers nothing.
func Batches[T any](items []T, size int, deliver DeliverFunc[T]) error {
	if size <= 0 {
		size = len(items)
	}
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		if err := deliver(items[start:end]); err != nil {
			return err
		}
	}
	return nil
}
