// ABOUTME: Workout, sample, and route operations for the Badger store.
// ABOUTME: Handles cascade deletes manually since KV has no foreign keys.
package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pace/internal/models"
	"github.com/harperreed/pace/internal/query"
)

// CreateWorkout stores a new workout with its events.
func (s *Store) CreateWorkout(ctx context.Context, w *models.Workout) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal workout: %w", err)
	}
	if err := s.setNew(WorkoutPrefix+w.ID.String(), data); err != nil {
		return fmt.Errorf("create workout: %w", err)
	}
	return nil
}

// DeleteWorkout removes a workout with its samples, routes, and route points.
func (s *Store) DeleteWorkout(ctx context.Context, idOrPrefix string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := s.resolveID(WorkoutPrefix, idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}

	routes, err := s.listByPrefix(RoutePrefix + id + ":")
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	prefixes := []string{
		WorkoutPrefix + id,
		DistancePrefix + id + ":",
		RoutePrefix + id + ":",
	}
	decoded, err := decodeAll[models.Route](routes)
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	for _, r := range decoded {
		prefixes = append(prefixes, PointPrefix+r.ID.String()+":")
	}

	if err := s.deletePrefixes(prefixes...); err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	return nil
}

// AddDistanceSamples stores distance samples for a workout.
func (s *Store) AddDistanceSamples(ctx context.Context, workoutID uuid.UUID, samples []models.DistanceSample) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := encodeEntries(samples, func(models.DistanceSample) string {
		return DistancePrefix + workoutID.String() + ":" + uuid.NewString()
	})
	if err != nil {
		return fmt.Errorf("add distance samples: %w", err)
	}
	return s.set(entries)
}

// AddHeartRateSamples stores heart rate samples.
func (s *Store) AddHeartRateSamples(ctx context.Context, samples []models.HeartRateSample) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for i := range samples {
		if samples[i].Unit == "" {
			samples[i].Unit = models.HeartRateUnit
		}
	}
	entries, err := encodeEntries(samples, func(models.HeartRateSample) string {
		return HeartRatePrefix + uuid.NewString()
	})
	if err != nil {
		return fmt.Errorf("add heart rate samples: %w", err)
	}
	return s.set(entries)
}

// AddRoute stores a route and its points.
func (s *Store) AddRoute(ctx context.Context, route *models.Route, points []models.LocationPoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := encodeEntries(points, func(models.LocationPoint) string {
		return PointPrefix + route.ID.String() + ":" + uuid.NewString()
	})
	if err != nil {
		return fmt.Errorf("add route points: %w", err)
	}
	data, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("marshal route: %w", err)
	}
	entries[RoutePrefix+route.WorkoutID.String()+":"+route.ID.String()] = data
	return s.set(entries)
}

// QueryWorkouts delivers workouts matching q.
func (s *Store) QueryWorkouts(ctx context.Context, q query.Query, deliver query.DeliverFunc[models.Workout]) error {
	prefix := WorkoutPrefix
	switch {
	case q.Predicate.WorkoutID != uuid.Nil:
		prefix += q.Predicate.WorkoutID.String()
	case q.Predicate.IDPrefix != "":
		prefix += strings.ToLower(q.Predicate.IDPrefix)
	}
	return run(ctx, s, "query workouts", prefix, q, deliver,
		func(w models.Workout) bool {
			if q.Predicate.ActivityKind != "" && !strings.EqualFold(string(w.Kind), string(q.Predicate.ActivityKind)) {
				return false
			}
			return overlaps(q.Predicate, w.StartedAt, w.EndedAt)
		},
		func(w models.Workout) (time.Time, time.Time) { return w.StartedAt, w.EndedAt },
	)
}

// QueryDistance delivers distance samples matching q.
func (s *Store) QueryDistance(ctx context.Context, q query.Query, deliver query.DeliverFunc[models.DistanceSample]) error {
	prefix := DistancePrefix
	if q.Predicate.WorkoutID != uuid.Nil {
		prefix += q.Predicate.WorkoutID.String() + ":"
	}
	return run(ctx, s, "query distance samples", prefix, q, deliver,
		func(d models.DistanceSample) bool { return overlaps(q.Predicate, d.StartedAt, d.EndedAt) },
		func(d models.DistanceSample) (time.Time, time.Time) { return d.StartedAt, d.EndedAt },
	)
}

// QueryHeartRate delivers heart rate samples matching q by time range.
func (s *Store) QueryHeartRate(ctx context.Context, q query.Query, deliver query.DeliverFunc[models.HeartRateSample]) error {
	return run(ctx, s, "query heart rate samples", HeartRatePrefix, q, deliver,
		func(h models.HeartRateSample) bool { return overlaps(q.Predicate, h.StartedAt, h.EndedAt) },
		func(h models.HeartRateSample) (time.Time, time.Time) { return h.StartedAt, h.EndedAt },
	)
}

// QueryRoutes delivers routes matching q.
func (s *Store) QueryRoutes(ctx context.Context, q query.Query, deliver query.DeliverFunc[models.Route]) error {
	prefix := RoutePrefix
	if q.Predicate.WorkoutID != uuid.Nil {
		prefix += q.Predicate.WorkoutID.String() + ":"
	}
	return run(ctx, s, "query routes", prefix, q, deliver,
		func(r models.Route) bool {
			if q.Predicate.RouteID != uuid.Nil && r.ID != q.Predicate.RouteID {
				return false
			}
			return overlaps(q.Predicate, r.StartedAt, r.EndedAt)
		},
		func(r models.Route) (time.Time, time.Time) { return r.StartedAt, r.EndedAt },
	)
}

// QueryLocations delivers the points of the route named by q.Predicate.RouteID.
func (s *Store) QueryLocations(ctx context.Context, q query.Query, deliver query.DeliverFunc[models.LocationPoint]) error {
	prefix := PointPrefix
	if q.Predicate.RouteID != uuid.Nil {
		prefix += q.Predicate.RouteID.String() + ":"
	}
	return run(ctx, s, "query route points", prefix, q, deliver,
		func(p models.LocationPoint) bool { return overlaps(q.Predicate, p.Timestamp, p.Timestamp) },
		func(p models.LocationPoint) (time.Time, time.Time) { return p.Timestamp, p.Timestamp },
	)
}

// run lists records under prefix, filters, sorts, limits, and delivers them.
func run[T any](
	ctx context.Context,
	s *Store,
	op, prefix string,
	q query.Query,
	deliver query.DeliverFunc[T],
	keep func(T) bool,
	bounds func(T) (time.Time, time.Time),
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	values, err := s.listByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	decoded, err := decodeAll[T](values)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var items []T
	for _, item := range decoded {
		if keep(item) {
			items = append(items, item)
		}
	}

	key := func(i int) time.Time {
		start, end := bounds(items[i])
		if q.Sort.Field == query.SortEnd {
			return end
		}
		return start
	}
	sort.SliceStable(items, func(i, j int) bool {
		if q.Sort.Descending {
			return key(i).After(key(j))
		}
		return key(i).Before(key(j))
	})

	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}

	return query.Batches(items, s.batchSize, func(batch []T) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return deliver(batch)
	})
}

func overlaps(p query.Predicate, start, end time.Time) bool {
	if !p.Start.IsZero() && end.Before(p.Start) {
		return false
	}
	if !p.End.IsZero() && start.After(p.End) {
		return false
	}
	return true
}

func encodeEntries[T any](items []T, keyFor func(T) string) (map[string][]byte, error) {
	entries := make(map[string][]byte, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		entries[keyFor(item)] = data
	}
	return entries, nil
}
