// ABOUTME: Service exposes workout lookup, detail, and split operations.
// ABOUTME: Wires the aggregator, fetcher, joiner, and split calculator over one Source.
package workout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/pace/internal/models"
	"github.com/harperreed/pace/internal/query"
)

// PaceSource says where a list of splits came from.
type PaceSource string

const (
	PaceSourceRecorded   PaceSource = "recorded"
	PaceSourceCalculated PaceSource = "calculated"
)

// Service answers workout questions against a query.Source.
type Service struct {
	src           query.Source
	observer      Observer
	splitDistance float64
	joiner        *DetailJoiner
}

// Option configures a Service.
type Option func(*Service)

// WithObserver sets the observer events are reported to.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithSplitDistance sets the split distance used when callers pass none.
func WithSplitDistance(meters float64) Option {
	return func(s *Service) {
		if meters > 0 {
			s.splitDistance = meters
		}
	}
}

// NewService creates a Service reading from src.
func NewService(src query.Source, opts ...Option) *Service {
	s := &Service{
		src:           src,
		observer:      NopObserver{},
		splitDistance: DefaultSplitDistance,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.joiner = NewDetailJoiner(
		NewRouteAggregator(src, s.observer),
		NewHeartRateFetcher(src, s.observer),
		s.observer,
	)
	return s
}

// SplitDistance returns the default split distance in meters.
func (s *Service) SplitDistance() float64 {
	return s.splitDistance
}

// GetWorkoutDetail joins w's location and heart rate tracks.
func (s *Service) GetWorkoutDetail(ctx context.Context, w models.Workout) (*models.WorkoutDetail, error) {
	return s.joiner.Join(ctx, w)
}

// GetSplits calculates splits of splitDistance meters from w's distance
// samples. A non-positive splitDistance uses the service default.
func (s *Service) GetSplits(ctx context.Context, w models.Workout, splitDistance float64) ([]models.SplitEvent, error) {
	if splitDistance <= 0 {
		splitDistance = s.splitDistance
	}

	samples, err := query.Collect(func(deliver query.DeliverFunc[models.DistanceSample]) error {
		return s.src.QueryDistance(ctx, query.ForWorkout(query.KindDistance, w.ID), deliver)
	})
	if err != nil {
		return nil, query.UpstreamFailed("distance samples", err)
	}

	calc := NewSplitCalculator(w.StartedAt, splitDistance)
	state, splits := calc.Fold(samples)
	s.observer.Observe(EventSplitsCalculated,
		"workout", w.ID,
		"samples", len(samples),
		"splits", len(splits),
		"split_distance", calc.Distance(),
		"initial_drift", state.InitialDrift,
		"gaps", state.TotalGaps,
	)
	return splits, nil
}

// GetPrerecordedPaces returns the splits the recording device stored with w.
func (s *Service) GetPrerecordedPaces(w models.Workout) []models.SplitEvent {
	splits := PrerecordedSplits(w)
	s.observer.Observe(EventPrerecordedSplits, "workout", w.ID, "splits", len(splits))
	return splits
}

// Paces returns the recorded splits of w, or calculated ones when the
// device recorded none.
func (s *Service) Paces(ctx context.Context, w models.Workout, splitDistance float64) ([]models.SplitEvent, PaceSource, error) {
	if recorded := s.GetPrerecordedPaces(w); len(recorded) > 0 {
		return recorded, PaceSourceRecorded, nil
	}
	splits, err := s.GetSplits(ctx, w, splitDistance)
	if err != nil {
		return nil, PaceSourceCalculated, err
	}
	return splits, PaceSourceCalculated, nil
}

// FindWorkout looks up one workout by full ID or unique ID prefix.
func (s *Service) FindWorkout(ctx context.Context, idOrPrefix string) (models.Workout, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return models.Workout{}, fmt.Errorf("%w: empty workout ID", query.ErrNoWorkoutsFound)
	}

	q := query.Query{
		Kind:      query.KindWorkout,
		Predicate: query.Predicate{IDPrefix: idOrPrefix},
		Sort:      query.Sort{Field: query.SortStart},
		Limit:     2,
	}
	matches, err := query.Collect(func(deliver query.DeliverFunc[models.Workout]) error {
		return s.src.QueryWorkouts(ctx, q, deliver)
	})
	if err != nil {
		return models.Workout{}, query.UpstreamFailed("workouts", err)
	}

	switch len(matches) {
	case 0:
		return models.Workout{}, fmt.Errorf("%w: %s", query.ErrNoWorkoutsFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return models.Workout{}, fmt.Errorf("%w %s: matches multiple records", query.ErrAmbiguousWorkout, idOrPrefix)
	}
}

// ListFilter narrows ListWorkouts. Zero values do not filter; Limit 0 is unlimited.
type ListFilter struct {
	Kind  models.ActivityKind
	Since time.Time
	Until time.Time
	Limit int
}

// ListWorkouts returns workouts matching filter, most recent first.
// No matches is an empty slice, not an error.
func (s *Service) ListWorkouts(ctx context.Context, filter ListFilter) ([]models.Workout, error) {
	q := query.Query{
		Kind: query.KindWorkout,
		Predicate: query.Predicate{
			ActivityKind: filter.Kind,
			Start:        filter.Since,
			End:          filter.Until,
		},
		Sort:  query.Sort{Field: query.SortStart, Descending: true},
		Limit: filter.Limit,
	}
	workouts, err := query.Collect(func(deliver query.DeliverFunc[models.Workout]) error {
		return s.src.QueryWorkouts(ctx, q, deliver)
	})
	if err != nil {
		return nil, query.UpstreamFailed("workouts", err)
	}
	return workouts, nil
}

// LatestWorkout returns the most recent workout, optionally of one kind.
func (s *Service) LatestWorkout(ctx context.Context, kind models.ActivityKind) (models.Workout, error) {
	workouts, err := s.ListWorkouts(ctx, ListFilter{Kind: kind, Limit: 1})
	if err != nil {
		return models.Workout{}, err
	}
	if len(workouts) == 0 {
		return models.Workout{}, query.ErrNoWorkoutsFound
	}
	return workouts[0], nil
}
