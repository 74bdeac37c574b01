// ABOUTME: Join barrier over two concurrent tasks and the DetailJoiner built on it.
// ABOUTME: Produces a WorkoutDetail only when both the route and heart rate branches succeed.
package workout

import (
	"context"

	"github.com/harperreed/pace/internal/models"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
)

// Join runs left and right concurrently and returns both results once both
// succeed. The first error cancels the other task's context and is returned
// alone; no partial result is returned with it.
func Join[A, B any](ctx context.Context, left func(context.Context) (A, error), right func(context.Context) (B, error)) (A, B, error) {
	var (
		a A
		b B
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := left(gctx)
		if err != nil {
			return err
		}
		a = v
		return nil
	})
	g.Go(func() error {
		v, err := right(gctx)
		if err != nil {
			return err
		}
		b = v
		return nil
	})

	if err := g.Wait(); err != nil {
		var (
			zeroA A
			zeroB B
		)
		return zeroA, zeroB, err
	}
	return a, b, nil
}

// DetailJoiner combines a workout's location and heart rate tracks.
type DetailJoiner struct {
	routes    *RouteAggregator
	heartRate *HeartRateFetcher
	observer  Observer
}

// NewDetailJoiner creates a DetailJoiner over the two branches.
func NewDetailJoiner(routes *RouteAggregator, heartRate *HeartRateFetcher, observer Observer) *DetailJoiner {
	if observer == nil {
		observer = NopObserver{}
	}
	return &DetailJoiner{routes: routes, heartRate: heartRate, observer: observer}
}

// Join builds the WorkoutDetail for w.
func (j *DetailJoiner) Join(ctx context.Context, w models.Workout) (*models.WorkoutDetail, error) {
	invocation := ulid.Make().String()
	j.observer.Observe(EventJoinStarted, "invocation", invocation, "workout", w.ID)

	locations, heartRate, err := Join(ctx,
		func(ctx context.Context) ([]models.LocationPoint, error) {
			return j.routes.Aggregate(ctx, w)
		},
		func(ctx context.Context) ([]models.HeartRateSample, error) {
			return j.heartRate.Fetch(ctx, w)
		},
	)
	if err != nil {
		j.observer.Observe(EventJoinFailed, "invocation", invocation, "workout", w.ID, "err", err)
		return nil, err
	}

	detail := &models.WorkoutDetail{
		Workout:   w,
		Locations: locations,
		HeartRate: heartRate,
	}
	j.observer.Observe(EventJoinFinished,
		"invocation", invocation,
		"workout", w.ID,
		"locations", len(locations),
		"heart_rate", len(heartRate),
	)
	return detail, nil
}
