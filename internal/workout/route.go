// ABOUTME: RouteAggregator drains every route of a workout into one location track.
// ABOUTME: Routes stream concurrently; the merged track is stable-sorted by time.
package workout

import (
	"context"
	"sort"

	"github.com/harperreed/pace/internal/models"
	"github.com/harperreed/pace/internal/query"
	"golang.org/x/sync/errgroup"
)

// RouteAggregator collects the location points of all routes of a workout.
type RouteAggregator struct {
	src      query.Source
	observer Observer
}

// NewRouteAggregator creates a RouteAggregator reading from src.
func NewRouteAggregator(src query.Source, observer Observer) *RouteAggregator {
	if observer == nil {
		observer = NopObserver{}
	}
	return &RouteAggregator{src: src, observer: observer}
}

// Aggregate returns every location point of every route of w, sorted
// ascending by timestamp. A workout without routes yields an empty slice.
// The first failing query fails the whole aggregation and cancels the rest.
func (a *RouteAggregator) Aggregate(ctx context.Context, w models.Workout) ([]models.LocationPoint, error) {
	routes, err := query.Collect(func(deliver query.DeliverFunc[models.Route]) error {
		return a.src.QueryRoutes(ctx, query.ForWorkout(query.KindRoute, w.ID), deliver)
	})
	if err != nil {
		return nil, query.UpstreamFailed("routes", err)
	}
	a.observer.Observe(EventRoutesListed, "workout", w.ID, "routes", len(routes))

	var acc query.Accumulator[models.LocationPoint]
	gen := acc.Begin()
	deliver := acc.Deliver(gen)

	g, gctx := errgroup.WithContext(ctx)
	for _, route := range routes {
		g.Go(func() error {
			q := query.Query{
				Kind:      query.KindLocation,
				Predicate: query.Predicate{RouteID: route.ID},
				Sort:      query.Sort{Field: query.SortStart},
			}
			err := a.src.QueryLocations(gctx, q, func(batch []models.LocationPoint) error {
				a.observer.Observe(EventLocationBatch, "route", route.ID, "points", len(batch))
				return deliver(batch)
			})
			if err != nil {
				return query.UpstreamFailed("route points", err)
			}
			return nil
		})
	}

	err = g.Wait()
	points := acc.Finish(gen)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	a.observer.Observe(EventLocationsReady, "workout", w.ID, "points", len(points))
	return points, nil
}
