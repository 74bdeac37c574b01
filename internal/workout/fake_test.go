// ABOUTME: In-memory query.Source used by the workout tests.
// ABOUTME: Supports injected failures, blocking branches, and late deliveries.
package workout

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pace/internal/models"
	"github.com/harperreed/pace/internal/query"
)

type fakeSource struct {
	workouts  []models.Workout
	distance  map[uuid.UUID][]models.DistanceSample
	heartRate []models.HeartRateSample
	routes    map[uuid.UUID][]models.Route
	// points holds each route's batches in delivery order.
	points map[uuid.UUID][][]models.LocationPoint
	// pointDelay pauses before each batch of a route to force interleaving.
	pointDelay map[uuid.UUID]time.Duration

	workoutsErr  error
	distanceErr  error
	heartRateErr error
	routesErr    error
	pointsErr    map[uuid.UUID]error

	// blockHeartRate makes QueryHeartRate wait for cancellation.
	blockHeartRate bool

	mu             sync.Mutex
	cancelled      bool
	retained       []query.DeliverFunc[models.HeartRateSample]
	retainDelivery bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		distance:   map[uuid.UUID][]models.DistanceSample{},
		routes:     map[uuid.UUID][]models.Route{},
		points:     map[uuid.UUID][][]models.LocationPoint{},
		pointDelay: map[uuid.UUID]time.Duration{},
		pointsErr:  map[uuid.UUID]error{},
	}
}

// addRoute registers a route for w whose points arrive in the given batches.
func (f *fakeSource) addRoute(w models.Workout, batches ...[]models.LocationPoint) models.Route {
	r := *models.NewRoute(w.ID, w.StartedAt, w.EndedAt)
	f.routes[w.ID] = append(f.routes[w.ID], r)
	f.points[r.ID] = batches
	return r
}

func (f *fakeSource) wasCancelled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled
}

func (f *fakeSource) QueryWorkouts(ctx context.Context, q query.Query, deliver query.DeliverFunc[models.Workout]) error {
	if f.workoutsErr != nil {
		return f.workoutsErr
	}
	var out []models.Workout
	for _, w := range f.workouts {
		if q.Predicate.IDPrefix != "" && !strings.HasPrefix(w.ID.String(), q.Predicate.IDPrefix) {
			continue
		}
		if q.Predicate.ActivityKind != "" && w.Kind != q.Predicate.ActivityKind {
			continue
		}
		out = append(out, w)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Sort.Descending {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return query.Batches(out, 1, deliver)
}

func (f *fakeSource) QueryDistance(ctx context.Context, q query.Query, deliver query.DeliverFunc[models.DistanceSample]) error {
	if f.distanceErr != nil {
		return f.distanceErr
	}
	return query.Batches(f.distance[q.Predicate.WorkoutID], 2, deliver)
}

func (f *fakeSource) QueryHeartRate(ctx context.Context, q query.Query, deliver query.DeliverFunc[models.HeartRateSample]) error {
	if f.blockHeartRate {
		<-ctx.Done()
		f.mu.Lock()
		f.cancelled = true
		f.mu.Unlock()
		return ctx.Err()
	}
	if f.heartRateErr != nil {
		return f.heartRateErr
	}
	if f.retainDelivery {
		f.mu.Lock()
		f.retained = append(f.retained, deliver)
		f.mu.Unlock()
	}
	var out []models.HeartRateSample
	for _, hr := range f.heartRate {
		if hr.EndedAt.Before(q.Predicate.Start) || hr.StartedAt.After(q.Predicate.End) {
			continue
		}
		out = append(out, hr)
	}
	return query.Batches(out, 3, deliver)
}

func (f *fakeSource) QueryRoutes(ctx context.Context, q query.Query, deliver query.DeliverFunc[models.Route]) error {
	if f.routesErr != nil {
		return f.routesErr
	}
	return query.Batches(f.routes[q.Predicate.WorkoutID], 1, deliver)
}

func (f *fakeSource) QueryLocations(ctx context.Context, q query.Query, deliver query.DeliverFunc[models.LocationPoint]) error {
	id := q.Predicate.RouteID
	for _, batch := range f.points[id] {
		if d := f.pointDelay[id]; d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := deliver(batch); err != nil {
			return err
		}
	}
	return f.pointsErr[id]
}

var _ query.Source = (*fakeSource)(nil)
