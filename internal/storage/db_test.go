// ABOUTME: Tests for the SQLite Repository implementation.
// ABOUTME: Covers workout CRUD, batched sample queries, routes, and error mapping.
package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pace/internal/models"
	"github.com/harperreed/pace/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 5, 2, 6, 30, 0, 0, time.UTC)

// setupTestDB creates a test database in a temp directory.
func setupTestDB(t *testing.T, opts ...Option) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "pace.db"), opts...)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedWorkout(t *testing.T, db *DB, kind models.ActivityKind, start time.Time) *models.Workout {
	t.Helper()
	w := models.NewWorkout(kind, start, start.Add(30*time.Minute))
	if err := db.CreateWorkout(context.Background(), w); err != nil {
		t.Fatalf("CreateWorkout failed: %v", err)
	}
	return w
}

func collectWorkouts(t *testing.T, db *DB, q query.Query) []models.Workout {
	t.Helper()
	got, err := query.Collect(func(deliver query.DeliverFunc[models.Workout]) error {
		return db.QueryWorkouts(context.Background(), q, deliver)
	})
	require.NoError(t, err)
	return got
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "pace.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, path, db.Path())
	assert.Equal(t, DefaultBatchSize, db.batchSize)
}

func TestCreateAndQueryWorkout(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	w := models.NewWorkout(models.ActivityRunning, t0, t0.Add(45*time.Minute)).
		WithNotes("tempo").
		WithSource("watch").
		WithEvents(
			models.NewSegmentEvent(t0, t0.Add(5*time.Minute), 1000),
			models.WorkoutEvent{Kind: models.EventPause, StartedAt: t0.Add(10 * time.Minute), EndedAt: t0.Add(11 * time.Minute)},
		)
	require.NoError(t, db.CreateWorkout(ctx, w))

	got := collectWorkouts(t, db, query.ForWorkout(query.KindWorkout, w.ID))
	require.Len(t, got, 1)

	assert.Equal(t, w.ID, got[0].ID)
	assert.Equal(t, models.ActivityRunning, got[0].Kind)
	assert.True(t, got[0].StartedAt.Equal(t0))
	assert.True(t, got[0].EndedAt.Equal(t0.Add(45*time.Minute)))
	require.NotNil(t, got[0].Notes)
	assert.Equal(t, "tempo", *got[0].Notes)
	require.NotNil(t, got[0].Source)
	assert.Equal(t, "watch", *got[0].Source)

	require.Len(t, got[0].Events, 2)
	assert.Equal(t, models.EventSegment, got[0].Events[0].Kind)
	assert.Equal(t, "1000", got[0].Events[0].Metadata[models.MetadataDistanceMeters])
	assert.Equal(t, models.EventPause, got[0].Events[1].Kind)
	assert.Nil(t, got[0].Events[1].Metadata)
}

func TestQueryWorkoutsFilters(t *testing.T) {
	db := setupTestDB(t)

	run := seedWorkout(t, db, models.ActivityRunning, t0)
	ride := seedWorkout(t, db, models.ActivityCycling, t0.Add(24*time.Hour))
	seedWorkout(t, db, models.ActivityRunning, t0.Add(48*time.Hour))

	t.Run("by kind", func(t *testing.T) {
		got := collectWorkouts(t, db, query.Query{Kind: query.KindWorkout, Predicate: query.Predicate{ActivityKind: models.ActivityCycling}})
		require.Len(t, got, 1)
		assert.Equal(t, ride.ID, got[0].ID)
	})

	t.Run("by prefix", func(t *testing.T) {
		got := collectWorkouts(t, db, query.Query{Kind: query.KindWorkout, Predicate: query.Predicate{IDPrefix: run.ID.String()[:8]}})
		require.Len(t, got, 1)
		assert.Equal(t, run.ID, got[0].ID)
	})

	t.Run("by range", func(t *testing.T) {
		got := collectWorkouts(t, db, query.Query{Kind: query.KindWorkout, Predicate: query.Predicate{Start: t0.Add(23 * time.Hour), End: t0.Add(25 * time.Hour)}})
		require.Len(t, got, 1)
		assert.Equal(t, ride.ID, got[0].ID)
	})

	t.Run("newest first with limit", func(t *testing.T) {
		got := collectWorkouts(t, db, query.Query{Kind: query.KindWorkout, Sort: query.Sort{Field: query.SortStart, Descending: true}, Limit: 2})
		require.Len(t, got, 2)
		assert.True(t, got[0].StartedAt.After(got[1].StartedAt))
	})
}

func TestDeleteWorkoutCascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	w := seedWorkout(t, db, models.ActivityRunning, t0)
	require.NoError(t, db.AddDistanceSamples(ctx, w.ID, []models.DistanceSample{{StartedAt: t0, EndedAt: t0.Add(time.Minute), Meters: 250}}))
	route := models.NewRoute(w.ID, t0, t0.Add(time.Minute))
	require.NoError(t, db.AddRoute(ctx, route, []models.LocationPoint{{Timestamp: t0, Latitude: 41.88, Longitude: -87.63}}))

	require.NoError(t, db.DeleteWorkout(ctx, w.ID.String()[:8]))

	assert.Empty(t, collectWorkouts(t, db, query.ForWorkout(query.KindWorkout, w.ID)))

	distance, err := query.Collect(func(deliver query.DeliverFunc[models.DistanceSample]) error {
		return db.QueryDistance(ctx, query.ForWorkout(query.KindDistance, w.ID), deliver)
	})
	require.NoError(t, err)
	assert.Empty(t, distance)

	points, err := query.Collect(func(deliver query.DeliverFunc[models.LocationPoint]) error {
		return db.QueryLocations(ctx, query.Query{Kind: query.KindLocation, Predicate: query.Predicate{RouteID: route.ID}}, deliver)
	})
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestDeleteWorkoutNotFound(t *testing.T) {
	db := setupTestDB(t)

	err := db.DeleteWorkout(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, query.ErrNoWorkoutsFound)

	err = db.DeleteWorkout(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, query.ErrNoWorkoutsFound)
}

func TestDeleteWorkoutAmbiguousPrefix(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"a1b2c3d4-0000-4000-8000-000000000001", "a1b2c3d4-0000-4000-8000-000000000002"} {
		w := models.NewWorkout(models.ActivityRunning, t0, t0.Add(time.Hour))
		w.ID = uuid.MustParse(id)
		require.NoError(t, db.CreateWorkout(ctx, w))
	}

	err := db.DeleteWorkout(ctx, "a1b2c3d4")
	assert.ErrorIs(t, err, query.ErrAmbiguousWorkout)
	assert.Len(t, collectWorkouts(t, db, query.Query{Kind: query.KindWorkout}), 2)
}

func TestPrefixWildcardsMatchLiterally(t *testing.T) {
	db := setupTestDB(t)
	w := seedWorkout(t, db, models.ActivityRunning, t0)

	for _, prefix := range []string{"%", "_", w.ID.String()[:4] + "%", `\`} {
		t.Run(prefix, func(t *testing.T) {
			got := collectWorkouts(t, db, query.Query{Kind: query.KindWorkout, Predicate: query.Predicate{IDPrefix: prefix}})
			assert.Empty(t, got)

			err := db.DeleteWorkout(context.Background(), prefix)
			assert.ErrorIs(t, err, query.ErrNoWorkoutsFound)
		})
	}

	got := collectWorkouts(t, db, query.Query{Kind: query.KindWorkout, Predicate: query.Predicate{IDPrefix: strings.ToUpper(w.ID.String()[:4])}})
	assert.Len(t, got, 1)
}

func TestQueryDistanceDeliversBatches(t *testing.T) {
	db := setupTestDB(t, WithBatchSize(2))
	ctx := context.Background()

	w := seedWorkout(t, db, models.ActivityRunning, t0)
	samples := make([]models.DistanceSample, 5)
	for i := range samples {
		start := t0.Add(time.Duration(i) * 10 * time.Second)
		samples[i] = models.DistanceSample{StartedAt: start, EndedAt: start.Add(10 * time.Second), Meters: float64(30 + i)}
	}
	// Insert out of order to prove the query sorts.
	require.NoError(t, db.AddDistanceSamples(ctx, w.ID, []models.DistanceSample{samples[3], samples[4]}))
	require.NoError(t, db.AddDistanceSamples(ctx, w.ID, samples[:3]))

	var sizes []int
	var got []models.DistanceSample
	err := db.QueryDistance(ctx, query.ForWorkout(query.KindDistance, w.ID), func(batch []models.DistanceSample) error {
		sizes = append(sizes, len(batch))
		got = append(got, batch...)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2, 1}, sizes)
	require.Len(t, got, 5)
	for i := range got {
		assert.True(t, got[i].StartedAt.Equal(samples[i].StartedAt), "sample %d out of order", i)
		assert.Equal(t, samples[i].Meters, got[i].Meters)
	}
}

func TestQueryDistanceStopsWhenDeliverFails(t *testing.T) {
	db := setupTestDB(t, WithBatchSize(1))
	ctx := context.Background()

	w := seedWorkout(t, db, models.ActivityRunning, t0)
	require.NoError(t, db.AddDistanceSamples(ctx, w.ID, []models.DistanceSample{
		{StartedAt: t0, EndedAt: t0.Add(time.Second), Meters: 1},
		{StartedAt: t0.Add(time.Second), EndedAt: t0.Add(2 * time.Second), Meters: 1},
	}))

	stop := errors.New("stop")
	calls := 0
	err := db.QueryDistance(ctx, query.ForWorkout(query.KindDistance, w.ID), func(batch []models.DistanceSample) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestQueryHeartRateByRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.AddHeartRateSamples(ctx, []models.HeartRateSample{
		models.NewHeartRateSample(t0.Add(2*time.Minute), 150),
		models.NewHeartRateSample(t0.Add(-time.Hour), 60),
		models.NewHeartRateSample(t0.Add(time.Minute), 140),
		{StartedAt: t0.Add(3 * time.Minute), EndedAt: t0.Add(3 * time.Minute), Value: 155},
	}))

	got, err := query.Collect(func(deliver query.DeliverFunc[models.HeartRateSample]) error {
		return db.QueryHeartRate(ctx, query.ForRange(query.KindHeartRate, t0, t0.Add(30*time.Minute)), deliver)
	})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, 140.0, got[0].Value)
	assert.Equal(t, 150.0, got[1].Value)
	assert.Equal(t, 155.0, got[2].Value)
	assert.Equal(t, models.HeartRateUnit, got[2].Unit)
}

func TestQueryHeartRateEmpty(t *testing.T) {
	db := setupTestDB(t)

	calls := 0
	err := db.QueryHeartRate(context.Background(), query.ForRange(query.KindHeartRate, t0, t0.Add(time.Hour)), func(batch []models.HeartRateSample) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestRoutesAndLocations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	w := seedWorkout(t, db, models.ActivityHiking, t0)
	alt := 212.5
	first := models.NewRoute(w.ID, t0, t0.Add(10*time.Minute))
	second := models.NewRoute(w.ID, t0.Add(15*time.Minute), t0.Add(30*time.Minute))
	require.NoError(t, db.AddRoute(ctx, second, []models.LocationPoint{
		{Timestamp: t0.Add(15 * time.Minute), Latitude: 46.01, Longitude: 7.75},
	}))
	require.NoError(t, db.AddRoute(ctx, first, []models.LocationPoint{
		{Timestamp: t0.Add(time.Minute), Latitude: 46.0, Longitude: 7.74, Altitude: &alt},
		{Timestamp: t0, Latitude: 45.99, Longitude: 7.73},
	}))

	routes, err := query.Collect(func(deliver query.DeliverFunc[models.Route]) error {
		return db.QueryRoutes(ctx, query.ForWorkout(query.KindRoute, w.ID), deliver)
	})
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, first.ID, routes[0].ID)
	assert.Equal(t, second.ID, routes[1].ID)

	points, err := query.Collect(func(deliver query.DeliverFunc[models.LocationPoint]) error {
		return db.QueryLocations(ctx, query.Query{Kind: query.KindLocation, Predicate: query.Predicate{RouteID: first.ID}}, deliver)
	})
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.True(t, points[0].Timestamp.Equal(t0))
	assert.Nil(t, points[0].Altitude)
	require.NotNil(t, points[1].Altitude)
	assert.Equal(t, alt, *points[1].Altitude)
}

func TestSubSecondTimestampsSortCorrectly(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	w := seedWorkout(t, db, models.ActivityRunning, t0)
	require.NoError(t, db.AddDistanceSamples(ctx, w.ID, []models.DistanceSample{
		{StartedAt: t0.Add(5 * time.Second), EndedAt: t0.Add(6 * time.Second), Meters: 2},
		{StartedAt: t0.Add(4500 * time.Millisecond), EndedAt: t0.Add(5 * time.Second), Meters: 1},
	}))

	got, err := query.Collect(func(deliver query.DeliverFunc[models.DistanceSample]) error {
		return db.QueryDistance(ctx, query.ForWorkout(query.KindDistance, w.ID), deliver)
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1.0, got[0].Meters)
	assert.True(t, got[0].StartedAt.Equal(t0.Add(4500*time.Millisecond)))
}

func TestClosedDBIsUnavailable(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "pace.db"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	err = db.QueryHeartRate(context.Background(), query.Query{Kind: query.KindHeartRate}, func([]models.HeartRateSample) error { return nil })
	assert.ErrorIs(t, err, query.ErrStoreUnavailable)
}

func TestCancelledContext(t *testing.T) {
	db := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := db.QueryRoutes(ctx, query.Query{Kind: query.KindRoute}, func([]models.Route) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
