// ABOUTME: Tests for the HTTP API using gin test mode and httptest.
// ABOUTME: Runs against a temporary SQLite store.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/harperreed/pace/internal/models"
	"github.com/harperreed/pace/internal/query"
	"github.com/harperreed/pace/internal/storage"
	"github.com/harperreed/pace/internal/workout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 4, 12, 7, 0, 0, 0, time.UTC)

type fixture struct {
	db      *storage.DB
	handler http.Handler
	run     *models.Workout
	ride    *models.Workout
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.Open(filepath.Join(t.TempDir(), "pace.db"), storage.WithBatchSize(2))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()

	run := models.NewWorkout(models.ActivityRunning, t0, t0.Add(10*time.Minute)).
		WithEvents(models.NewSegmentEvent(t0, t0.Add(5*time.Minute), 1000))
	require.NoError(t, db.CreateWorkout(ctx, run))
	require.NoError(t, db.AddDistanceSamples(ctx, run.ID, []models.DistanceSample{
		{StartedAt: t0, EndedAt: t0.Add(4 * time.Minute), Meters: 1000},
		{StartedAt: t0.Add(4 * time.Minute), EndedAt: t0.Add(6 * time.Minute), Meters: 500},
	}))
	require.NoError(t, db.AddRoute(ctx, models.NewRoute(run.ID, t0, t0.Add(10*time.Minute)), []models.LocationPoint{
		{Timestamp: t0, Latitude: 48.85, Longitude: 2.35},
		{Timestamp: t0.Add(time.Minute), Latitude: 48.86, Longitude: 2.35},
	}))
	require.NoError(t, db.AddHeartRateSamples(ctx, []models.HeartRateSample{
		models.NewHeartRateSample(t0.Add(time.Minute), 150),
	}))

	ride := models.NewWorkout(models.ActivityCycling, t0.Add(24*time.Hour), t0.Add(25*time.Hour))
	require.NoError(t, db.CreateWorkout(ctx, ride))

	logger := log.NewWithOptions(io.Discard, log.Options{})
	svc := workout.NewService(db)
	return &fixture{db: db, handler: NewServer(svc, logger).Handler(), run: run, ride: ride}
}

func (f *fixture) get(t *testing.T, path string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func TestHealthz(t *testing.T) {
	f := setup(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, f.get(t, "/healthz", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestListWorkouts(t *testing.T) {
	f := setup(t)

	var all []models.Workout
	require.Equal(t, http.StatusOK, f.get(t, "/workouts", &all))
	require.Len(t, all, 2)
	assert.Equal(t, f.ride.ID, all[0].ID, "newest first")

	var runs []models.Workout
	require.Equal(t, http.StatusOK, f.get(t, "/workouts?kind=run&limit=5", &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, f.run.ID, runs[0].ID)

	var none []models.Workout
	require.Equal(t, http.StatusOK, f.get(t, "/workouts?kind=swim", &none))
	assert.NotNil(t, none)
	assert.Empty(t, none)

	assert.Equal(t, http.StatusBadRequest, f.get(t, "/workouts?kind=juggling", nil))
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/workouts?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/workouts?since=yesterday", nil))
}

func TestShowWorkout(t *testing.T) {
	f := setup(t)

	var w models.Workout
	require.Equal(t, http.StatusOK, f.get(t, "/workouts/"+f.run.ID.String()[:8], &w))
	assert.Equal(t, f.run.ID, w.ID)
	assert.Len(t, w.Events, 1)

	var latest models.Workout
	require.Equal(t, http.StatusOK, f.get(t, "/workouts/latest", &latest))
	assert.Equal(t, f.ride.ID, latest.ID)

	var body map[string]string
	assert.Equal(t, http.StatusNotFound, f.get(t, "/workouts/ffffffff-dead", &body))
	assert.NotEmpty(t, body["error"])
}

func TestWorkoutDetail(t *testing.T) {
	f := setup(t)

	var detail models.WorkoutDetail
	require.Equal(t, http.StatusOK, f.get(t, fmt.Sprintf("/workouts/%s/detail", f.run.ID), &detail))
	assert.Len(t, detail.Locations, 2)
	assert.Len(t, detail.HeartRate, 1)

	require.Equal(t, http.StatusOK, f.get(t, fmt.Sprintf("/workouts/%s/detail", f.ride.ID), &detail))
	assert.Empty(t, detail.Locations)
	assert.Empty(t, detail.HeartRate)
}

func TestWorkoutSplits(t *testing.T) {
	f := setup(t)

	var resp SplitsResponse
	require.Equal(t, http.StatusOK, f.get(t, fmt.Sprintf("/workouts/%s/splits", f.run.ID), &resp))
	assert.Equal(t, "calculated", resp.Source)
	assert.InDelta(t, 1000, resp.SplitDistance, 1e-9)
	require.Len(t, resp.Splits, 2)
	assert.InDelta(t, 240, resp.Splits[0].DurationSeconds, 1e-6)
	assert.InDelta(t, 500, resp.Splits[1].DistanceMeters, 1e-6)

	require.Equal(t, http.StatusOK, f.get(t, fmt.Sprintf("/workouts/%s/splits?distance=500", f.run.ID), &resp))
	assert.Len(t, resp.Splits, 3)

	require.Equal(t, http.StatusOK, f.get(t, fmt.Sprintf("/workouts/%s/splits?unit=mi", f.run.ID), &resp))
	assert.InDelta(t, 1609.344, resp.SplitDistance, 1e-9)

	for _, bad := range []string{"-3", "0", "NaN", "nan", "Inf", "-Inf", "+Inf", "meters"} {
		var body map[string]string
		code := f.get(t, fmt.Sprintf("/workouts/%s/splits?distance=%s", f.run.ID, bad), &body)
		assert.Equal(t, http.StatusBadRequest, code, "distance=%s", bad)
		assert.NotEmpty(t, body["error"], "distance=%s", bad)
	}
	assert.Equal(t, http.StatusBadRequest, f.get(t, fmt.Sprintf("/workouts/%s/paces?distance=NaN", f.run.ID), nil))
	assert.Equal(t, http.StatusBadRequest, f.get(t, fmt.Sprintf("/workouts/%s/splits?unit=parsec", f.run.ID), nil))

	var empty SplitsResponse
	require.Equal(t, http.StatusOK, f.get(t, fmt.Sprintf("/workouts/%s/splits", f.ride.ID), &empty))
	assert.NotNil(t, empty.Splits)
	assert.Empty(t, empty.Splits)
}

func TestWorkoutPaces(t *testing.T) {
	f := setup(t)

	var recorded SplitsResponse
	require.Equal(t, http.StatusOK, f.get(t, fmt.Sprintf("/workouts/%s/paces", f.run.ID), &recorded))
	assert.Equal(t, "recorded", recorded.Source)
	require.Len(t, recorded.Splits, 1)
	assert.InDelta(t, 300, recorded.Splits[0].DurationSeconds, 1e-9)
	assert.Zero(t, recorded.SplitDistance)

	var calculated SplitsResponse
	require.Equal(t, http.StatusOK, f.get(t, fmt.Sprintf("/workouts/%s/paces", f.ride.ID), &calculated))
	assert.Equal(t, "calculated", calculated.Source)
	assert.InDelta(t, 1000, calculated.SplitDistance, 1e-9)
}

func TestStoreUnavailable(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.db.Close())

	var body map[string]string
	assert.Equal(t, http.StatusServiceUnavailable, f.get(t, "/workouts", &body))
	assert.Contains(t, body["error"], "unavailable")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{query.ErrNoWorkoutsFound, http.StatusNotFound},
		{fmt.Errorf("%w x", query.ErrAmbiguousWorkout), http.StatusConflict},
		{query.UpstreamFailed("routes", query.ErrNoPermission), http.StatusForbidden},
		{query.UpstreamFailed("routes", query.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{query.UpstreamFailed("routes", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{query.UpstreamFailed("routes", errors.New("disk on fire")), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
