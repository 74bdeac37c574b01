// ABOUTME: Repository interface for activity data storage.
// ABOUTME: Combines the query Source with the writes importers and restores need.
package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/harperreed/pace/internal/models"
	"github.com/harperreed/pace/internal/query"
)

// Writer stores activity data.
type Writer interface {
	// CreateWorkout stores a workout together with its events.
	CreateWorkout(ctx context.Context, w *models.Workout) error
	// DeleteWorkout removes a workout, its events, samples, and routes.
	// Heart rate samples are not owned by a workout and are kept.
	DeleteWorkout(ctx context.Context, idOrPrefix string) error
	AddDistanceSamples(ctx context.Context, workoutID uuid.UUID, samples []models.DistanceSample) error
	AddHeartRateSamples(ctx context.Context, samples []models.HeartRateSample) error
	AddRoute(ctx context.Context, route *models.Route, points []models.LocationPoint) error
}

// Repository defines the storage interface for activity data.
// This interface allows swapping implementations (SQLite, Badger, fakes in tests).
type Repository interface {
	query.Source
	Writer

	// Lifecycle
	Close() error
}

var _ Repository = (*DB)(nil)
