// ABOUTME: Route and route point storage for SQLite.
// ABOUTME: Routes belong to a workout; points stream per route in batches.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/pace/internal/models"
	"github.com/harperreed/pace/internal/query"
)

// AddRoute stores a route and its location points in one transaction.
func (d *DB) AddRoute(ctx context.Context, route *models.Route, points []models.LocationPoint) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("add route: %w", classify(err))
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO routes (id, workout_id, started_at, ended_at)
		VALUES (?, ?, ?, ?)
	`, route.ID.String(), route.WorkoutID.String(), formatTime(route.StartedAt), formatTime(route.EndedAt))
	if err != nil {
		return fmt.Errorf("add route: %w", classify(err))
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO route_points (route_id, recorded_at, latitude, longitude, altitude, horizontal_accuracy, speed, course)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("add route points: %w", classify(err))
	}
	defer stmt.Close()

	for _, p := range points {
		_, err := stmt.ExecContext(ctx,
			route.ID.String(),
			formatTime(p.Timestamp),
			p.Latitude,
			p.Longitude,
			nullFloat(p.Altitude),
			nullFloat(p.HorizontalAccuracy),
			nullFloat(p.Speed),
			nullFloat(p.Course),
		)
		if err != nil {
			return fmt.Errorf("add route point: %w", classify(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("add route: %w", classify(err))
	}
	return nil
}

// QueryRoutes delivers the routes matching q.
func (d *DB) QueryRoutes(ctx context.Context, q query.Query, deliver query.DeliverFunc[models.Route]) error {
	var where clause
	if q.Predicate.WorkoutID != uuid.Nil {
		where.add("workout_id = ?", q.Predicate.WorkoutID.String())
	}
	if q.Predicate.RouteID != uuid.Nil {
		where.add("id = ?", q.Predicate.RouteID.String())
	}
	where.timeRange(q.Predicate, "started_at", "ended_at")

	order, args := orderBy(q.Sort, "started_at", "ended_at", q.Limit, where.args)
	rows, err := d.db.QueryContext(ctx, `SELECT id, workout_id, started_at, ended_at FROM routes`+where.String()+order, args...)
	if err != nil {
		return fmt.Errorf("query routes: %w", classify(err))
	}
	return deliverRows(ctx, rows, d.batchSize, scanRoute, deliver)
}

// QueryLocations delivers the points of the route named by q.Predicate.RouteID.
func (d *DB) QueryLocations(ctx context.Context, q query.Query, deliver query.DeliverFunc[models.LocationPoint]) error {
	var where clause
	if q.Predicate.RouteID != uuid.Nil {
		where.add("route_id = ?", q.Predicate.RouteID.String())
	}
	where.timeRange(q.Predicate, "recorded_at", "recorded_at")

	order, args := orderBy(q.Sort, "recorded_at", "recorded_at", q.Limit, where.args)
	rows, err := d.db.QueryContext(ctx, `
		SELECT recorded_at, latitude, longitude, altitude, horizontal_accuracy, speed, course
		FROM route_points`+where.String()+order, args...)
	if err != nil {
		return fmt.Errorf("query route points: %w", classify(err))
	}
	return deliverRows(ctx, rows, d.batchSize, scanLocationPoint, deliver)
}

func scanRoute(rows *sql.Rows) (models.Route, error) {
	var (
		r                                  models.Route
		idStr, workoutID, startedAt, ended string
	)
	if err := rows.Scan(&idStr, &workoutID, &startedAt, &ended); err != nil {
		return r, fmt.Errorf("scan route: %w", err)
	}

	var err error
	if r.ID, err = uuid.Parse(idStr); err != nil {
		return r, fmt.Errorf("parse route ID: %w", err)
	}
	if r.WorkoutID, err = uuid.Parse(workoutID); err != nil {
		return r, fmt.Errorf("parse workout ID: %w", err)
	}
	if r.StartedAt, err = parseTime(startedAt); err != nil {
		return r, err
	}
	if r.EndedAt, err = parseTime(ended); err != nil {
		return r, err
	}
	return r, nil
}

func scanLocationPoint(rows *sql.Rows) (models.LocationPoint, error) {
	var (
		p                                 models.LocationPoint
		recordedAt                        string
		altitude, accuracy, speed, course sql.NullFloat64
	)
	if err := rows.Scan(&recordedAt, &p.Latitude, &p.Longitude, &altitude, &accuracy, &speed, &course); err != nil {
		return p, fmt.Errorf("scan route point: %w", err)
	}

	ts, err := parseTime(recordedAt)
	if err != nil {
		return p, err
	}
	p.Timestamp = ts
	p.Altitude = floatPtr(altitude)
	p.HorizontalAccuracy = floatPtr(accuracy)
	p.Speed = floatPtr(speed)
	p.Course = floatPtr(course)
	return p, nil
}
