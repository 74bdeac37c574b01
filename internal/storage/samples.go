// ABOUTME: Distance and heart rate sample storage for SQLite.
// ABOUTME: Inserts run in one transaction; queries stream rows in batches.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/pace/internal/models"
	"github.com/harperreed/pace/internal/query"
)

// AddDistanceSamples stores distance samples for a workout.
func (d *DB) AddDistanceSamples(ctx context.Context, workoutID uuid.UUID, samples []models.DistanceSample) error {
	return d.inTx(ctx, "add distance samples", `
		INSERT INTO distance_samples (workout_id, started_at, ended_at, meters)
		VALUES (?, ?, ?, ?)
	`, len(samples), func(i int) []any {
		s := samples[i]
		return []any{workoutID.String(), formatTime(s.StartedAt), formatTime(s.EndedAt), s.Meters}
	})
}

// AddHeartRateSamples stores heart rate samples.
func (d *DB) AddHeartRateSamples(ctx context.Context, samples []models.HeartRateSample) error {
	return d.inTx(ctx, "add heart rate samples", `
		INSERT INTO heart_rate_samples (started_at, ended_at, value, unit)
		VALUES (?, ?, ?, ?)
	`, len(samples), func(i int) []any {
		s := samples[i]
		unit := s.Unit
		if unit == "" {
			unit = models.HeartRateUnit
		}
		return []any{formatTime(s.StartedAt), formatTime(s.EndedAt), s.Value, unit}
	})
}

// QueryDistance delivers distance samples matching q.
func (d *DB) QueryDistance(ctx context.Context, q query.Query, deliver query.DeliverFunc[models.DistanceSample]) error {
	var where clause
	if q.Predicate.WorkoutID != uuid.Nil {
		where.add("workout_id = ?", q.Predicate.WorkoutID.String())
	}
	where.timeRange(q.Predicate, "started_at", "ended_at")

	order, args := orderBy(q.Sort, "started_at", "ended_at", q.Limit, where.args)
	rows, err := d.db.QueryContext(ctx, `SELECT started_at, ended_at, meters FROM distance_samples`+where.String()+order, args...)
	if err != nil {
		return fmt.Errorf("query distance samples: %w", classify(err))
	}
	return deliverRows(ctx, rows, d.batchSize, scanDistanceSample, deliver)
}

// QueryHeartRate delivers heart rate samples matching q.
// Heart rate samples are selected by time range only.
func (d *DB) QueryHeartRate(ctx context.Context, q query.Query, deliver query.DeliverFunc[models.HeartRateSample]) error {
	var where clause
	where.timeRange(q.Predicate, "started_at", "ended_at")

	order, args := orderBy(q.Sort, "started_at", "ended_at", q.Limit, where.args)
	rows, err := d.db.QueryContext(ctx, `SELECT started_at, ended_at, value, unit FROM heart_rate_samples`+where.String()+order, args...)
	if err != nil {
		return fmt.Errorf("query heart rate samples: %w", classify(err))
	}
	return deliverRows(ctx, rows, d.batchSize, scanHeartRateSample, deliver)
}

// inTx executes stmt n times inside one transaction.
func (d *DB) inTx(ctx context.Context, op, stmt string, n int, argsAt func(i int) []any) error {
	if n == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}
	defer func() { _ = tx.Rollback() }()

	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}
	defer prepared.Close()

	for i := 0; i < n; i++ {
		if _, err := prepared.ExecContext(ctx, argsAt(i)...); err != nil {
			return fmt.Errorf("%s: %w", op, classify(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}
	return nil
}

func scanDistanceSample(rows *sql.Rows) (models.DistanceSample, error) {
	var (
		s                  models.DistanceSample
		startedAt, endedAt string
	)
	if err := rows.Scan(&startedAt, &endedAt, &s.Meters); err != nil {
		return s, fmt.Errorf("scan distance sample: %w", err)
	}
	var err error
	if s.StartedAt, err = parseTime(startedAt); err != nil {
		return s, err
	}
	if s.EndedAt, err = parseTime(endedAt); err != nil {
		return s, err
	}
	return s, nil
}

func scanHeartRateSample(rows *sql.Rows) (models.HeartRateSample, error) {
	var (
		s                  models.HeartRateSample
		startedAt, endedAt string
	)
	if err := rows.Scan(&startedAt, &endedAt, &s.Value, &s.Unit); err != nil {
		return s, fmt.Errorf("scan heart rate sample: %w", err)
	}
	var err error
	if s.StartedAt, err = parseTime(startedAt); err != nil {
		return s, err
	}
	if s.EndedAt, err = parseTime(endedAt); err != nil {
		return s, err
	}
	return s, nil
}
