// ABOUTME: Workout CRUD and workout queries for SQLite storage.
// ABOUTME: Workout events are stored alongside and cascade on delete.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pace/internal/models"
	"github.com/harperreed/pace/internal/query"
)

// CreateWorkout stores a new workout and its events in the database.
func (d *DB) CreateWorkout(ctx context.Context, w *models.Workout) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create workout: %w", classify(err))
	}
	defer func() { _ = tx.Rollback() }()

	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workouts (id, activity_kind, started_at, ended_at, source, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		w.ID.String(),
		string(w.Kind),
		formatTime(w.StartedAt),
		formatTime(w.EndedAt),
		w.Source,
		w.Notes,
		formatTime(w.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create workout: %w", classify(err))
	}

	for i, ev := range w.Events {
		var metadata *string
		if len(ev.Metadata) > 0 {
			data, err := json.Marshal(ev.Metadata)
			if err != nil {
				return fmt.Errorf("marshal event metadata: %w", err)
			}
			s := string(data)
			metadata = &s
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO workout_events (workout_id, seq, kind, started_at, ended_at, metadata)
			VALUES (?, ?, ?, ?, ?, ?)
		`, w.ID.String(), i, string(ev.Kind), formatTime(ev.StartedAt), formatTime(ev.EndedAt), metadata)
		if err != nil {
			return fmt.Errorf("create workout event: %w", classify(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create workout: %w", classify(err))
	}
	return nil
}

// QueryWorkouts delivers workouts matching q, events included.
func (d *DB) QueryWorkouts(ctx context.Context, q query.Query, deliver query.DeliverFunc[models.Workout]) error {
	var where clause
	if q.Predicate.WorkoutID != uuid.Nil {
		where.add("id = ?", q.Predicate.WorkoutID.String())
	}
	if q.Predicate.IDPrefix != "" {
		where.add(`id LIKE ? ESCAPE '\'`, prefixPattern(q.Predicate.IDPrefix))
	}
	if q.Predicate.ActivityKind != "" {
		where.add("LOWER(activity_kind) = LOWER(?)", string(q.Predicate.ActivityKind))
	}
	where.timeRange(q.Predicate, "started_at", "ended_at")

	order, args := orderBy(q.Sort, "started_at", "ended_at", q.Limit, where.args)
	stmt := `SELECT id, activity_kind, started_at, ended_at, source, notes, created_at FROM workouts` + where.String() + order

	rows, err := d.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("query workouts: %w", classify(err))
	}

	// Workouts are few, so drain them before loading events on the same pool.
	workouts, err := query.Collect(func(collect query.DeliverFunc[models.Workout]) error {
		return deliverRows(ctx, rows, d.batchSize, scanWorkout, collect)
	})
	if err != nil {
		return fmt.Errorf("query workouts: %w", err)
	}

	if err := d.attachEvents(ctx, workouts); err != nil {
		return err
	}

	return query.Batches(workouts, d.batchSize, deliver)
}

// DeleteWorkout removes a workout and everything it owns (cascade delete).
func (d *DB) DeleteWorkout(ctx context.Context, idOrPrefix string) error {
	id, err := d.resolveWorkoutID(ctx, idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}

	// CASCADE is enabled, so deleting the workout deletes its samples and routes
	result, err := d.db.ExecContext(ctx, "DELETE FROM workouts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete workout: %w", classify(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", query.ErrNoWorkoutsFound, idOrPrefix)
	}

	return nil
}

// attachEvents loads the recorded events for each workout in place.
func (d *DB) attachEvents(ctx context.Context, workouts []models.Workout) error {
	if len(workouts) == 0 {
		return nil
	}

	index := make(map[string]int, len(workouts))
	placeholders := make([]string, 0, len(workouts))
	args := make([]any, 0, len(workouts))
	for i, w := range workouts {
		index[w.ID.String()] = i
		placeholders = append(placeholders, "?")
		args = append(args, w.ID.String())
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT workout_id, kind, started_at, ended_at, metadata
		FROM workout_events
		WHERE workout_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY workout_id, seq
	`, args...)
	if err != nil {
		return fmt.Errorf("list workout events: %w", classify(err))
	}
	defer rows.Close()

	for rows.Next() {
		var (
			workoutID, kind, startedAt, endedAt string
			metadata                            sql.NullString
		)
		if err := rows.Scan(&workoutID, &kind, &startedAt, &endedAt, &metadata); err != nil {
			return fmt.Errorf("scan workout event: %w", err)
		}
		ev := models.WorkoutEvent{Kind: models.EventKind(kind)}
		if ev.StartedAt, err = parseTime(startedAt); err != nil {
			return err
		}
		if ev.EndedAt, err = parseTime(endedAt); err != nil {
			return err
		}
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &ev.Metadata); err != nil {
				return fmt.Errorf("unmarshal event metadata: %w", err)
			}
		}
		i := index[workoutID]
		workouts[i].Events = append(workouts[i].Events, ev)
	}
	return classify(rows.Err())
}

// resolveWorkoutID finds the full ID from a prefix.
func (d *DB) resolveWorkoutID(ctx context.Context, idOrPrefix string) (string, error) {
	if len(idOrPrefix) == 36 && strings.Count(idOrPrefix, "-") == 4 {
		return strings.ToLower(idOrPrefix), nil
	}

	rows, err := d.db.QueryContext(ctx, `SELECT id FROM workouts WHERE id LIKE ? ESCAPE '\'`, prefixPattern(idOrPrefix))
	if err != nil {
		return "", fmt.Errorf("resolve workout ID: %w", classify(err))
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan workout ID: %w", err)
		}
		matches = append(matches, id)
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", query.ErrNoWorkoutsFound, idOrPrefix)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("%w %s: matches multiple records", query.ErrAmbiguousWorkout, idOrPrefix)
	}

	return matches[0], nil
}

// scanWorkout scans a single workout row.
func scanWorkout(rows *sql.Rows) (models.Workout, error) {
	var (
		w                             models.Workout
		idStr, kind                   string
		startedAt, endedAt, createdAt string
		source, notes                 sql.NullString
	)

	if err := rows.Scan(&idStr, &kind, &startedAt, &endedAt, &source, &notes, &createdAt); err != nil {
		return w, fmt.Errorf("scan workout: %w", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return w, fmt.Errorf("parse workout ID: %w", err)
	}
	w.ID = id
	w.Kind = models.ActivityKind(kind)

	if w.StartedAt, err = parseTime(startedAt); err != nil {
		return w, err
	}
	if w.EndedAt, err = parseTime(endedAt); err != nil {
		return w, err
	}
	if w.CreatedAt, err = parseTime(createdAt); err != nil {
		return w, err
	}
	if source.Valid {
		w.Source = &source.String
	}
	if notes.Valid {
		w.Notes = &notes.String
	}

	return w, nil
}
