// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for workouts, their events, samples, routes, and route points.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workouts (
		id TEXT PRIMARY KEY,
		activity_kind TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT NOT NULL,
		source TEXT,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS workout_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workout_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		kind TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT NOT NULL,
		metadata TEXT,
		FOREIGN KEY (workout_id) REFERENCES workouts(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS distance_samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workout_id TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT NOT NULL,
		meters REAL NOT NULL,
		FOREIGN KEY (workout_id) REFERENCES workouts(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS heart_rate_samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		ended_at TEXT NOT NULL,
		value REAL NOT NULL,
		unit TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS routes (
		id TEXT PRIMARY KEY,
		workout_id TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT NOT NULL,
		FOREIGN KEY (workout_id) REFERENCES workouts(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS route_points (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		route_id TEXT NOT NULL,
		recorded_at TEXT NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		altitude REAL,
		horizontal_accuracy REAL,
		speed REAL,
		course REAL,
		FOREIGN KEY (route_id) REFERENCES routes(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_workouts_started ON workouts(started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_workouts_kind_started ON workouts(activity_kind, started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_workout_events_workout ON workout_events(workout_id, seq);
	CREATE INDEX IF NOT EXISTS idx_distance_workout_started ON distance_samples(workout_id, started_at);
	CREATE INDEX IF NOT EXISTS idx_heart_rate_ended ON heart_rate_samples(ended_at);
	CREATE INDEX IF NOT EXISTS idx_routes_workout ON routes(workout_id);
	CREATE INDEX IF NOT EXISTS idx_route_points_route ON route_points(route_id, recorded_at);
	`

	_, err := d.db.Exec(schema)
	return err
}
