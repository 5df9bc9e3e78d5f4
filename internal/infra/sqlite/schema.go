package sqlite

// schemaMigrations returns the schema migration statements. Each string is
// a single SQL statement (SQLite executes one at a time); the set is
// idempotent via IF NOT EXISTS so Open can run it on every startup.
func schemaMigrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS schedules (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			checksum    TEXT NOT NULL UNIQUE,
			dark_periods_json TEXT NOT NULL DEFAULT '[]',
			uploaded_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		`CREATE TABLE IF NOT EXISTS targets (
			id        TEXT PRIMARY KEY,
			name      TEXT NOT NULL DEFAULT '',
			ra_deg    REAL NOT NULL,
			dec_deg   REAL NOT NULL,
			pm_ra_mas REAL NOT NULL DEFAULT 0,
			pm_dec_mas REAL NOT NULL DEFAULT 0,
			equinox   REAL NOT NULL DEFAULT 0,
			UNIQUE(ra_deg, dec_deg, pm_ra_mas, pm_dec_mas, equinox)
		)`,

		`CREATE TABLE IF NOT EXISTS constraints (
			id            TEXT PRIMARY KEY,
			has_altitude  INTEGER NOT NULL DEFAULT 0,
			altitude_min  REAL NOT NULL DEFAULT 0,
			altitude_max  REAL NOT NULL DEFAULT 0,
			has_azimuth   INTEGER NOT NULL DEFAULT 0,
			azimuth_min   REAL NOT NULL DEFAULT 0,
			azimuth_max   REAL NOT NULL DEFAULT 0,
			has_window    INTEGER NOT NULL DEFAULT 0,
			window_start  REAL NOT NULL DEFAULT 0,
			window_stop   REAL NOT NULL DEFAULT 0,
			UNIQUE(has_altitude, altitude_min, altitude_max, has_azimuth, azimuth_min, azimuth_max, has_window, window_start, window_stop)
		)`,

		`CREATE TABLE IF NOT EXISTS blocks (
			id                      TEXT PRIMARY KEY,
			schedule_id             TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
			original_block_id       TEXT NOT NULL,
			target_id               TEXT NOT NULL REFERENCES targets(id),
			constraints_id          TEXT REFERENCES constraints(id),
			priority                REAL NOT NULL,
			min_observation_sec     REAL NOT NULL,
			requested_duration_sec  REAL NOT NULL,
			visibility_periods_json TEXT NOT NULL DEFAULT '[]'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_schedule ON blocks(schedule_id)`,

		`CREATE TABLE IF NOT EXISTS assignments (
			schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
			block_id    TEXT NOT NULL REFERENCES blocks(id) ON DELETE CASCADE,
			window_start REAL,
			window_stop  REAL,
			PRIMARY KEY (schedule_id, block_id)
		)`,

		`CREATE TABLE IF NOT EXISTS analytics_rows (
			schedule_id      TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
			block_id         TEXT NOT NULL,
			scheduled        INTEGER NOT NULL DEFAULT 0,
			duration_hours   REAL NOT NULL DEFAULT 0,
			visibility_hours REAL NOT NULL DEFAULT 0,
			priority_bin     INTEGER NOT NULL DEFAULT 0,
			ra_deg           REAL NOT NULL DEFAULT 0,
			dec_deg          REAL NOT NULL DEFAULT 0,
			priority         REAL NOT NULL DEFAULT 0,
			requested_hours  REAL NOT NULL DEFAULT 0,
			elevation_range  REAL NOT NULL DEFAULT 0,
			impossible       INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (schedule_id, block_id)
		)`,

		`CREATE TABLE IF NOT EXISTS summary_stats (
			schedule_id              TEXT PRIMARY KEY REFERENCES schedules(id) ON DELETE CASCADE,
			total_count              INTEGER NOT NULL DEFAULT 0,
			scheduled_count          INTEGER NOT NULL DEFAULT 0,
			unscheduled_count        INTEGER NOT NULL DEFAULT 0,
			scheduling_rate          REAL NOT NULL DEFAULT 0,
			unique_target_count      INTEGER NOT NULL DEFAULT 0,
			total_scheduled_hours    REAL NOT NULL DEFAULT 0,
			total_requested_hours    REAL NOT NULL DEFAULT 0,
			total_visibility_hours   REAL NOT NULL DEFAULT 0,
			priority_histogram_json  TEXT NOT NULL DEFAULT '[]',
			per_bin_scheduling_rate_json TEXT NOT NULL DEFAULT '[]'
		)`,

		`CREATE TABLE IF NOT EXISTS visibility_bins (
			schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
			bin_index   INTEGER NOT NULL,
			bin_start   REAL NOT NULL,
			bin_width   REAL NOT NULL,
			count       INTEGER NOT NULL DEFAULT 0,
			by_priority_bin_json TEXT NOT NULL DEFAULT '{}',
			priority_min       REAL NOT NULL DEFAULT 0,
			priority_bin_width REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (schedule_id, bin_index)
		)`,

		`CREATE TABLE IF NOT EXISTS validation_issues (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
			block_id    TEXT NOT NULL,
			category    TEXT NOT NULL,
			criticality TEXT NOT NULL,
			message     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_validation_schedule ON validation_issues(schedule_id)`,
	}
}
