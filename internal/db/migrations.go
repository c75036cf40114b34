package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS tasks (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			name           TEXT NOT NULL,
			type           TEXT NOT NULL CHECK(type IN ('milestone', 'sub_milestone', 'task', 'subtask')),
			category       TEXT DEFAULT '',
			subcategory    TEXT DEFAULT '',
			priority       TEXT DEFAULT 'medium' CHECK(priority IN ('high', 'medium', 'low')),
			status         TEXT DEFAULT 'not_started' CHECK(status IN ('not_started', 'in_progress', 'completed')),
			estimated_time INTEGER DEFAULT 0,
			due_date       DATE,
			x_date         DATE,
			created_at     DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS recurring_tasks (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL,
			task_name        TEXT NOT NULL,
			time_block       TEXT NOT NULL,
			quarter          INTEGER DEFAULT 0 CHECK(quarter BETWEEN 0 AND 4),
			days_of_week     TEXT NOT NULL,
			duration_minutes INTEGER DEFAULT 0,
			category         TEXT DEFAULT '',
			subcategory      TEXT DEFAULT '',
			priority         TEXT DEFAULT 'medium',
			active           INTEGER NOT NULL DEFAULT 1,
			created_at       DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS daily_entries (
			id              TEXT PRIMARY KEY,
			user_id         TEXT NOT NULL,
			date            DATE NOT NULL,
			time_block      TEXT NOT NULL,
			quartile        INTEGER NOT NULL CHECK(quartile BETWEEN 1 AND 4),
			planned_task_id TEXT DEFAULT '',
			actual_task_id  TEXT DEFAULT '',
			status          TEXT DEFAULT 'not_started' CHECK(status IN ('not_started', 'in_progress', 'completed')),
			reflection      TEXT DEFAULT '',
			energy_impact   INTEGER DEFAULT 0,
			created_at      DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, date, time_block, quartile)
		);

		CREATE TABLE IF NOT EXISTS schedule_skips (
			user_id       TEXT NOT NULL,
			date          DATE NOT NULL,
			time_block    TEXT NOT NULL,
			quartile      INTEGER NOT NULL,
			recurring_key TEXT NOT NULL,
			UNIQUE(user_id, date, time_block, quartile, recurring_key)
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id, status);
		CREATE INDEX IF NOT EXISTS idx_recurring_user ON recurring_tasks(user_id, active);
		CREATE INDEX IF NOT EXISTS idx_entries_user_date ON daily_entries(user_id, date);
		CREATE INDEX IF NOT EXISTS idx_skips_user_date ON schedule_skips(user_id, date);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return nil
}
