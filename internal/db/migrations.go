package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS personal_schedules (
			id               TEXT PRIMARY KEY,
			title            TEXT NOT NULL DEFAULT '',
			description      TEXT NOT NULL DEFAULT '',
			date             TEXT NOT NULL DEFAULT '',
			time             TEXT NOT NULL DEFAULT '',
			duration_minutes INTEGER NOT NULL DEFAULT 0,
			status           TEXT NOT NULL DEFAULT 'pending',
			updated_at       DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS department_schedules (
			id               TEXT PRIMARY KEY,
			title            TEXT NOT NULL DEFAULT '',
			description      TEXT NOT NULL DEFAULT '',
			date             TEXT NOT NULL DEFAULT '',
			time             TEXT NOT NULL DEFAULT '',
			duration_minutes INTEGER NOT NULL DEFAULT 0,
			status           TEXT NOT NULL DEFAULT 'pending',
			assignee         TEXT NOT NULL DEFAULT '',
			department_name  TEXT NOT NULL DEFAULT '',
			updated_at       DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS project_schedules (
			id                  TEXT PRIMARY KEY,
			project_name        TEXT NOT NULL DEFAULT '',
			project_description TEXT NOT NULL DEFAULT '',
			end_date            TEXT NOT NULL DEFAULT '',
			time                TEXT NOT NULL DEFAULT '',
			status              TEXT NOT NULL DEFAULT 'pending',
			updated_at          DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS company_schedules (
			schedule_id TEXT PRIMARY KEY,
			title       TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			start_time  TEXT NOT NULL DEFAULT '',
			end_time    TEXT NOT NULL DEFAULT '',
			organizer   TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'pending',
			updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_personal_date ON personal_schedules(date);
		CREATE INDEX IF NOT EXISTS idx_department_date ON department_schedules(date);
		CREATE INDEX IF NOT EXISTS idx_project_end_date ON project_schedules(end_date);
		CREATE INDEX IF NOT EXISTS idx_company_start ON company_schedules(start_time);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating schedule tables: %w", err)
	}

	return nil
}
