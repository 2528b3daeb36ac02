package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS organizations (
		id          TEXT PRIMARY KEY,
		user_id     INTEGER NOT NULL,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		activities  TEXT NOT NULL DEFAULT '',
		contact     TEXT NOT NULL DEFAULT '',
		is_active   INTEGER NOT NULL DEFAULT 1,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_organizations_user ON organizations(user_id)`,

	`CREATE TABLE IF NOT EXISTS content_plans (
		id         TEXT PRIMARY KEY,
		user_id    INTEGER NOT NULL,
		plan_name  TEXT NOT NULL,
		period     TEXT NOT NULL DEFAULT '',
		frequency  TEXT NOT NULL DEFAULT '',
		topics     TEXT NOT NULL DEFAULT '',
		details    TEXT NOT NULL DEFAULT '',
		plan_data  TEXT NOT NULL DEFAULT '{}',
		is_active  INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_content_plans_user ON content_plans(user_id)`,

	`CREATE TABLE IF NOT EXISTS content_plan_items (
		id                   TEXT PRIMARY KEY,
		content_plan_id      TEXT NOT NULL REFERENCES content_plans(id) ON DELETE CASCADE,
		publication_date     TEXT NOT NULL,
		content_title        TEXT NOT NULL,
		content_text         TEXT NOT NULL DEFAULT '',
		status               TEXT NOT NULL DEFAULT 'scheduled'
		                     CHECK(status IN ('scheduled','published','overdue')),
		notification_sent    INTEGER NOT NULL DEFAULT 0,
		notification_sent_at TEXT,
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_content_plan_items_plan ON content_plan_items(content_plan_id)`,
	`CREATE INDEX IF NOT EXISTS idx_content_plan_items_pending
		ON content_plan_items(publication_date)
		WHERE notification_sent = 0 AND status = 'scheduled'`,
}
