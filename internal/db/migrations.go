package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: the notification bell polls unread counts per user.
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_unread
	     ON notifications(user_id, is_read)`,
	// Migration 2: my-pickups lists are filtered by volunteer.
	`CREATE INDEX IF NOT EXISTS idx_pickups_volunteer
	     ON pickups(volunteer_id)`,
}

// Migrate ensures the schema and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
