package database

import (
	"database/sql"
	"fmt"
)

// schema is applied at startup. Statements are idempotent; there is no
// versioned migration tooling here.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		phone TEXT,
		role TEXT NOT NULL DEFAULT 'member',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS brands (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS alert_thresholds (
		id TEXT PRIMARY KEY,
		brand_id TEXT NOT NULL REFERENCES brands(id),
		user_id TEXT NOT NULL REFERENCES users(id),
		metric_type TEXT NOT NULL,
		threshold_value REAL NOT NULL,
		comparison_operator TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		notification_channels TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		brand_id TEXT NOT NULL REFERENCES brands(id),
		alert_threshold_id TEXT NOT NULL REFERENCES alert_thresholds(id),
		severity TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		metric_type TEXT NOT NULL,
		current_value REAL NOT NULL,
		threshold_value REAL NOT NULL,
		is_acknowledged INTEGER NOT NULL DEFAULT 0,
		acknowledged_by TEXT,
		acknowledged_at TIMESTAMP,
		resolved_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS notification_preferences (
		user_id TEXT PRIMARY KEY REFERENCES users(id),
		email_enabled INTEGER NOT NULL DEFAULT 1,
		sms_enabled INTEGER NOT NULL DEFAULT 0,
		webhook_enabled INTEGER NOT NULL DEFAULT 0,
		in_app_enabled INTEGER NOT NULL DEFAULT 1,
		quiet_hours_start TEXT,
		quiet_hours_end TEXT,
		frequency_limit INTEGER NOT NULL DEFAULT 10,
		email_address TEXT,
		phone_number TEXT,
		webhook_url TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS notification_deliveries (
		id TEXT PRIMARY KEY,
		alert_id TEXT NOT NULL REFERENCES alerts(id),
		user_id TEXT NOT NULL REFERENCES users(id),
		channel TEXT NOT NULL,
		status TEXT NOT NULL,
		recipient TEXT NOT NULL DEFAULT '',
		subject TEXT,
		content TEXT NOT NULL DEFAULT '',
		error_message TEXT,
		sent_at TIMESTAMP,
		delivered_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS in_app_notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		alert_id TEXT NOT NULL REFERENCES alerts(id),
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		severity TEXT NOT NULL,
		is_read INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS alert_jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		alert_id TEXT NOT NULL,
		brand_id TEXT NOT NULL,
		severity TEXT NOT NULL,
		priority INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		attempts INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		available_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_thresholds_brand ON alert_thresholds(brand_id, is_active)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_brand_metric ON alerts(brand_id, metric_type, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_resolved ON alerts(resolved_at)`,
	`CREATE INDEX IF NOT EXISTS idx_deliveries_user ON notification_deliveries(user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_deliveries_channel ON notification_deliveries(channel)`,
	`CREATE INDEX IF NOT EXISTS idx_in_app_user ON in_app_notifications(user_id, is_read)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_claim ON alert_jobs(status, priority, id)`,
}

// createSchema applies all schema statements
func createSchema(conn *sql.DB) error {
	for _, stmt := range schema {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
