package storage

import (
	"database/sql"
	"fmt"
)

// schema is applied in order on every start; each statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS session (
		id TEXT PRIMARY KEY,
		sealed_token TEXT NOT NULL,
		username TEXT NOT NULL,
		user_id INTEGER NOT NULL DEFAULT 0,
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		expires_at TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_session_expires_at ON session(expires_at)`,
	`CREATE TABLE IF NOT EXISTS audit_event (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		action TEXT NOT NULL,
		actor TEXT NOT NULL,
		activity_id INTEGER NOT NULL DEFAULT 0,
		activity_title TEXT NOT NULL DEFAULT '',
		request_id TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_event_timestamp ON audit_event(timestamp)`,
}

// InitDB creates the session and audit tables.
// Connection pragmas (WAL, busy timeout) are set through the DSN by the caller.
// PRE: db is open
// POST: every table and index exists
func InitDB(db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
