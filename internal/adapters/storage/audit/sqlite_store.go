package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gymportal/internal/adapters/storage"
	domain "gymportal/internal/domain/audit"
)

// timeLayout is fixed width so timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements the audit Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new audit event store.
// PRE: db has the audit_event schema
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an audit event.
// PRE: event passes Validate
// POST: Event is persisted
func (s *SQLiteStore) Save(ctx context.Context, event domain.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_event (id, timestamp, action, actor, activity_id, activity_title, request_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Timestamp.UTC().Format(timeLayout), string(event.Action), event.Actor,
		event.ActivityID, event.ActivityTitle, event.RequestID)
	return err
}

// List returns audit events matching filter.
// PRE: limit > 0
// POST: Returns events ordered by timestamp desc
func (s *SQLiteStore) List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error) {
	query := `SELECT id, timestamp, action, actor, activity_id, activity_title, request_id FROM audit_event WHERE 1=1`
	args := []any{}

	if filter.Action != "" {
		query += " AND action = ?"
		args = append(args, string(filter.Action))
	}
	if filter.Actor != "" {
		query += " AND actor = ?"
		args = append(args, filter.Actor)
	}
	if filter.ActivityID > 0 {
		query += " AND activity_id = ?"
		args = append(args, filter.ActivityID)
	}
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}

	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// scanEvents scans multiple rows into a slice of Events.
func scanEvents(rows *sql.Rows) ([]domain.Event, error) {
	var events []domain.Event
	for rows.Next() {
		var (
			e         domain.Event
			timestamp string
		)
		if err := rows.Scan(&e.ID, &timestamp, &e.Action, &e.Actor, &e.ActivityID, &e.ActivityTitle, &e.RequestID); err != nil {
			return nil, err
		}
		e.Timestamp, _ = time.Parse(timeLayout, timestamp)
		events = append(events, e)
	}
	return events, rows.Err()
}
