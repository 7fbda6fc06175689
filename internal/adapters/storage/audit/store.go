package audit

import (
	"context"
	"time"

	domain "gymportal/internal/domain/audit"
)

// Store defines the interface for catalog audit persistence.
type Store interface {
	// Save persists an audit event.
	// PRE: event passes Validate
	// POST: Event is persisted
	Save(ctx context.Context, event domain.Event) error

	// List returns audit events matching filter.
	// PRE: limit > 0
	// POST: Returns events ordered by timestamp desc
	List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error)
}

// Filter narrows List. Zero fields impose no constraint.
type Filter struct {
	Action     domain.Action
	Actor      string
	ActivityID int
	Since      time.Time
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
