package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymportal/internal/domain/activity"
	"gymportal/internal/domain/audit"
)

// AuditSaver persists audit events.
type AuditSaver interface {
	Save(ctx context.Context, event audit.Event) error
}

// AuditTrail records every catalog change as an audit event.
// It satisfies CatalogNotifier so it rides the same hook as the email notice.
type AuditTrail struct {
	Store      AuditSaver
	GenerateID func() string
	Now        func() time.Time
	RequestID  func(ctx context.Context) string // optional
}

// NotifyCatalogChange stores one audit event for the change.
// PRE: action is one of ActionCreated, ActionUpdated, ActionDeleted
// POST: event saved with the actor, activity and request id
func (t AuditTrail) NotifyCatalogChange(ctx context.Context, action string, a activity.Activity, actor string) error {
	act, ok := audit.ParseAction(action)
	if !ok {
		return fmt.Errorf("audit %q: %w", action, audit.ErrInvalidAction)
	}
	event := audit.Event{
		ID:            t.GenerateID(),
		Timestamp:     t.Now(),
		Action:        act,
		Actor:         actor,
		ActivityID:    a.ID,
		ActivityTitle: a.Title,
	}
	if t.RequestID != nil {
		event.RequestID = t.RequestID(ctx)
	}
	if err := t.Store.Save(ctx, event); err != nil {
		return fmt.Errorf("save audit event: %w", err)
	}
	return nil
}

// Notifiers fans a catalog change out to every notifier.
// INVARIANT: every notifier is called even when an earlier one fails
type Notifiers []CatalogNotifier

// NotifyCatalogChange calls each notifier in order.
// POST: returns the joined errors, nil when all succeed
func (ns Notifiers) NotifyCatalogChange(ctx context.Context, action string, a activity.Activity, actor string) error {
	var errs []error
	for _, n := range ns {
		if n == nil {
			continue
		}
		if err := n.NotifyCatalogChange(ctx, action, a, actor); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
