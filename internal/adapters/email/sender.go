package email

import (
	"context"
	"log/slog"
)

// Notice is one staff email about a catalog change.
type Notice struct {
	To      []string
	Subject string
	HTML    string
	Action  string // created, updated or deleted; sent as a provider tag
}

// Sender delivers notices. It returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, n Notice) (string, error)
}

// NoopSender drops notices after logging them. Used when GYM_RESEND_KEY is unset.
type NoopSender struct{}

// NewNoopSender creates a NoopSender.
func NewNoopSender() NoopSender {
	return NoopSender{}
}

// Send logs the notice and reports no message id.
// POST: never fails
func (NoopSender) Send(_ context.Context, n Notice) (string, error) {
	slog.Info("catalog_notice", "event", "not_delivered", "action", n.Action, "subject", n.Subject, "recipients", len(n.To))
	return "", nil
}
