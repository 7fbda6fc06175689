package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// ResendSender delivers notices through the Resend API.
type ResendSender struct {
	emails resend.EmailsSvc
	from   string
}

// NewResendSender creates a sender using apiKey, mailing from the given address.
// PRE: from is a sender verified in Resend
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{emails: resend.NewClient(apiKey).Emails, from: from}
}

// Send posts the notice to Resend, tagged with the catalog action.
// PRE: n.To is non-empty
// POST: returns the Resend email id
func (s *ResendSender) Send(ctx context.Context, n Notice) (string, error) {
	req := &resend.SendEmailRequest{
		From:    s.from,
		To:      n.To,
		Subject: n.Subject,
		Html:    n.HTML,
		Tags: []resend.Tag{
			{Name: "category", Value: "catalog"},
			{Name: "action", Value: n.Action},
		},
	}
	sent, err := s.emails.SendWithContext(ctx, req)
	if err != nil {
		return "", fmt.Errorf("resend %s notice: %w", n.Action, err)
	}
	slog.Info("catalog_notice", "event", "sent", "action", n.Action, "email_id", sent.Id, "recipients", len(n.To))
	return sent.Id, nil
}
