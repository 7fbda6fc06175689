package email

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"gymportal/internal/domain/activity"
)

// CatalogNotifier emails the staff list whenever an admin changes the activity catalog.
// With no recipients it does nothing.
type CatalogNotifier struct {
	sender Sender
	to     []string
	md     goldmark.Markdown
}

// NewCatalogNotifier creates a notifier sending through sender to the given addresses.
// Blank addresses are ignored.
func NewCatalogNotifier(sender Sender, to []string) *CatalogNotifier {
	var recipients []string
	for _, addr := range to {
		if addr = strings.TrimSpace(addr); addr != "" {
			recipients = append(recipients, addr)
		}
	}
	return &CatalogNotifier{sender: sender, to: recipients, md: goldmark.New()}
}

var actionVerbs = map[string]string{
	"created": "creada",
	"updated": "modificada",
	"deleted": "eliminada",
}

// NotifyCatalogChange sends one email describing the change.
// PRE: action is created, updated or deleted
// POST: No email is sent when there are no recipients
func (n *CatalogNotifier) NotifyCatalogChange(ctx context.Context, action string, a activity.Activity, actor string) error {
	if len(n.to) == 0 {
		return nil
	}
	verb, ok := actionVerbs[action]
	if !ok {
		return fmt.Errorf("unknown catalog action %q", action)
	}

	subject := fmt.Sprintf("Actividad %s: %s", verb, a.Title)
	body, err := n.render(verb, a, actor)
	if err != nil {
		return err
	}
	_, err = n.sender.Send(ctx, Notice{To: n.to, Subject: subject, HTML: body, Action: action})
	return err
}

func (n *CatalogNotifier) render(verb string, a activity.Activity, actor string) (string, error) {
	var src strings.Builder
	fmt.Fprintf(&src, "## Actividad %s\n\n", verb)
	fmt.Fprintf(&src, "**%s** (id %d) fue %s por *%s*.\n\n", a.Title, a.ID, verb, actor)
	if a.Weekday != "" {
		fmt.Fprintf(&src, "- Día: %s\n- Horario: %s a %s\n", a.Weekday, a.StartTime, a.EndTime)
	}
	if a.Instructor != "" {
		fmt.Fprintf(&src, "- Instructor: %s\n", a.Instructor)
	}
	if a.Capacity > 0 {
		fmt.Fprintf(&src, "- Cupo: %d\n", a.Capacity)
	}

	var buf bytes.Buffer
	if err := n.md.Convert([]byte(src.String()), &buf); err != nil {
		return "", fmt.Errorf("render catalog email: %w", err)
	}
	return buf.String(), nil
}
