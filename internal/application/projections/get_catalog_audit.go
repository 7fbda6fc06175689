package projections

import (
	"context"
	"fmt"
	"time"

	auditstore "gymportal/internal/adapters/storage/audit"
	"gymportal/internal/domain/audit"
)

// Audit log page sizes.
const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 500
)

// AuditLister reads stored audit events.
type AuditLister interface {
	List(ctx context.Context, filter auditstore.Filter, limit int) ([]audit.Event, error)
}

// GetCatalogAuditQuery carries query parameters. Empty fields do not filter.
type GetCatalogAuditQuery struct {
	Action string
	Actor  string
	Days   int
	Limit  int
}

// GetCatalogAuditResult carries the query result.
type GetCatalogAuditResult struct {
	Events []audit.Event `json:"events"`
	Limit  int           `json:"limit"`
}

// GetCatalogAuditDeps holds dependencies for QueryCatalogAudit.
type GetCatalogAuditDeps struct {
	Store AuditLister
	Now   func() time.Time
}

// QueryCatalogAudit lists recent catalog changes, newest first.
// PRE: none
// POST: Limit clamped to [1, MaxAuditLimit]; Events never nil
func QueryCatalogAudit(ctx context.Context, query GetCatalogAuditQuery, deps GetCatalogAuditDeps) (GetCatalogAuditResult, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	limit = min(limit, MaxAuditLimit)

	var filter auditstore.Filter
	if query.Action != "" {
		a, ok := audit.ParseAction(query.Action)
		if !ok {
			return GetCatalogAuditResult{}, fmt.Errorf("audit filter %q: %w", query.Action, audit.ErrInvalidAction)
		}
		filter.Action = a
	}
	filter.Actor = query.Actor
	if query.Days > 0 {
		filter.Since = deps.Now().AddDate(0, 0, -query.Days)
	}

	events, err := deps.Store.List(ctx, filter, limit)
	if err != nil {
		return GetCatalogAuditResult{}, fmt.Errorf("list audit events: %w", err)
	}
	if events == nil {
		events = []audit.Event{}
	}
	return GetCatalogAuditResult{Events: events, Limit: limit}, nil
}
