package projections

import (
	"context"

	"gymportal/internal/application/board"
	"gymportal/internal/domain/activity"
)

// ActivityBoard is the per-request activity store read by list projections.
type ActivityBoard interface {
	ReloadActivities(ctx context.Context) error
	ReloadEnrollments(ctx context.Context) error
	View(c activity.Criteria) []board.Row
}

// ActivityGetter fetches a single activity.
type ActivityGetter interface {
	GetActivity(ctx context.Context, id int) (activity.Activity, error)
}
