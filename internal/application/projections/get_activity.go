package projections

import (
	"context"
	"fmt"

	"gymportal/internal/domain/activity"
)

// GetActivityQuery carries query parameters.
type GetActivityQuery struct {
	ID int
}

// GetActivityResult carries the query result.
type GetActivityResult struct {
	Activity activity.Activity
	Form     activity.FormState
}

// GetActivityDeps holds dependencies for GetActivity.
type GetActivityDeps struct {
	Source ActivityGetter
}

// QueryGetActivity loads one activity and pre-fills its edit form.
// PRE: query.ID > 0
// POST: Form.Draft mirrors the activity; Form.Errors is empty
func QueryGetActivity(ctx context.Context, query GetActivityQuery, deps GetActivityDeps) (GetActivityResult, error) {
	a, err := deps.Source.GetActivity(ctx, query.ID)
	if err != nil {
		return GetActivityResult{}, fmt.Errorf("get activity %d: %w", query.ID, err)
	}
	return GetActivityResult{
		Activity: a,
		Form:     activity.FormState{Draft: activity.DraftFromActivity(a), Errors: activity.Errors{}},
	}, nil
}
