package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gymportal/internal/domain/account"
	"gymportal/internal/domain/activity"
	"gymportal/internal/domain/enrollment"
)

// ActivitySource fetches the full activity list.
type ActivitySource interface {
	ListActivities(ctx context.Context) ([]activity.Activity, error)
}

// EnrollmentSource fetches the enrollments owned by a bearer token.
type EnrollmentSource interface {
	ListEnrollments(ctx context.Context, token string) ([]enrollment.Enrollment, error)
}

// Source is the union the board reloads from.
type Source interface {
	ActivitySource
	EnrollmentSource
}

// Board holds the activity and enrollment snapshots for one page build.
// The two lists are loaded independently; a failed reload keeps the previous snapshot.
// A Board is used by a single request and is not safe for concurrent use.
type Board struct {
	source      Source
	session     account.Session
	Activities  []activity.Activity
	Enrollments []enrollment.Enrollment // active only
}

// Row is one rendered activity with the viewer's enrollment state.
type Row struct {
	activity.Activity
	Enrolled bool `json:"inscripta"`
}

// New creates an empty board for session.
// PRE: source is non-nil
// POST: Board has no snapshots until Reload is called
func New(source Source, session account.Session) *Board {
	return &Board{source: source, session: session}
}

// Session returns the session the board loads enrollments for.
func (b *Board) Session() account.Session {
	return b.session
}

// ReloadActivities replaces the activity snapshot.
// POST: On success Activities is the fresh list; on error it is unchanged
func (b *Board) ReloadActivities(ctx context.Context) error {
	list, err := b.source.ListActivities(ctx)
	if err != nil {
		slog.Warn("board_event", "event", "activities_reload_failed", "error", err)
		return fmt.Errorf("reload activities: %w", err)
	}
	b.Activities = list
	return nil
}

// ReloadEnrollments replaces the enrollment snapshot. Anonymous sessions
// have no enrollments and make no request.
// POST: On success Enrollments holds the active enrollments; on error it is unchanged
func (b *Board) ReloadEnrollments(ctx context.Context) error {
	if !b.session.IsAuthenticated() {
		b.Enrollments = nil
		return nil
	}
	list, err := b.source.ListEnrollments(ctx, b.session.Token)
	if err != nil {
		slog.Warn("board_event", "event", "enrollments_reload_failed", "user", b.session.Username, "error", err)
		return fmt.Errorf("reload enrollments: %w", err)
	}
	b.Enrollments = enrollment.OnlyActive(list)
	return nil
}

// Reload refreshes both snapshots. A failure in one does not skip the other.
// POST: Returns the joined errors of both reloads, nil if both succeeded
func (b *Board) Reload(ctx context.Context) error {
	errA := b.ReloadActivities(ctx)
	errE := b.ReloadEnrollments(ctx)
	return errors.Join(errA, errE)
}

// View applies c to the current snapshots.
// INVARIANT: Snapshots are not mutated; row order follows Activities
func (b *Board) View(c activity.Criteria) []Row {
	filtered := activity.Filter(b.Activities, b.Enrollments, c)
	enrolled := enrollment.ActiveActivityIDs(b.Enrollments)
	rows := make([]Row, 0, len(filtered))
	for _, a := range filtered {
		rows = append(rows, Row{Activity: a, Enrolled: enrolled[a.ID]})
	}
	return rows
}

// IsEnrolled reports whether the viewer holds an active enrollment in activityID.
func (b *Board) IsEnrolled(activityID int) bool {
	return enrollment.IsEnrolled(b.Enrollments, activityID)
}

// Find returns the activity with id from the current snapshot.
func (b *Board) Find(id int) (activity.Activity, bool) {
	for _, a := range b.Activities {
		if a.ID == id {
			return a, true
		}
	}
	return activity.Activity{}, false
}
