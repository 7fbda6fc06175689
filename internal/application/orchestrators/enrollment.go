package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"gymportal/internal/domain/account"
)

// EnrollmentAPI defines the backend calls needed by the enrollment orchestrators.
type EnrollmentAPI interface {
	Enroll(ctx context.Context, token string, activityID int) error
	Unenroll(ctx context.Context, token string, activityID int) error
}

// BoardReloader refreshes the page's activity and enrollment snapshots.
type BoardReloader interface {
	ReloadActivities(ctx context.Context) error
	ReloadEnrollments(ctx context.Context) error
}

// EnrollmentInput carries input for the enroll and unenroll orchestrators.
type EnrollmentInput struct {
	ActivityID int
}

// EnrollmentDeps holds dependencies for Enroll and Unenroll.
type EnrollmentDeps struct {
	Session account.Session
	API     EnrollmentAPI
	Board   BoardReloader
}

// ExecuteEnroll enrolls the session's user in an activity.
// PRE: deps.Board holds the current snapshots
// POST: On success enrollments then activities are reloaded; activities are reloaded on failure too
// INVARIANT: An anonymous session makes no network request
func ExecuteEnroll(ctx context.Context, input EnrollmentInput, deps EnrollmentDeps) (Outcome, error) {
	if !deps.Session.IsAuthenticated() {
		return Outcome{RedirectToLogin: true}, ErrLoginRequired
	}

	if err := deps.API.Enroll(ctx, deps.Session.Token, input.ActivityID); err != nil {
		slog.Info("enrollment_event", "event", "enroll_failed", "activity_id", input.ActivityID, "user", deps.Session.Username, "error", err)
		_ = deps.Board.ReloadActivities(ctx)
		return Outcome{Message: failureMessage(err, MsgEnrollFailed)}, fmt.Errorf("enroll in activity %d: %w", input.ActivityID, err)
	}

	slog.Info("enrollment_event", "event", "enrolled", "activity_id", input.ActivityID, "user", deps.Session.Username)
	_ = deps.Board.ReloadEnrollments(ctx)
	_ = deps.Board.ReloadActivities(ctx)
	return Outcome{OK: true, Message: MsgEnrolled}, nil
}

// ExecuteUnenroll deactivates the session user's enrollment in an activity.
// Only a 204 from the backend counts as success; every failure shows one generic message.
// PRE: deps.Board holds the current snapshots
// POST: Enrollments reloaded on success only; activities reloaded in every case
// INVARIANT: An anonymous session makes no network request
func ExecuteUnenroll(ctx context.Context, input EnrollmentInput, deps EnrollmentDeps) (Outcome, error) {
	if !deps.Session.IsAuthenticated() {
		return Outcome{RedirectToLogin: true}, ErrLoginRequired
	}

	err := deps.API.Unenroll(ctx, deps.Session.Token, input.ActivityID)
	if err != nil {
		slog.Info("enrollment_event", "event", "unenroll_failed", "activity_id", input.ActivityID, "user", deps.Session.Username, "error", err)
		_ = deps.Board.ReloadActivities(ctx)
		return Outcome{Message: MsgUnenrollFailed}, fmt.Errorf("unenroll from activity %d: %w", input.ActivityID, err)
	}

	slog.Info("enrollment_event", "event", "unenrolled", "activity_id", input.ActivityID, "user", deps.Session.Username)
	_ = deps.Board.ReloadEnrollments(ctx)
	_ = deps.Board.ReloadActivities(ctx)
	return Outcome{OK: true, Message: MsgUnenrolled}, nil
}
