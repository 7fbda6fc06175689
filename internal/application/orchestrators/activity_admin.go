package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gymportal/internal/adapters/api"
	"gymportal/internal/domain/account"
	"gymportal/internal/domain/activity"
)

// Catalog change actions reported to the notifier.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ActivityAdminAPI defines the backend calls needed by the admin orchestrators.
type ActivityAdminAPI interface {
	CreateActivity(ctx context.Context, token string, a activity.Activity) error
	UpdateActivity(ctx context.Context, token string, a activity.Activity) error
	DeleteActivity(ctx context.Context, token string, id int) error
}

// SessionRevoker removes a stored session.
type SessionRevoker interface {
	Delete(ctx context.Context, id string) error
}

// CatalogNotifier is told about every successful catalog change.
type CatalogNotifier interface {
	NotifyCatalogChange(ctx context.Context, action string, a activity.Activity, actor string) error
}

// ActivityReloader refreshes the activity snapshot.
type ActivityReloader interface {
	ReloadActivities(ctx context.Context) error
}

// SaveActivityInput carries input for create and update. ID is 0 on create.
type SaveActivityInput struct {
	ID    int
	Draft activity.Draft
}

// SaveActivityResult carries the outcome and the per-field errors to show.
type SaveActivityResult struct {
	Outcome
	Errors activity.Errors
}

// SaveActivityDeps holds dependencies for CreateActivity and UpdateActivity.
type SaveActivityDeps struct {
	Session  account.Session
	API      ActivityAdminAPI
	Sessions SessionRevoker
	Notifier CatalogNotifier // optional
}

// ExecuteCreateActivity validates a draft and creates the activity upstream.
// PRE: none
// POST: Validation errors never reach the network; a 401 revokes the stored session
func ExecuteCreateActivity(ctx context.Context, input SaveActivityInput, deps SaveActivityDeps) (SaveActivityResult, error) {
	return saveActivity(ctx, input, deps, false)
}

// ExecuteUpdateActivity validates a draft and replaces activity input.ID upstream.
// PRE: input.ID > 0
// POST: Validation errors never reach the network; a 401 revokes the stored session
func ExecuteUpdateActivity(ctx context.Context, input SaveActivityInput, deps SaveActivityDeps) (SaveActivityResult, error) {
	if input.ID <= 0 {
		return SaveActivityResult{Outcome: Outcome{Message: MsgUpdateFailed}}, ErrMissingActivityID
	}
	return saveActivity(ctx, input, deps, true)
}

func saveActivity(ctx context.Context, input SaveActivityInput, deps SaveActivityDeps, update bool) (SaveActivityResult, error) {
	okMsg, failMsg, action := MsgCreated, MsgCreateFailed, ActionCreated
	if update {
		okMsg, failMsg, action = MsgUpdated, MsgUpdateFailed, ActionUpdated
	}

	errs := activity.ValidateDraft(input.Draft)
	if len(errs) > 0 {
		return SaveActivityResult{Errors: errs}, ErrInvalidDraft
	}

	if !deps.Session.IsAuthenticated() {
		return SaveActivityResult{
			Outcome: Outcome{Message: MsgNoSession, RedirectToLogin: true},
			Errors:  errs,
		}, ErrNoSession
	}

	a, err := input.Draft.Activity(input.ID)
	if err != nil {
		return SaveActivityResult{Outcome: Outcome{Message: failMsg}, Errors: errs}, err
	}

	if update {
		err = deps.API.UpdateActivity(ctx, deps.Session.Token, a)
	} else {
		err = deps.API.CreateActivity(ctx, deps.Session.Token, a)
	}
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			if revokeErr := deps.Sessions.Delete(ctx, deps.Session.ID); revokeErr != nil {
				slog.Error("auth_event", "event", "session_revoke_failed", "session_id", deps.Session.ID, "error", revokeErr)
			}
			slog.Info("auth_event", "event", "session_expired", "user", deps.Session.Username)
			return SaveActivityResult{
				Outcome: Outcome{Message: MsgSessionExpired, RedirectToLogin: true},
				Errors:  errs,
			}, fmt.Errorf("%s activity: %w", action, ErrSessionExpired)
		}
		slog.Info("catalog_event", "event", "save_failed", "action", action, "activity_id", input.ID, "error", err)
		return SaveActivityResult{Outcome: Outcome{Message: failureMessage(err, failMsg)}, Errors: errs},
			fmt.Errorf("%s activity: %w", action, err)
	}

	slog.Info("catalog_event", "event", "activity_saved", "action", action, "activity_id", a.ID, "title", a.Title, "user", deps.Session.Username)
	notify(ctx, deps.Notifier, action, a, deps.Session.Username)
	return SaveActivityResult{Outcome: Outcome{OK: true, Message: okMsg}, Errors: errs}, nil
}

// DeleteActivityInput carries input for the delete orchestrator.
type DeleteActivityInput struct {
	ID    int
	Title string // for the notice only
}

// DeleteActivityDeps holds dependencies for DeleteActivity.
type DeleteActivityDeps struct {
	Session  account.Session
	API      ActivityAdminAPI
	Board    ActivityReloader
	Notifier CatalogNotifier // optional
}

// ExecuteDeleteActivity removes an activity and reloads the list.
// PRE: The user confirmed the deletion
// POST: On success the activity snapshot is reloaded
func ExecuteDeleteActivity(ctx context.Context, input DeleteActivityInput, deps DeleteActivityDeps) (Outcome, error) {
	if input.ID <= 0 {
		return Outcome{Message: MsgDeleteNoID}, ErrMissingActivityID
	}
	if !deps.Session.IsAuthenticated() {
		return Outcome{Message: MsgNoSession, RedirectToLogin: true}, ErrNoSession
	}

	if err := deps.API.DeleteActivity(ctx, deps.Session.Token, input.ID); err != nil {
		slog.Info("catalog_event", "event", "delete_failed", "activity_id", input.ID, "error", err)
		msg := api.ServerMessage(err)
		if msg == "" {
			msg = MsgDeleteFailed
		}
		return Outcome{Message: msg}, fmt.Errorf("delete activity %d: %w", input.ID, err)
	}

	slog.Info("catalog_event", "event", "activity_deleted", "activity_id", input.ID, "user", deps.Session.Username)
	_ = deps.Board.ReloadActivities(ctx)
	notify(ctx, deps.Notifier, ActionDeleted, activity.Activity{ID: input.ID, Title: input.Title}, deps.Session.Username)
	return Outcome{OK: true, Message: MsgDeleted}, nil
}

// notify sends a catalog notice; failures are logged and never fail the action.
func notify(ctx context.Context, n CatalogNotifier, action string, a activity.Activity, actor string) {
	if n == nil {
		return
	}
	if err := n.NotifyCatalogChange(ctx, action, a, actor); err != nil {
		slog.Warn("catalog_event", "event", "notice_failed", "action", action, "activity_id", a.ID, "error", err)
	}
}
