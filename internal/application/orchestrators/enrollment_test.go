package orchestrators

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"gymportal/internal/adapters/api"
	"gymportal/internal/domain/account"
)

// mockEnrollmentAPI implements EnrollmentAPI for testing.
// PRE: enrollErr / unenrollErr set before use
// POST: records every call
type mockEnrollmentAPI struct {
	enrollErr     error
	unenrollErr   error
	enrollCalls   int
	unenrollCalls int
	lastToken     string
	lastID        int
}

func (m *mockEnrollmentAPI) Enroll(_ context.Context, token string, id int) error {
	m.enrollCalls++
	m.lastToken, m.lastID = token, id
	return m.enrollErr
}

func (m *mockEnrollmentAPI) Unenroll(_ context.Context, token string, id int) error {
	m.unenrollCalls++
	m.lastToken, m.lastID = token, id
	return m.unenrollErr
}

// mockBoard implements BoardReloader and ActivityReloader for testing.
// PRE: none
// POST: counts reloads
type mockBoard struct {
	activityReloads   int
	enrollmentReloads int
}

func (m *mockBoard) ReloadActivities(context.Context) error {
	m.activityReloads++
	return nil
}

func (m *mockBoard) ReloadEnrollments(context.Context) error {
	m.enrollmentReloads++
	return nil
}

var memberSession = account.Session{ID: "sess-1", Token: "tok", Username: "ana", Role: account.RoleMember}

// TestExecuteEnroll_Anonymous verifies no request is made without a session.
func TestExecuteEnroll_Anonymous(t *testing.T) {
	apiMock := &mockEnrollmentAPI{}
	board := &mockBoard{}

	out, err := ExecuteEnroll(context.Background(), EnrollmentInput{ActivityID: 4}, EnrollmentDeps{
		Session: account.Anonymous(), API: apiMock, Board: board,
	})
	if !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("got %v, want ErrLoginRequired", err)
	}
	if !out.RedirectToLogin {
		t.Error("expected redirect to login")
	}
	if apiMock.enrollCalls != 0 || board.activityReloads != 0 || board.enrollmentReloads != 0 {
		t.Errorf("made calls: enroll=%d reloads=%d/%d", apiMock.enrollCalls, board.activityReloads, board.enrollmentReloads)
	}
}

// TestExecuteEnroll_Success verifies both lists are reloaded and the success message shown.
func TestExecuteEnroll_Success(t *testing.T) {
	apiMock := &mockEnrollmentAPI{}
	board := &mockBoard{}

	out, err := ExecuteEnroll(context.Background(), EnrollmentInput{ActivityID: 4}, EnrollmentDeps{
		Session: memberSession, API: apiMock, Board: board,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.OK || out.Message != MsgEnrolled {
		t.Errorf("outcome = %+v", out)
	}
	if apiMock.lastToken != "tok" || apiMock.lastID != 4 {
		t.Errorf("request token=%q id=%d", apiMock.lastToken, apiMock.lastID)
	}
	if board.enrollmentReloads != 1 || board.activityReloads != 1 {
		t.Errorf("reloads = %d enrollments, %d activities; want 1, 1", board.enrollmentReloads, board.activityReloads)
	}
}

// TestExecuteEnroll_Failure verifies the server message, fallback, and connectivity message.
func TestExecuteEnroll_Failure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{name: "server message", err: &api.Error{Status: http.StatusBadRequest, Message: "No se puede inscribir, el cupo de la actividad ha sido alcanzado"},
			wantMsg: "No se puede inscribir, el cupo de la actividad ha sido alcanzado"},
		{name: "no server message", err: &api.Error{Status: http.StatusInternalServerError}, wantMsg: MsgEnrollFailed},
		{name: "transport", err: &api.TransportError{Op: "POST /inscripciones", Err: errors.New("connection refused")}, wantMsg: MsgConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := &mockBoard{}
			out, err := ExecuteEnroll(context.Background(), EnrollmentInput{ActivityID: 4}, EnrollmentDeps{
				Session: memberSession, API: &mockEnrollmentAPI{enrollErr: tt.err}, Board: board,
			})
			if err == nil {
				t.Fatal("expected error")
			}
			if out.OK || out.Message != tt.wantMsg {
				t.Errorf("outcome = %+v, want message %q", out, tt.wantMsg)
			}
			if board.enrollmentReloads != 0 {
				t.Errorf("enrollment reloads = %d, want 0", board.enrollmentReloads)
			}
			if board.activityReloads != 1 {
				t.Errorf("activity reloads = %d, want 1", board.activityReloads)
			}
		})
	}
}

// TestExecuteUnenroll_Success verifies a 204 reloads enrollments and activities.
func TestExecuteUnenroll_Success(t *testing.T) {
	board := &mockBoard{}
	out, err := ExecuteUnenroll(context.Background(), EnrollmentInput{ActivityID: 2}, EnrollmentDeps{
		Session: memberSession, API: &mockEnrollmentAPI{}, Board: board,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Message != MsgUnenrolled {
		t.Errorf("message = %q, want %q", out.Message, MsgUnenrolled)
	}
	if board.enrollmentReloads != 1 || board.activityReloads != 1 {
		t.Errorf("reloads = %d/%d, want 1/1", board.enrollmentReloads, board.activityReloads)
	}
}

// TestExecuteUnenroll_NonNoContent verifies a 200 is a failure with the generic message.
func TestExecuteUnenroll_NonNoContent(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "status 200", err: &api.Error{Status: http.StatusOK}},
		{name: "server detail ignored", err: &api.Error{Status: http.StatusInternalServerError, Message: "Error al inscribir al usuario"}},
		{name: "transport", err: &api.TransportError{Op: "DELETE /inscripciones", Err: errors.New("timeout")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := &mockBoard{}
			out, err := ExecuteUnenroll(context.Background(), EnrollmentInput{ActivityID: 2}, EnrollmentDeps{
				Session: memberSession, API: &mockEnrollmentAPI{unenrollErr: tt.err}, Board: board,
			})
			if err == nil {
				t.Fatal("expected error")
			}
			if out.Message != MsgUnenrollFailed {
				t.Errorf("message = %q, want %q", out.Message, MsgUnenrollFailed)
			}
			if board.enrollmentReloads != 0 {
				t.Errorf("enrollment reloads = %d, want 0", board.enrollmentReloads)
			}
			if board.activityReloads != 1 {
				t.Errorf("activity reloads = %d, want 1", board.activityReloads)
			}
		})
	}
}

// TestExecuteUnenroll_Anonymous verifies no request is made without a session.
func TestExecuteUnenroll_Anonymous(t *testing.T) {
	apiMock := &mockEnrollmentAPI{}
	_, err := ExecuteUnenroll(context.Background(), EnrollmentInput{ActivityID: 2}, EnrollmentDeps{
		Session: account.Anonymous(), API: apiMock, Board: &mockBoard{},
	})
	if !errors.Is(err, ErrLoginRequired) {
		t.Errorf("got %v, want ErrLoginRequired", err)
	}
	if apiMock.unenrollCalls != 0 {
		t.Errorf("unenroll calls = %d, want 0", apiMock.unenrollCalls)
	}
}
