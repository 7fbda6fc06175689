package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gymportal/internal/adapters/api"
	"gymportal/internal/domain/account"
)

// DefaultSessionTTL applies when neither the token nor the response carries an expiry.
const DefaultSessionTTL = 30 * time.Minute

// AuthAPI defines the backend calls needed by Login and Register.
type AuthAPI interface {
	Login(ctx context.Context, creds account.Credentials) (api.Token, error)
	Register(ctx context.Context, reg account.Registration) (api.Token, error)
}

// SessionSaver persists a new session.
type SessionSaver interface {
	Save(ctx context.Context, s account.Session) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Credentials account.Credentials
}

// RegisterInput carries input for the register orchestrator.
type RegisterInput struct {
	Registration account.Registration
}

// LoginResult carries the created session and the message to show.
type LoginResult struct {
	Outcome
	Session account.Session
}

// LoginDeps holds dependencies for Login and Register.
type LoginDeps struct {
	API        AuthAPI
	Sessions   SessionSaver
	JWTSecret  string // empty: claims are read without verification
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteLogin exchanges credentials for a backend token and stores a session.
// PRE: none
// POST: On success the session is persisted and returned
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	creds := input.Credentials
	if err := creds.Validate(); err != nil {
		return LoginResult{Outcome: Outcome{Message: MsgLoginRequired}}, err
	}

	tok, err := deps.API.Login(ctx, creds)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "username", creds.Username, "error", err)
		if errors.Is(err, api.ErrUnauthorized) {
			return LoginResult{Outcome: Outcome{Message: MsgLoginFailed}}, ErrInvalidCredentials
		}
		return LoginResult{Outcome: Outcome{Message: failureMessage(err, MsgLoginFailed)}}, fmt.Errorf("login: %w", err)
	}

	sess, err := openSession(ctx, tok, creds.Username, deps)
	if err != nil {
		return LoginResult{Outcome: Outcome{Message: MsgLoginFailed}}, err
	}
	slog.Info("auth_event", "event", "login_success", "username", sess.Username, "role", sess.Role)
	return LoginResult{Outcome: Outcome{OK: true}, Session: sess}, nil
}

// ExecuteRegister creates a backend user and logs it in.
// PRE: none
// POST: On success the session is persisted and returned
func ExecuteRegister(ctx context.Context, input RegisterInput, deps LoginDeps) (LoginResult, error) {
	reg := input.Registration
	if err := reg.Validate(); err != nil {
		return LoginResult{Outcome: Outcome{Message: MsgRegisterFields}}, err
	}

	tok, err := deps.API.Register(ctx, reg)
	if err != nil {
		slog.Info("auth_event", "event", "register_failed", "username", reg.Username, "error", err)
		return LoginResult{Outcome: Outcome{Message: failureMessage(err, MsgRegisterFailed)}}, fmt.Errorf("register: %w", err)
	}

	sess, err := openSession(ctx, tok, reg.Username, deps)
	if err != nil {
		return LoginResult{Outcome: Outcome{Message: MsgRegisterFailed}}, err
	}
	slog.Info("auth_event", "event", "registered", "username", sess.Username)
	return LoginResult{Outcome: Outcome{OK: true}, Session: sess}, nil
}

// openSession derives the role and expiry from tok and persists the session.
// Opaque tokens are accepted as member sessions unless a JWT secret is configured.
func openSession(ctx context.Context, tok api.Token, username string, deps LoginDeps) (account.Session, error) {
	now := deps.Now()

	claims, err := api.ParseClaims(tok.AccessToken, deps.JWTSecret)
	if err != nil {
		if deps.JWTSecret != "" {
			slog.Warn("auth_event", "event", "token_rejected", "username", username, "error", err)
			return account.Session{}, err
		}
		claims = api.Claims{}
	}

	sess := account.Session{
		ID:        deps.GenerateID(),
		Token:     tok.AccessToken,
		Username:  username,
		UserID:    claims.UserID,
		Role:      account.RoleMember,
		CreatedAt: now,
	}
	if claims.Username != "" {
		sess.Username = claims.Username
	}
	if claims.IsAdmin {
		sess.Role = account.RoleAdmin
	}
	switch {
	case !claims.ExpiresAt.IsZero():
		sess.ExpiresAt = claims.ExpiresAt
	case tok.ExpiresIn > 0:
		sess.ExpiresAt = now.Add(time.Duration(tok.ExpiresIn) * time.Second)
	default:
		sess.ExpiresAt = now.Add(DefaultSessionTTL)
	}

	if err := sess.Validate(); err != nil {
		return account.Session{}, fmt.Errorf("open session: %w", err)
	}
	if err := deps.Sessions.Save(ctx, sess); err != nil {
		return account.Session{}, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// LogoutInput carries input for the logout orchestrator.
type LogoutInput struct {
	Session account.Session
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	Sessions SessionRevoker
}

// ExecuteLogout removes the stored session. Logging out anonymously is a no-op.
// POST: The session can no longer be loaded
func ExecuteLogout(ctx context.Context, input LogoutInput, deps LogoutDeps) error {
	if input.Session.ID == "" {
		return nil
	}
	if err := deps.Sessions.Delete(ctx, input.Session.ID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	slog.Info("auth_event", "event", "logout", "username", input.Session.Username)
	return nil
}
