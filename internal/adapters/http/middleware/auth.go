package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	domainAccount "gymportal/internal/domain/account"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionStore loads and persists server-side sessions.
// Get returns domainAccount.ErrSessionNotFound for unknown IDs.
type SessionStore interface {
	Get(ctx context.Context, id string) (domainAccount.Session, error)
	Save(ctx context.Context, s domainAccount.Session) error
	Delete(ctx context.Context, id string) error
}

// MemorySessionStore is an in-memory SessionStore used by tests and GYM_DB_PATH=":memory:" runs.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domainAccount.Session
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainAccount.Session),
	}
}

// Get retrieves a session by ID.
// PRE: id is non-empty
// POST: Returns the session or ErrSessionNotFound
func (ss *MemorySessionStore) Get(_ context.Context, id string) (domainAccount.Session, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	s, ok := ss.sessions[id]
	if !ok {
		return domainAccount.Session{}, domainAccount.ErrSessionNotFound
	}
	return s, nil
}

// Save stores or replaces a session.
// PRE: s.ID is non-empty
// POST: Session is stored under s.ID
func (ss *MemorySessionStore) Save(_ context.Context, s domainAccount.Session) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[s.ID] = s
	return nil
}

// Delete removes a session by ID. Deleting an unknown ID is not an error.
// POST: Session with given ID is removed
func (ss *MemorySessionStore) Delete(_ context.Context, id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, id)
	return nil
}

const sessionCookieName = "gymportal_session"

// Auth returns middleware that loads the session named by the cookie into the context.
// It does NOT block anonymous requests; use RequireRole for that.
// Expired sessions are deleted and the cookie cleared.
func Auth(sessions SessionStore, secure bool, now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := sessions.Get(r.Context(), cookie.Value)
			switch {
			case errors.Is(err, domainAccount.ErrSessionNotFound):
				ClearSessionCookie(w, secure)
			case err != nil:
				slog.Error("auth_event", "event", "session_load_failed", "error", err)
			case sess.IsExpired(now()):
				if err := sessions.Delete(r.Context(), sess.ID); err != nil {
					slog.Error("auth_event", "event", "session_delete_failed", "session_id", sess.ID, "error", err)
				}
				ClearSessionCookie(w, secure)
				slog.Info("auth_event", "event", "session_expired", "username", sess.Username)
			default:
				r = r.WithContext(ContextWithSession(r.Context(), sess))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole returns middleware that blocks requests from sessions without one of the given roles.
// Anonymous requests are sent to the login page.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFrom(r.Context())
			if !sess.IsAuthenticated() {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if !roleSet[sess.Role] {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFrom returns the request's session, or the anonymous session.
func SessionFrom(ctx context.Context) domainAccount.Session {
	sess, ok := ctx.Value(sessionContextKey).(domainAccount.Session)
	if !ok {
		return domainAccount.Anonymous()
	}
	return sess
}

// ContextWithSession returns a context carrying sess.
func ContextWithSession(ctx context.Context, sess domainAccount.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// IsAdmin checks if the current session is an admin.
func IsAdmin(ctx context.Context) bool {
	return SessionFrom(ctx).IsAdmin()
}

// SetSessionCookie sets the session cookie, expiring with the session.
func SetSessionCookie(w http.ResponseWriter, id string, expires time.Time, secure bool) {
	c := &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
	if !expires.IsZero() {
		c.Expires = expires
	}
	http.SetCookie(w, c)
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
