package account

import (
	"errors"
	"strings"
	"time"
)

// Role constants
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleMember}

// Domain errors
var (
	ErrEmptyToken      = errors.New("session token cannot be empty")
	ErrEmptyUsername   = errors.New("username cannot be empty")
	ErrInvalidRole     = errors.New("role must be one of: admin, member")
	ErrEmptyPassword   = errors.New("password cannot be empty")
	ErrEmptyName       = errors.New("first and last name are required")
	ErrSessionExpiry   = errors.New("session must expire after it is created")
	ErrSessionNotFound = errors.New("session not found")
)

// Session is the authenticated context of one browser: the backend bearer token
// plus the role derived from it. The zero value is the anonymous session.
type Session struct {
	ID        string
	Token     string
	Username  string
	UserID    int
	Role      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Anonymous returns the session of a visitor who has not logged in.
func Anonymous() Session {
	return Session{}
}

// IsAuthenticated reports whether the session carries a bearer token.
// INVARIANT: Session fields are not mutated
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// IsAdmin returns true if the session is authenticated with the admin role.
// INVARIANT: Session fields are not mutated
func (s Session) IsAdmin() bool {
	return s.IsAuthenticated() && s.Role == RoleAdmin
}

// IsExpired returns true once now reaches ExpiresAt. A zero ExpiresAt never expires.
// INVARIANT: Session fields are not mutated
func (s Session) IsExpired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt)
}

// Validate checks if the Session has valid data for persistence.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Session) Validate() error {
	if s.Token == "" {
		return ErrEmptyToken
	}
	if strings.TrimSpace(s.Username) == "" {
		return ErrEmptyUsername
	}
	if !isValidRole(s.Role) {
		return ErrInvalidRole
	}
	if !s.ExpiresAt.IsZero() && !s.ExpiresAt.After(s.CreatedAt) {
		return ErrSessionExpiry
	}
	return nil
}

// Credentials is the login form.
type Credentials struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate checks that both fields are present.
// POST: Returns nil if valid, error otherwise
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return ErrEmptyUsername
	}
	if c.Password == "" {
		return ErrEmptyPassword
	}
	return nil
}

// Registration is the sign-up form.
type Registration struct {
	FirstName string `form:"nombre" json:"nombre"`
	LastName  string `form:"apellido" json:"apellido"`
	Username  string `form:"username" json:"username"`
	Password  string `form:"password" json:"password"`
}

// Validate checks that every field is present.
// POST: Returns nil if valid, error otherwise
func (r Registration) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return ErrEmptyName
	}
	return Credentials{Username: r.Username, Password: r.Password}.Validate()
}

func isValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
