package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gymportal/internal/adapters/storage"
	domain "gymportal/internal/domain/account"
)

// timeLayout is fixed width so stored UTC timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite. Tokens are sealed at rest.
type SQLiteStore struct {
	db     storage.SQLDB
	sealer *Sealer
}

// NewSQLiteStore creates a new SQLiteStore.
// PRE: db has the session schema; sealer is non-nil
func NewSQLiteStore(db storage.SQLDB, sealer *Sealer) *SQLiteStore {
	return &SQLiteStore{db: db, sealer: sealer}
}

// Get retrieves a session by ID.
// PRE: id is non-empty
// POST: Returns the session or domain.ErrSessionNotFound; an unsealable row is deleted and reported as not found
func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, sealed_token, username, user_id, role, created_at, expires_at FROM session WHERE id = ?", id)

	var (
		sess      domain.Session
		sealed    string
		createdAt string
		expiresAt sql.NullString
	)
	err := row.Scan(&sess.ID, &sealed, &sess.Username, &sess.UserID, &sess.Role, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}

	sess.Token, err = s.sealer.Unseal(sealed)
	if err != nil {
		slog.Warn("session_event", "event", "unseal_failed", "session_id", id)
		if delErr := s.Delete(ctx, id); delErr != nil {
			return domain.Session{}, delErr
		}
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if sess.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return domain.Session{}, fmt.Errorf("parse created_at: %w", err)
	}
	if expiresAt.Valid {
		if sess.ExpiresAt, err = time.Parse(timeLayout, expiresAt.String); err != nil {
			return domain.Session{}, fmt.Errorf("parse expires_at: %w", err)
		}
	}
	return sess, nil
}

// Save persists a session (insert or update).
// PRE: sess has been validated
// POST: Session is persisted with its token sealed
func (s *SQLiteStore) Save(ctx context.Context, sess domain.Session) error {
	sealed, err := s.sealer.Seal(sess.Token)
	if err != nil {
		return err
	}
	var expiresAt any
	if !sess.ExpiresAt.IsZero() {
		expiresAt = sess.ExpiresAt.UTC().Format(timeLayout)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO session (id, sealed_token, username, user_id, role, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sealed_token=excluded.sealed_token,
			username=excluded.username,
			user_id=excluded.user_id,
			role=excluded.role,
			expires_at=excluded.expires_at`,
		sess.ID, sealed, sess.Username, sess.UserID, sess.Role,
		sess.CreatedAt.UTC().Format(timeLayout), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes a session. Deleting an unknown ID is not an error.
// POST: Session with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM session WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes every session whose expiry is at or before now.
// POST: Returns the number of rows removed
func (s *SQLiteStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM session WHERE expires_at IS NOT NULL AND expires_at <= ?", now.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
