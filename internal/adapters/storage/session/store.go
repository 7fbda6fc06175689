package session

import (
	"context"
	"time"

	domain "gymportal/internal/domain/account"
)

// Store persists browser sessions. Get returns domain.ErrSessionNotFound for unknown IDs.
type Store interface {
	Get(ctx context.Context, id string) (domain.Session, error)
	Save(ctx context.Context, s domain.Session) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
