package session

import (
	"context"
	"log/slog"
	"time"
)

// StartExpiryPurge deletes expired sessions every interval until ctx is done.
// PRE: interval > 0
func StartExpiryPurge(ctx context.Context, store Store, interval time.Duration, now func() time.Time) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purgeOnce(ctx, store, now())
			}
		}
	}()
}

func purgeOnce(ctx context.Context, store Store, now time.Time) {
	n, err := store.DeleteExpired(ctx, now)
	if err != nil {
		slog.Error("session_event", "event", "purge_failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("session_event", "event", "purged", "count", n)
	}
}
