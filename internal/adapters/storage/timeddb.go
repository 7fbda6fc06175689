package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gymportal/internal/adapters/http/perf"
)

// SQLDB is what the session and audit stores need from a database.
// Both *sql.DB and *TimedDB satisfy it.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ SQLDB = (*sql.DB)(nil)
	_ SQLDB = (*TimedDB)(nil)
)

// DefaultSlowQueryMs is the slow query threshold when none is configured.
const DefaultSlowQueryMs = 50

// TimedDB times every statement, warns on slow ones and records them in the perf collector.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold float64
}

// NewTimedDB wraps db. A slowMs <= 0 uses DefaultSlowQueryMs; collector may be nil.
// PRE: db is open
func NewTimedDB(db *sql.DB, collector *perf.Collector, slowMs int) *TimedDB {
	if slowMs <= 0 {
		slowMs = DefaultSlowQueryMs
	}
	return &TimedDB{db: db, collector: collector, threshold: float64(slowMs)}
}

func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.observe(query, start, err)
	return result, err
}

func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe(query, start, err)
	return rows, err
}

// QueryRowContext times the query only; scan errors surface later from Row.Scan.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe(query, start, row.Err())
	return row
}

// PingContext checks the connection; used as the health check.
func (t *TimedDB) PingContext(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// Close closes the underlying database.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

func (t *TimedDB) observe(query string, start time.Time, err error) {
	label := statementLabel(query)
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0

	switch {
	case err != nil && !errors.Is(err, sql.ErrNoRows) && !errors.Is(err, context.Canceled):
		slog.Error("query_failed", "statement", label, "duration_ms", durationMs, "error", err)
	case durationMs >= t.threshold:
		slog.Warn("slow_query", "statement", label, "duration_ms", durationMs)
	default:
		slog.Debug("query", "statement", label, "duration_ms", durationMs)
	}

	t.collector.Record(perf.Entry{
		Kind:       perf.KindQuery,
		Path:       label,
		DurationMs: durationMs,
		Timestamp:  start,
	})
}

// statementLabel names a statement by verb and table, e.g. "select session".
// Statements without a table keep only the verb.
func statementLabel(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	verb := strings.ToLower(fields[0])
	for i := 0; i < len(fields)-1; i++ {
		switch strings.ToUpper(fields[i]) {
		case "FROM", "INTO", "UPDATE":
			return verb + " " + strings.Trim(fields[i+1], "(;")
		}
	}
	return verb
}
