package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gymportal/internal/adapters/http/perf"
)

// DefaultSlowRequestMs is the slow request threshold when none is configured.
const DefaultSlowRequestMs = 200

// statusWriter records the status code written by the handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// untimed lists path prefixes that are neither logged nor recorded.
var untimed = []string{"/static/", "/healthz"}

// Timing logs each request and records it in collector (nil is allowed).
// Requests at or above slowMs log at WARN, the rest at DEBUG; slowMs <= 0 uses DefaultSlowRequestMs.
// Entries are keyed by method and route, so /actividades/7/inscripcion and
// /actividades/9/inscripcion share one perf row.
func Timing(collector *perf.Collector, slowMs int) func(http.Handler) http.Handler {
	if slowMs <= 0 {
		slowMs = DefaultSlowRequestMs
	}
	threshold := float64(slowMs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range untimed {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				durationMs := float64(time.Since(start).Microseconds()) / 1000.0
				route := routeKey(r.URL.Path)
				attrs := []any{
					"request_id", RequestIDFrom(r.Context()),
					"method", r.Method,
					"route", route,
					"status", sw.status,
					"duration_ms", durationMs,
				}
				if durationMs >= threshold {
					slog.Warn("slow_request", attrs...)
				} else {
					slog.Debug("request", attrs...)
				}
				collector.Record(perf.Entry{
					Kind:       perf.KindRequest,
					Path:       r.Method + " " + route,
					StatusCode: sw.status,
					DurationMs: durationMs,
					Timestamp:  start,
				})
			}()

			next.ServeHTTP(sw, r)
		})
	}
}

// routeKey replaces numeric path segments with {id}.
func routeKey(path string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if s != "" && strings.Trim(s, "0123456789") == "" {
			segs[i] = "{id}"
		}
	}
	return strings.Join(segs, "/")
}
