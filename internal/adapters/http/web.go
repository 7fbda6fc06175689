package web

import (
	"context"
	"embed"
	"net/http"
	"time"

	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/adapters/http/perf"
	"gymportal/internal/application/board"
	"gymportal/internal/application/orchestrators"
	"gymportal/internal/application/projections"
	"gymportal/internal/domain/account"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// BackendAPI is every activities-API call the handlers make.
// *api.Client satisfies it.
type BackendAPI interface {
	board.Source
	projections.ActivityGetter
	orchestrators.EnrollmentAPI
	orchestrators.ActivityAdminAPI
	orchestrators.AuthAPI
}

// Deps holds the collaborators the handlers use.
type Deps struct {
	API           BackendAPI
	Sessions      middleware.SessionStore
	Notifier      orchestrators.CatalogNotifier // optional
	Collector     *perf.Collector               // optional
	AuditLog      projections.AuditLister       // optional; nil disables /admin/auditoria
	JWTSecret     string
	SecureCookies bool
	HealthCheck   func(ctx context.Context) error // optional; nil reports healthy
}

// MuxOptions configures the middleware chain.
type MuxOptions struct {
	CSRFKey        []byte // 32 bytes
	TrustedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	SlowRequestMs  int
}

// Package-level dependencies (set by NewMux, replaced directly in tests).
var (
	backend       BackendAPI
	sessions      middleware.SessionStore
	notifier      orchestrators.CatalogNotifier
	perfCollector *perf.Collector
	auditLog      projections.AuditLister
	jwtSecret     string
	secureCookies bool
	healthCheck   func(ctx context.Context) error
)

// timeNow is a variable for testability.
var timeNow = time.Now

func setDeps(d Deps) {
	backend = d.API
	sessions = d.Sessions
	notifier = d.Notifier
	perfCollector = d.Collector
	auditLog = d.AuditLog
	jwtSecret = d.JWTSecret
	secureCookies = d.SecureCookies
	healthCheck = d.HealthCheck
}

// NewMux wires HTTP handlers and the middleware chain for the app.
// The rate limiter janitor stops when ctx is done.
// PRE: d.API and d.Sessions are non-nil; opts.CSRFKey is 32 bytes
func NewMux(ctx context.Context, d Deps, opts MuxOptions) http.Handler {
	setDeps(d)

	mux := http.NewServeMux()
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(ctx, opts.RateLimitRPS, opts.RateLimitBurst)

	// Outermost first: RequestID -> Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, d.SecureCookies, opts.TrustedOrigins),
		middleware.Auth(d.Sessions, d.SecureCookies, timeNow),
		middleware.RateLimit(limiter),
		middleware.Timing(d.Collector, opts.SlowRequestMs),
		middleware.RequestID,
	)
}

func registerRoutes(mux *http.ServeMux) {
	admin := middleware.RequireRole(account.RoleAdmin)

	mux.Handle("GET /static/", http.FileServerFS(staticFS))
	mux.HandleFunc("GET /{$}", handleHome)
	mux.HandleFunc("GET /healthz", handleHealthz)

	mux.HandleFunc("GET /login", handleLoginPage)
	mux.HandleFunc("POST /login", handleLogin)
	mux.HandleFunc("GET /register", handleRegisterPage)
	mux.HandleFunc("POST /register", handleRegister)
	mux.HandleFunc("POST /logout", handleLogout)

	mux.HandleFunc("GET /actividades", handleActivities)
	mux.HandleFunc("POST /actividades/{id}/inscripcion", handleEnroll)
	mux.HandleFunc("POST /actividades/{id}/desinscripcion", handleUnenroll)

	mux.Handle("GET /admin/actividades/nueva", admin(http.HandlerFunc(handleNewActivityForm)))
	mux.Handle("POST /admin/actividades", admin(http.HandlerFunc(handleCreateActivity)))
	mux.Handle("GET /admin/actividades/{id}/editar", admin(http.HandlerFunc(handleEditActivityForm)))
	mux.Handle("POST /admin/actividades/{id}", admin(http.HandlerFunc(handleUpdateActivity)))
	mux.Handle("POST /admin/actividades/{id}/eliminar", admin(http.HandlerFunc(handleDeleteActivity)))
	mux.Handle("GET /admin/perf", admin(http.HandlerFunc(handlePerf)))
	mux.Handle("GET /admin/auditoria", admin(http.HandlerFunc(handleAudit)))
}
