package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"gymportal/internal/adapters/api"
	emailPkg "gymportal/internal/adapters/email"
	web "gymportal/internal/adapters/http"
	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/adapters/http/perf"
	"gymportal/internal/adapters/storage"
	auditstore "gymportal/internal/adapters/storage/audit"
	"gymportal/internal/adapters/storage/session"
	"gymportal/internal/application/orchestrators"
	"gymportal/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const sessionPurgeInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := perf.NewCollector(perf.DefaultRingSize)

	stores := openStores(ctx, cfg, collector)
	defer stores.close()

	httpClient := &http.Client{Timeout: cfg.APITimeout}
	client := api.NewClient(cfg.APIURL, httpClient, collector, cfg.SlowUpstreamMs)

	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.NotifyFrom)
		slog.Info("email sender configured", "provider", "resend", "recipients", len(cfg.NotifyTo))
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() && len(cfg.NotifyTo) > 0 {
			slog.Warn("GYM_RESEND_KEY is not set; catalog notices are not delivered")
		}
	}

	notifiers := orchestrators.Notifiers{emailPkg.NewCatalogNotifier(sender, cfg.NotifyTo)}
	deps := web.Deps{
		API:           client,
		Sessions:      stores.sessions,
		Collector:     collector,
		JWTSecret:     cfg.JWTSecret,
		SecureCookies: cfg.IsProduction(),
		HealthCheck:   stores.healthCheck,
	}
	if stores.audit != nil {
		notifiers = append(notifiers, orchestrators.AuditTrail{
			Store:      stores.audit,
			GenerateID: uuid.NewString,
			Now:        time.Now,
			RequestID:  middleware.RequestIDFrom,
		})
		deps.AuditLog = stores.audit
	}
	deps.Notifier = notifiers
	handler := web.NewMux(ctx, deps, web.MuxOptions{
		CSRFKey:        cfg.CSRFKey,
		TrustedOrigins: cfg.TrustedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		SlowRequestMs:  cfg.SlowRequestMs,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.APITimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "api", cfg.APIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}

// setupLogging installs the default slog logger: text in development, JSON in production.
func setupLogging(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

// dataStores holds the persistence the server runs on.
type dataStores struct {
	sessions    middleware.SessionStore
	audit       *auditstore.SQLiteStore // nil with the in-memory store
	healthCheck func(context.Context) error
	close       func()
}

// openStores opens the SQLite database, or in-memory sessions for GYM_DB_PATH=":memory:".
// POST: close is always non-nil
func openStores(ctx context.Context, cfg config.Config, collector *perf.Collector) dataStores {
	if cfg.DBPath == ":memory:" {
		slog.Warn("sessions are kept in memory and lost on restart; catalog audit disabled")
		return dataStores{sessions: middleware.NewMemorySessionStore(), close: func() {}}
	}

	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialise database: %v", err)
	}

	sealer, err := session.NewSealer(cfg.SessionKey)
	if err != nil {
		log.Fatalf("invalid session key: %v", err)
	}
	timedDB := storage.NewTimedDB(db, collector, storage.DefaultSlowQueryMs)
	sessionStore := session.NewSQLiteStore(timedDB, sealer)
	session.StartExpiryPurge(ctx, sessionStore, sessionPurgeInterval, time.Now)
	slog.Info("database ready", "path", cfg.DBPath)

	return dataStores{
		sessions:    sessionStore,
		audit:       auditstore.NewSQLiteStore(timedDB),
		healthCheck: timedDB.PingContext,
		close:       func() { timedDB.Close() },
	}
}
