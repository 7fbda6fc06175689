package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvProduction is the GYM_ENV value that turns on secure cookies and required keys.
const EnvProduction = "production"

// Config is the process configuration read from GYM_* variables.
type Config struct {
	Env            string
	Addr           string
	APIURL         string
	APITimeout     time.Duration
	DBPath         string
	CSRFKey        []byte
	SessionKey     []byte
	JWTSecret      string
	ResendKey      string
	NotifyFrom     string
	NotifyTo       []string
	RateLimitRPS   float64
	RateLimitBurst int
	SlowRequestMs  int
	SlowUpstreamMs int
	LogLevel       slog.Level
	TrustedOrigins []string
}

// Configuration errors
var (
	ErrMissingKey = errors.New("key is required in production")
	ErrInvalidKey = errors.New("key must be 64 hex characters")
)

// Load reads .env (if present) and then the environment.
// POST: Returns a Config with every field defaulted, or the first invalid value
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
// PRE: getenv is non-nil
func FromEnv(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Env:            env("GYM_ENV", "development"),
		Addr:           env("GYM_ADDR", ":3000"),
		APIURL:         strings.TrimRight(env("GYM_API_URL", "http://localhost:8080"), "/"),
		DBPath:         env("GYM_DB_PATH", "gymportal.db"),
		JWTSecret:      getenv("GYM_JWT_SECRET"),
		ResendKey:      getenv("GYM_RESEND_KEY"),
		NotifyFrom:     env("GYM_NOTIFY_FROM", "Gimnasio <noreply@gym.local>"),
		NotifyTo:       splitList(getenv("GYM_NOTIFY_TO")),
		TrustedOrigins: splitList(getenv("GYM_TRUSTED_ORIGINS")),
	}

	var err error
	if cfg.APITimeout, err = time.ParseDuration(env("GYM_API_TIMEOUT", "30s")); err != nil || cfg.APITimeout <= 0 {
		return Config{}, fmt.Errorf("GYM_API_TIMEOUT: invalid duration %q", getenv("GYM_API_TIMEOUT"))
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(env("GYM_RATE_LIMIT_RPS", "10"), 64); err != nil || cfg.RateLimitRPS <= 0 {
		return Config{}, fmt.Errorf("GYM_RATE_LIMIT_RPS: must be a positive number")
	}
	if cfg.RateLimitBurst, err = positiveInt(env("GYM_RATE_LIMIT_BURST", "20")); err != nil {
		return Config{}, fmt.Errorf("GYM_RATE_LIMIT_BURST: %w", err)
	}
	if cfg.SlowRequestMs, err = positiveInt(env("GYM_SLOW_REQUEST_MS", "200")); err != nil {
		return Config{}, fmt.Errorf("GYM_SLOW_REQUEST_MS: %w", err)
	}
	if cfg.SlowUpstreamMs, err = positiveInt(env("GYM_SLOW_UPSTREAM_MS", "500")); err != nil {
		return Config{}, fmt.Errorf("GYM_SLOW_UPSTREAM_MS: %w", err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(env("GYM_LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("GYM_LOG_LEVEL: %w", err)
	}

	if cfg.CSRFKey, err = key(getenv("GYM_CSRF_KEY"), cfg.IsProduction()); err != nil {
		return Config{}, fmt.Errorf("GYM_CSRF_KEY: %w", err)
	}
	if cfg.SessionKey, err = key(getenv("GYM_SESSION_KEY"), cfg.IsProduction()); err != nil {
		return Config{}, fmt.Errorf("GYM_SESSION_KEY: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether GYM_ENV is production.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// key decodes a 32-byte hex key. Outside production a missing key is replaced by random bytes,
// which invalidates sessions and CSRF tokens on restart.
func key(raw string, required bool) ([]byte, error) {
	if raw == "" {
		if required {
			return nil, ErrMissingKey
		}
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, err
		}
		return b, nil
	}
	b, err := hex.DecodeString(raw)
	if err != nil || len(b) != 32 {
		return nil, ErrInvalidKey
	}
	return b, nil
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("must be a positive integer, got %q", s)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
