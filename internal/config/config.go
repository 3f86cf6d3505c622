// Package config loads card-creator settings from environment variables.
// Every setting has a default except where noted, and the whole
// configuration is validated at startup so a bad value fails fast.
package config

import (
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Export   ExportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Auth     AuthConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout must cover the largest archive export.
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"5m"`

	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"2m"`
}

// DatabaseConfig selects and tunes the card set store.
type DatabaseConfig struct {
	// URL is a postgres:// or postgresql:// DSN for PostgreSQL; anything
	// else is handed to SQLite ("file:cards.db", ":memory:").
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" default:"file:cards.db?_foreign_keys=on"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// IsPostgres reports whether URL points at a PostgreSQL server.
func (c DatabaseConfig) IsPostgres() bool {
	u := strings.ToLower(c.URL)
	return strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://")
}

// ImportConfig bounds spreadsheet imports.
type ImportConfig struct {
	// MaxFileSize is the largest accepted spreadsheet in bytes (default: 10MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrent is the number of imports decoded at once (default: 4)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"4"`

	// MaxPerAccount is the number of those slots one account may hold (default: 1)
	MaxPerAccount int `env:"IMPORT_MAX_PER_ACCOUNT" default:"1"`

	// MaxWaitTime is how long an import waits for a free slot (default: 15s)
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"15s"`

	// Timeout caps a single import, from upload to extraction (default: 1m)
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"1m"`
}

// ExportConfig tunes card rendering.
type ExportConfig struct {
	// Scale is the raster resolution in pixels per millimetre (default: 12,
	// about 300 dpi)
	Scale int `env:"EXPORT_SCALE" default:"12"`

	// Workers is the number of cards rendered in parallel (default: 4)
	Workers int `env:"EXPORT_WORKERS" default:"4"`

	// MaxCards caps one export request (default: 1000)
	MaxCards int `env:"EXPORT_MAX_CARDS" default:"1000"`
}

// RateLimitConfig holds per-IP request limits.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute applies to every route (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// ImportLimit applies to import and export routes (default: 10)
	ImportLimit int `env:"RATE_LIMIT_IMPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Forwarded-For and X-Real-IP headers are honoured.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// AuthConfig holds session settings.
type AuthConfig struct {
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" default:"12h"`

	// DemoUsers seeds the two municipal demo accounts (default: true)
	DemoUsers bool `env:"AUTH_DEMO_USERS" default:"true"`

	// CookieSecure marks the session cookie Secure; enable behind TLS.
	CookieSecure bool `env:"AUTH_COOKIE_SECURE" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
