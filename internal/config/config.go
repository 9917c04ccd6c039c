// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server     ServerConfig
	Validation ValidationConfig
	Schema     SchemaConfig
	Rate       RateLimitConfig
	Security   SecurityConfig
	Logging    LoggingConfig
	Metrics    MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxBodyBytes caps request bodies (default: 16MB)
	MaxBodyBytes int64 `env:"SERVER_MAX_BODY_BYTES" default:"16777216"`
}

// ValidationConfig holds validation run settings.
type ValidationConfig struct {
	// MaxConcurrent is the maximum number of parallel runs (default: 8)
	MaxConcurrent int `env:"VALIDATION_MAX_CONCURRENT" default:"8"`

	// MaxWaitTime is how long a request waits for a run slot (default: 5s)
	MaxWaitTime time.Duration `env:"VALIDATION_MAX_WAIT_TIME" default:"5s"`

	// RunTimeout bounds how long a request waits for its run result (default: 30s)
	RunTimeout time.Duration `env:"VALIDATION_RUN_TIMEOUT" default:"30s"`

	// MaxRows rejects snapshots larger than this (default: 100000)
	MaxRows int `env:"VALIDATION_MAX_ROWS" default:"100000"`

	// SessionTTL is how long an idle session keeps its run generation (default: 30m)
	SessionTTL time.Duration `env:"VALIDATION_SESSION_TTL" default:"30m"`

	// MaxSessions caps the number of tracked sessions (default: 10000)
	MaxSessions int `env:"VALIDATION_MAX_SESSIONS" default:"10000"`
}

// SchemaConfig holds grid schema loading settings.
type SchemaConfig struct {
	// Dir is the directory scanned for grid schema files. Empty disables loading.
	Dir string `env:"SCHEMA_DIR" envAlt:"GRID_SCHEMA_DIR"`

	// Watch reloads schemas when files in Dir change (default: true)
	Watch bool `env:"SCHEMA_WATCH" default:"true"`

	// Debounce coalesces bursts of file events (default: 250ms)
	Debounce time.Duration `env:"SCHEMA_DEBOUNCE" default:"250ms"`

	// Extensions lists the schema file extensions (default: .yaml,.yml,.json)
	Extensions []string `env:"SCHEMA_EXTENSIONS" default:".yaml,.yml,.json"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// ValidateLimit is requests per minute for validation endpoints (default: 60)
	ValidateLimit int `env:"RATE_LIMIT_VALIDATE" default:"60"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enables API key authentication on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint (default: true)
	Enabled bool `env:"METRICS_ENABLED" default:"true"`

	// Namespace prefixes every metric name (default: gridcheck)
	Namespace string `env:"METRICS_NAMESPACE" default:"gridcheck"`

	// Path is where metrics are served (default: /metrics)
	Path string `env:"METRICS_PATH" default:"/metrics"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
