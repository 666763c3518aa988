package config

import (
	"time"

	"gatehouse-hq/janus/pkg/breaker"
	"gatehouse-hq/janus/pkg/ratelimit"
)

// Config is the root configuration structure for Janus.
type Config struct {
	// Server contains HTTP server configuration.
	Server ServerConfig `yaml:"server"`

	// Auth contains token issuance and verification configuration.
	// The signing secret itself comes from JANUS_SIGNING_SECRET.
	Auth AuthConfig `yaml:"auth"`

	// RateLimits contains per-scope sliding-window limits.
	RateLimits ratelimit.Config `yaml:"rate_limits"`

	// RateLimitStore selects the counting store backend.
	RateLimitStore StoreConfig `yaml:"rate_limit_store"`

	// Breakers maps provider names to circuit breaker thresholds.
	// Providers without an entry get the breaker defaults.
	Breakers map[string]breaker.Config `yaml:"breakers"`

	// Providers maps provider names to their connection settings.
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Audit contains audit trail configuration.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 60s (review calls can be slow)
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// AuthConfig contains token configuration. The signing secret is
// environment-only by design.
type AuthConfig struct {
	// Issuer is the iss claim on minted tokens.
	// Default: "janus"
	Issuer string `yaml:"issuer"`

	// TokenTTL is the default token lifetime.
	// Default: 24h
	TokenTTL time.Duration `yaml:"token_ttl"`

	// SigningSecret is populated from JANUS_SIGNING_SECRET. Never set
	// it in the YAML file; Load overwrites it from the environment.
	SigningSecret string `yaml:"-"`
}

// StoreBackend selects a rate limit counting store implementation.
type StoreBackend string

const (
	// StoreRedis uses a shared Redis instance (required for
	// multi-process deployments).
	StoreRedis StoreBackend = "redis"

	// StoreMemory uses the in-process store.
	StoreMemory StoreBackend = "memory"
)

// StoreConfig selects and configures the counting store.
type StoreConfig struct {
	// Backend is "redis" or "memory".
	// Default: "memory"
	Backend StoreBackend `yaml:"backend"`

	// Redis configures the Redis connection when Backend is "redis".
	Redis ratelimit.RedisConfig `yaml:"redis"`

	// SweepInterval is the cron schedule for the in-memory store's
	// janitor sweep. Ignored for Redis, which expires keys itself.
	// Default: "@every 1m"
	SweepInterval string `yaml:"sweep_interval"`
}

// ProviderConfig contains connection settings for one LLM provider.
type ProviderConfig struct {
	// Type is "openai" or "anthropic".
	Type string `yaml:"type"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model is the model requested for reviews.
	Model string `yaml:"model"`

	// Timeout bounds each provider call.
	// Default: 120s
	Timeout time.Duration `yaml:"timeout"`

	// APIKey is populated from the environment (OPENAI_API_KEY or
	// ANTHROPIC_API_KEY depending on Type). Never set it in YAML.
	APIKey string `yaml:"-"`

	// Default marks the provider used when a request names none.
	Default bool `yaml:"default"`
}

// AuditBackend selects an audit store implementation.
type AuditBackend string

const (
	// AuditSQLite persists records to a SQLite database.
	AuditSQLite AuditBackend = "sqlite"

	// AuditMemory keeps records in process memory.
	AuditMemory AuditBackend = "memory"
)

// AuditConfig contains audit trail configuration.
type AuditConfig struct {
	// Backend is "sqlite" or "memory".
	// Default: "memory"
	Backend AuditBackend `yaml:"backend"`

	// Path is the SQLite database file path.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// Retention is how long records are kept.
	// Default: 2160h (90 days)
	Retention time.Duration `yaml:"retention"`

	// SweepSchedule is the cron schedule for the retention sweep.
	// Default: "@daily"
	SweepSchedule string `yaml:"sweep_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// LogLevel is the minimum log level ("debug", "info", "warn",
	// "error").
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is "json" or "text".
	// Default: "json"
	LogFormat string `yaml:"log_format"`

	// MetricsEnabled controls whether /metrics is served.
	// Default: true
	MetricsEnabled bool `yaml:"metrics_enabled"`
}
