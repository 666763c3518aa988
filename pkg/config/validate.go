package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"

	"gatehouse-hq/janus/pkg/rbac"
)

// Validate checks the configuration for values that would fail at
// startup. It is called by Load after defaults and environment
// overlays are applied.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.ListenAddress); err != nil {
		return fmt.Errorf("invalid server.listen_address %q: %w", c.Server.ListenAddress, err)
	}

	if c.Auth.SigningSecret == "" {
		return fmt.Errorf("signing secret is not set: export %s", EnvSigningSecret)
	}
	if len(c.Auth.SigningSecret) < rbac.MinSecretLength {
		return fmt.Errorf("signing secret must be at least %d characters", rbac.MinSecretLength)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}

	switch c.RateLimitStore.Backend {
	case StoreMemory:
	case StoreRedis:
		if c.RateLimitStore.Redis.Addr == "" {
			return fmt.Errorf("rate_limit_store.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown rate_limit_store.backend %q (want memory or redis)", c.RateLimitStore.Backend)
	}
	if c.RateLimitStore.SweepInterval != "" {
		if _, err := cron.ParseStandard(c.RateLimitStore.SweepInterval); err != nil {
			return fmt.Errorf("invalid rate_limit_store.sweep_interval %q: %w", c.RateLimitStore.SweepInterval, err)
		}
	}

	switch c.Audit.Backend {
	case AuditMemory:
	case AuditSQLite:
		if c.Audit.Path == "" {
			return fmt.Errorf("audit.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown audit.backend %q (want memory or sqlite)", c.Audit.Backend)
	}
	if c.Audit.Retention <= 0 {
		return fmt.Errorf("audit.retention must be positive, got %s", c.Audit.Retention)
	}
	if c.Audit.SweepSchedule != "" {
		if _, err := cron.ParseStandard(c.Audit.SweepSchedule); err != nil {
			return fmt.Errorf("invalid audit.sweep_schedule %q: %w", c.Audit.SweepSchedule, err)
		}
	}

	for name, b := range c.Breakers {
		if b.FailureThreshold < 0 {
			return fmt.Errorf("breaker %q: failure_threshold must not be negative", name)
		}
		if b.OpenTimeout < 0 {
			return fmt.Errorf("breaker %q: open_timeout must not be negative", name)
		}
		if b.HalfOpenAttempts < 0 {
			return fmt.Errorf("breaker %q: half_open_attempts must not be negative", name)
		}
	}

	defaults := 0
	for name, p := range c.Providers {
		switch strings.ToLower(p.Type) {
		case "openai", "anthropic":
		default:
			return fmt.Errorf("provider %q: unknown type %q (want openai or anthropic)", name, p.Type)
		}
		if p.Default {
			defaults++
		}
	}
	if defaults > 1 {
		return fmt.Errorf("at most one provider may be marked default, got %d", defaults)
	}

	switch strings.ToLower(c.Telemetry.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown telemetry.log_level %q", c.Telemetry.LogLevel)
	}
	switch strings.ToLower(c.Telemetry.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown telemetry.log_format %q", c.Telemetry.LogFormat)
	}

	return nil
}
