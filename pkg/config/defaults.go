package config

import (
	"time"

	"gatehouse-hq/janus/pkg/audit"
)

// Default returns a Config populated with defaults. Load starts from
// this and overlays the file and environment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress:   "127.0.0.1:8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			Issuer:   "janus",
			TokenTTL: 24 * time.Hour,
		},
		RateLimitStore: StoreConfig{
			Backend:       StoreMemory,
			SweepInterval: "@every 1m",
		},
		Audit: AuditConfig{
			Backend:       AuditMemory,
			Path:          "data/audit.db",
			Retention:     audit.DefaultRetention,
			SweepSchedule: "@daily",
		},
		Telemetry: TelemetryConfig{
			LogLevel:       "info",
			LogFormat:      "json",
			MetricsEnabled: true,
		},
	}
}

// applyDefaults fills zero fields after file loading.
func (c *Config) applyDefaults() {
	d := Default()

	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = d.Server.ListenAddress
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = d.Server.ReadTimeout
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = d.Server.WriteTimeout
	}
	if c.Server.IdleTimeout <= 0 {
		c.Server.IdleTimeout = d.Server.IdleTimeout
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}

	if c.Auth.Issuer == "" {
		c.Auth.Issuer = d.Auth.Issuer
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = d.Auth.TokenTTL
	}

	if c.RateLimitStore.Backend == "" {
		c.RateLimitStore.Backend = d.RateLimitStore.Backend
	}
	if c.RateLimitStore.SweepInterval == "" {
		c.RateLimitStore.SweepInterval = d.RateLimitStore.SweepInterval
	}

	if c.Audit.Backend == "" {
		c.Audit.Backend = d.Audit.Backend
	}
	if c.Audit.Path == "" {
		c.Audit.Path = d.Audit.Path
	}
	if c.Audit.Retention <= 0 {
		c.Audit.Retention = d.Audit.Retention
	}
	if c.Audit.SweepSchedule == "" {
		c.Audit.SweepSchedule = d.Audit.SweepSchedule
	}

	if c.Telemetry.LogLevel == "" {
		c.Telemetry.LogLevel = d.Telemetry.LogLevel
	}
	if c.Telemetry.LogFormat == "" {
		c.Telemetry.LogFormat = d.Telemetry.LogFormat
	}

	for name, p := range c.Providers {
		if p.Timeout <= 0 {
			p.Timeout = 120 * time.Second
		}
		c.Providers[name] = p
	}
}
