package main

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"gatehouse-hq/janus/pkg/audit"
	"gatehouse-hq/janus/pkg/breaker"
	"gatehouse-hq/janus/pkg/config"
	"gatehouse-hq/janus/pkg/gateway"
	"gatehouse-hq/janus/pkg/providers"
	"gatehouse-hq/janus/pkg/ratelimit"
	"gatehouse-hq/janus/pkg/rbac"
	"gatehouse-hq/janus/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Janus gateway",
	Long: `Start the Janus gateway with the specified configuration.

The gateway listens on the configured address and runs every request
through rate limiting, authentication, and the per-provider circuit
breakers before forwarding to the review providers.

Examples:
  # Start with default config
  janus run

  # Start with custom config
  janus run --config /etc/janus/config.yaml

  # Override listen address
  janus run --listen 0.0.0.0:8080

  # Validate config without starting the gateway
  janus run --dry-run`,
	RunE: runGateway,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the gateway")
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.LogLevel = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.LogLevel = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Telemetry.LogLevel,
		Format: cfg.Telemetry.LogFormat,
		Redact: true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Scheduled maintenance (audit retention, memory store janitor)
	// runs on one cron instance.
	scheduler := cron.New()

	// Rate limit counting store.
	var store ratelimit.Store
	switch cfg.RateLimitStore.Backend {
	case config.StoreRedis:
		redisStore, err := ratelimit.NewRedisStore(cfg.RateLimitStore.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		store = redisStore
		logger.Info("rate limit store ready", "backend", "redis", "addr", cfg.RateLimitStore.Redis.Addr)
	case config.StoreMemory:
		memStore := ratelimit.NewMemoryStore()
		store = memStore
		if cfg.RateLimitStore.SweepInterval != "" {
			if _, err := scheduler.AddFunc(cfg.RateLimitStore.SweepInterval, func() {
				if removed := memStore.Sweep(time.Now()); removed > 0 {
					logger.Debug("rate limit janitor sweep", "removed", removed)
				}
			}); err != nil {
				return fmt.Errorf("failed to schedule janitor sweep: %w", err)
			}
		}
		logger.Info("rate limit store ready", "backend", "memory")
	}
	defer store.Close()

	limiter := ratelimit.NewLimiter(store, cfg.RateLimits, logger, ratelimit.NewMetrics())

	// Token manager.
	manager, err := rbac.NewManager(cfg.Auth.SigningSecret, rbac.ManagerConfig{
		Issuer:   cfg.Auth.Issuer,
		TokenTTL: cfg.Auth.TokenTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	// Audit trail.
	var auditStore audit.Store
	switch cfg.Audit.Backend {
	case config.AuditSQLite:
		auditStore, err = audit.NewSQLiteStore(audit.SQLiteConfig{Path: cfg.Audit.Path})
		if err != nil {
			return fmt.Errorf("failed to open audit database: %w", err)
		}
		logger.Info("audit store ready", "backend", "sqlite", "path", cfg.Audit.Path)
	case config.AuditMemory:
		auditStore = audit.NewMemoryStore(0)
		logger.Info("audit store ready", "backend", "memory")
	}
	defer auditStore.Close()

	recorder := audit.NewRecorder(auditStore, cfg.Audit.Retention, logger)
	if cfg.Audit.SweepSchedule != "" {
		if _, err := scheduler.AddFunc(cfg.Audit.SweepSchedule, func() {
			recorder.Sweep(context.Background())
		}); err != nil {
			return fmt.Errorf("failed to schedule audit sweep: %w", err)
		}
	}

	// Providers, each behind its own breaker.
	breakerMetrics := breaker.NewMetrics()
	providerMap := make(map[string]providers.Provider, len(cfg.Providers))
	breakerMap := make(map[string]*breaker.Breaker, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		p, err := providers.New(name, pc)
		if err != nil {
			return fmt.Errorf("failed to initialize provider: %w", err)
		}
		defer p.Close()
		providerMap[name] = p
		breakerMap[name] = breaker.New(name, cfg.Breakers[name], logger, breakerMetrics)
		logger.Info("provider ready", "provider", name, "type", p.Type(), "model", pc.Model)
	}
	if len(providerMap) == 0 {
		logger.Warn("no providers configured, /v1/review will reject all requests")
	}

	scheduler.Start()
	defer scheduler.Stop()

	// Hot reload applies rate limit changes without a restart. Other
	// sections still require one.
	watcher := config.NewWatcher(cfgFile, logger)
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	go func() {
		err := watcher.Watch(watchCtx, func(newCfg *config.Config) {
			limiter.SetConfig(newCfg.RateLimits)
			logger.Info("rate limits reloaded")
		})
		if err != nil {
			logger.Warn("config watcher stopped", "error", err.Error())
		}
	}()

	server, err := gateway.NewServer(gateway.Options{
		Config:          cfg,
		Logger:          logger,
		Limiter:         limiter,
		Auth:            manager,
		Recorder:        recorder,
		Breakers:        breakerMap,
		Providers:       providerMap,
		DefaultProvider: cfg.DefaultProvider(),
	})
	if err != nil {
		return err
	}

	return server.Start(ctx)
}
