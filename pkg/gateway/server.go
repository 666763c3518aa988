package gateway

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gatehouse-hq/janus/pkg/audit"
	"gatehouse-hq/janus/pkg/breaker"
	"gatehouse-hq/janus/pkg/config"
	"gatehouse-hq/janus/pkg/gateway/middleware"
	"gatehouse-hq/janus/pkg/providers"
	"gatehouse-hq/janus/pkg/ratelimit"
	"gatehouse-hq/janus/pkg/rbac"
	"gatehouse-hq/janus/pkg/telemetry/logging"
)

// Options collects the already-constructed components the server
// serves. All fields except Providers and Breakers are required.
type Options struct {
	Config   *config.Config
	Logger   *logging.Logger
	Limiter  *ratelimit.Limiter
	Auth     *rbac.Manager
	Recorder *audit.Recorder

	// Breakers maps provider names to their circuit breakers. Every
	// entry in Providers must have one.
	Breakers map[string]*breaker.Breaker

	// Providers maps provider names to their clients.
	Providers map[string]providers.Provider

	// DefaultProvider is used when a review request names none.
	DefaultProvider string
}

// Server is the gateway HTTP server.
type Server struct {
	opts       Options
	logger     *logging.Logger
	httpServer *http.Server

	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	running      bool
}

// NewServer creates a gateway server from its options.
func NewServer(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Logger == nil || opts.Limiter == nil ||
		opts.Auth == nil || opts.Recorder == nil {
		return nil, fmt.Errorf("gateway: missing required option")
	}
	for name := range opts.Providers {
		if _, ok := opts.Breakers[name]; !ok {
			return nil, fmt.Errorf("gateway: provider %s has no circuit breaker", name)
		}
	}
	return &Server{
		opts:         opts,
		logger:       opts.Logger,
		shutdownChan: make(chan struct{}),
	}, nil
}

// Start starts the HTTP server and blocks until the context is
// cancelled, a shutdown signal arrives, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.running = true
	s.mu.Unlock()

	srvCfg := s.opts.Config.Server
	s.httpServer = &http.Server{
		Addr:         srvCfg.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  srvCfg.ReadTimeout,
		WriteTimeout: srvCfg.WriteTimeout,
		IdleTimeout:  srvCfg.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("gateway listening", "address", srvCfg.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully drains in-flight requests, bounded by the
// configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		timeout := s.opts.Config.Server.ShutdownTimeout
		s.logger.Info("initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.running = false
		s.mu.Unlock()

		s.logger.Info("gateway stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Handler returns the fully wired HTTP handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	authed := func(h http.Handler) http.Handler {
		h = middleware.RateLimit(s.opts.Limiter, s.opts.Recorder, s.logger)(h)
		return middleware.Auth(s.opts.Auth, s.opts.Recorder, s.logger)(h)
	}
	analytics := func(h http.Handler) http.Handler {
		return authed(middleware.RequirePermission(rbac.PermissionViewAnalytics, s.opts.Recorder)(h))
	}

	mux.Handle("POST /v1/review", authed(http.HandlerFunc(s.handleReview)))
	mux.Handle("GET /v1/breakers", analytics(http.HandlerFunc(s.handleBreakers)))
	mux.Handle("GET /v1/audit", analytics(http.HandlerFunc(s.handleAudit)))
	mux.Handle("GET /healthz", http.HandlerFunc(s.handleHealthz))

	if s.opts.Config.Telemetry.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.Logging(s.logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(s.logger)(handler)
	return handler
}
