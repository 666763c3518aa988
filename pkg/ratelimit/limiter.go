package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"gatehouse-hq/janus/pkg/telemetry/logging"
)

// Limiter decides whether requests are admitted under per-identifier
// sliding-window limits. The counting store is injected so multiple
// service processes can share limit state.
type Limiter struct {
	store   Store
	logger  *logging.Logger
	metrics *Metrics

	mu  sync.RWMutex
	cfg Config
}

// NewLimiter creates a Limiter over the given store.
//
// A nil metrics is allowed; decision metrics are then not recorded.
//
// Example:
//
//	store, err := ratelimit.NewRedisStore(cfg.Redis)
//	if err != nil {
//	    return err
//	}
//	limiter := ratelimit.NewLimiter(store, cfg.RateLimits, logger, metrics)
//
//	decision := limiter.CheckUser(ctx, userID)
//	if !decision.Allowed {
//	    // reject with Retry-After
//	}
func NewLimiter(store Store, cfg Config, logger *logging.Logger, metrics *Metrics) *Limiter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Limiter{
		store:   store,
		logger:  logger,
		metrics: metrics,
		cfg:     cfg.withDefaults(),
	}
}

// Check performs a sliding-window check for identifier under the given
// limit. On admission the current timestamp is recorded against the
// identifier's window; on denial nothing is recorded.
//
// The store key is "{keyPrefix}:{identifier}". If the store is
// unreachable the check fails open (see package documentation).
func (l *Limiter) Check(ctx context.Context, identifier string, maxRequests int, window time.Duration, keyPrefix string) Decision {
	return l.check(ctx, Scope(keyPrefix), identifier, maxRequests, window, keyPrefix)
}

// CheckUser checks the per-user limit for userID.
func (l *Limiter) CheckUser(ctx context.Context, userID string) Decision {
	limit := l.scopeLimit(ScopeUser)
	return l.check(ctx, ScopeUser, userID, limit.MaxRequests, limit.Window, userKeyPrefix)
}

// CheckIP checks the per-IP limit for ipAddress. The address is one-way
// hashed before use as a store key so raw IPs are never persisted.
func (l *Limiter) CheckIP(ctx context.Context, ipAddress string) Decision {
	limit := l.scopeLimit(ScopeIP)
	return l.check(ctx, ScopeIP, hashIdentifier(ipAddress), limit.MaxRequests, limit.Window, ipKeyPrefix)
}

// CheckAPIKey checks the per-API-key limit for apiKey. The key is
// hashed the same way as IPs before storage.
func (l *Limiter) CheckAPIKey(ctx context.Context, apiKey string) Decision {
	limit := l.scopeLimit(ScopeAPIKey)
	return l.check(ctx, ScopeAPIKey, hashIdentifier(apiKey), limit.MaxRequests, limit.Window, apiKeyKeyPrefix)
}

// SetConfig replaces the scope limits. Used by configuration hot reload;
// in-flight checks finish under the limits they started with.
func (l *Limiter) SetConfig(cfg Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg = cfg.withDefaults()
}

// scopeLimit returns the current limit for a built-in scope.
func (l *Limiter) scopeLimit(scope Scope) ScopeLimit {
	l.mu.RLock()
	defer l.mu.RUnlock()

	switch scope {
	case ScopeIP:
		return l.cfg.IP
	case ScopeAPIKey:
		return l.cfg.APIKey
	default:
		return l.cfg.User
	}
}

// check runs the sliding-window decision for one key.
func (l *Limiter) check(ctx context.Context, scope Scope, identifier string, maxRequests int, window time.Duration, keyPrefix string) Decision {
	start := time.Now()
	decision := l.decide(ctx, identifier, maxRequests, window, keyPrefix)
	l.metrics.observeCheck(scope, decision, time.Since(start))
	return decision
}

func (l *Limiter) decide(ctx context.Context, identifier string, maxRequests int, window time.Duration, keyPrefix string) Decision {
	now := time.Now()

	if identifier == "" || maxRequests <= 0 || window <= 0 {
		// Malformed check; never admit on bad parameters.
		return Decision{Limit: maxRequests, Window: window, ResetAt: now.Add(window)}
	}

	l.mu.RLock()
	storeTimeout := l.cfg.StoreTimeout
	l.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	key := keyPrefix + ":" + identifier

	count, oldest, err := l.store.Slide(ctx, key, now, window, maxRequests)
	if err != nil {
		// Fail open: infrastructure failure must not block all traffic.
		l.logger.Warn("rate limit store unavailable, failing open",
			"key_prefix", keyPrefix,
			"error", err.Error(),
		)
		return Decision{
			Allowed:    true,
			Limit:      maxRequests,
			Remaining:  maxRequests,
			ResetAt:    now,
			Window:     window,
			FailedOpen: true,
		}
	}

	if count < maxRequests {
		return Decision{
			Allowed:   true,
			Limit:     maxRequests,
			Remaining: maxRequests - count - 1,
			ResetAt:   now.Add(window),
			Window:    window,
		}
	}

	resetAt := now.Add(window)
	if !oldest.IsZero() {
		resetAt = oldest.Add(window)
	}

	return Decision{
		Allowed:   false,
		Limit:     maxRequests,
		Remaining: 0,
		ResetAt:   resetAt,
		Window:    window,
	}
}

// hashIdentifier returns the first 16 hex characters of the SHA-256 of
// raw. Deterministic, so repeated checks for the same input hit the
// same window key.
func hashIdentifier(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:16]
}
