package breaker

import (
	"sync"
	"time"

	"gatehouse-hq/janus/pkg/telemetry/logging"
)

// State is a circuit breaker state.
type State string

const (
	// StateClosed is normal operation: calls pass through.
	StateClosed State = "closed"

	// StateOpen rejects calls until the cooldown elapses.
	StateOpen State = "open"

	// StateHalfOpen admits probe calls to test recovery.
	StateHalfOpen State = "half_open"
)

// Config contains breaker thresholds. Zero fields use the defaults.
type Config struct {
	// FailureThreshold is the consecutive failure count that opens the
	// breaker from CLOSED. Default: 5.
	FailureThreshold int `yaml:"failure_threshold"`

	// OpenTimeout is the cooldown before an open breaker admits a
	// probe. Default: 60s.
	OpenTimeout time.Duration `yaml:"open_timeout"`

	// HalfOpenAttempts is the number of consecutive probe successes
	// required to close the breaker. Default: 3.
	HalfOpenAttempts int `yaml:"half_open_attempts"`
}

// Status is a read-only snapshot of a breaker's state.
type Status struct {
	// Name identifies the breaker.
	Name string `json:"name"`

	// State is the current state.
	State State `json:"state"`

	// FailureCount is the current consecutive failure count.
	FailureCount int `json:"failure_count"`

	// LastFailure is when the most recent failure was recorded; zero
	// when no failure has occurred since the last reset.
	LastFailure time.Time `json:"last_failure,omitzero"`

	// TimeUntilRetry is how long until an open breaker admits a probe.
	// Zero unless the state is open.
	TimeUntilRetry time.Duration `json:"time_until_retry"`
}

// Breaker protects one external dependency. Create one per dependency
// and share it across callers; see New.
type Breaker struct {
	name   string
	cfg    Config
	logger *logging.Logger
	metrics *Metrics

	mu               sync.Mutex
	state            State
	failureCount     int
	lastFailureTime  time.Time
	halfOpenSuccess  int
}

// New creates a Breaker named after its protected dependency. The name
// appears only in logs, metrics, and Status; it has no wire format.
func New(name string, cfg Config, logger *logging.Logger, metrics *Metrics) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 60 * time.Second
	}
	if cfg.HalfOpenAttempts <= 0 {
		cfg.HalfOpenAttempts = 3
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Breaker{
		name:    name,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		state:   StateClosed,
	}
}

// Do executes fn under the breaker's protection.
//
// When the breaker is open and still cooling down, Do returns an
// *OpenError immediately without invoking fn. Otherwise fn runs and its
// result is recorded: nil counts as a success, anything else as a
// failure. fn's error is always returned unchanged; the breaker never
// substitutes its own error for a failure that actually ran.
func (b *Breaker) Do(fn func() error) error {
	if err := b.beforeCall(); err != nil {
		return err
	}

	err := fn()
	if err != nil {
		b.onFailure()
		return err
	}

	b.onSuccess()
	return nil
}

// Status returns a snapshot of the breaker. No side effects: a breaker
// that is due to transition to half-open still reports open until the
// next Do.
func (b *Breaker) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	status := Status{
		Name:         b.name,
		State:        b.state,
		FailureCount: b.failureCount,
		LastFailure:  b.lastFailureTime,
	}
	if b.state == StateOpen {
		status.TimeUntilRetry = b.timeUntilRetryLocked()
	}
	return status
}

// Name returns the breaker's name.
func (b *Breaker) Name() string {
	return b.name
}

// beforeCall decides whether the call may proceed, performing the lazy
// OPEN to HALF_OPEN transition when the cooldown has elapsed.
func (b *Breaker) beforeCall() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateOpen {
		return nil
	}

	if b.shouldAttemptResetLocked() {
		b.transitionLocked(StateHalfOpen)
		b.halfOpenSuccess = 0
		b.logger.Info("circuit breaker entering half-open state", "breaker", b.name)
		return nil
	}

	retryAfter := b.timeUntilRetryLocked()
	b.metrics.observeRejection(b.name)
	return &OpenError{Name: b.name, RetryAfter: retryAfter}
}

// onSuccess records a successful call.
func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.metrics.observeCall(b.name, true)

	switch b.state {
	case StateHalfOpen:
		b.halfOpenSuccess++
		if b.halfOpenSuccess >= b.cfg.HalfOpenAttempts {
			b.resetLocked()
			b.logger.Info("circuit breaker closed after recovery", "breaker", b.name)
		}
	case StateClosed:
		b.failureCount = 0
	}
}

// onFailure records a failed call.
func (b *Breaker) onFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.metrics.observeCall(b.name, false)

	b.failureCount++
	b.lastFailureTime = time.Now()

	switch {
	case b.state == StateHalfOpen:
		b.tripLocked()
		b.logger.Warn("circuit breaker opened, recovery probe failed", "breaker", b.name)
	case b.failureCount >= b.cfg.FailureThreshold:
		b.tripLocked()
		b.logger.Warn("circuit breaker opened",
			"breaker", b.name,
			"failures", b.failureCount,
		)
	}
}

// shouldAttemptResetLocked reports whether the cooldown has elapsed.
func (b *Breaker) shouldAttemptResetLocked() bool {
	if b.lastFailureTime.IsZero() {
		return true
	}
	return time.Since(b.lastFailureTime) >= b.cfg.OpenTimeout
}

// timeUntilRetryLocked computes the remaining cooldown.
func (b *Breaker) timeUntilRetryLocked() time.Duration {
	if b.lastFailureTime.IsZero() {
		return 0
	}
	remaining := b.cfg.OpenTimeout - time.Since(b.lastFailureTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// tripLocked opens the circuit.
func (b *Breaker) tripLocked() {
	b.transitionLocked(StateOpen)
	b.halfOpenSuccess = 0
}

// resetLocked closes the circuit and clears all counters.
func (b *Breaker) resetLocked() {
	b.transitionLocked(StateClosed)
	b.failureCount = 0
	b.halfOpenSuccess = 0
	b.lastFailureTime = time.Time{}
}

// transitionLocked changes state and records the transition metric.
func (b *Breaker) transitionLocked(to State) {
	if b.state == to {
		return
	}
	b.metrics.observeTransition(b.name, b.state, to)
	b.state = to
}
