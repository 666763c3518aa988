// Package breaker implements the circuit breaker pattern for calls to
// flaky external dependencies such as LLM providers.
//
// # Overview
//
// A Breaker tracks consecutive failures of a protected operation. Once
// failures reach a threshold the breaker opens and rejects calls
// immediately, sparing the dependency and the caller's latency budget.
// After a cooldown it transitions to half-open and lets probe calls
// through; enough consecutive successes close it again, while a single
// probe failure reopens it.
//
// # State Machine
//
//	CLOSED    --failures >= threshold-->    OPEN
//	OPEN      --cooldown elapsed------->    HALF_OPEN  (evaluated lazily at call time)
//	HALF_OPEN --successes >= attempts-->    CLOSED
//	HALF_OPEN --any failure----------->     OPEN
//
// There are no timers or background goroutines: the OPEN to HALF_OPEN
// transition is re-evaluated on every call using wall-clock elapsed
// time, so the mechanism is purely reactive.
//
// # Usage
//
//	br := breaker.New("anthropic", breaker.Config{}, logger, metrics)
//
//	err := br.Do(func() error {
//	    return provider.SendCompletion(ctx, req)
//	})
//	if errors.Is(err, breaker.ErrOpen) {
//	    // dependency is known-bad, do not retry immediately
//	}
//
// The breaker never swallows the operation's own error; it only decides
// whether to attempt the call at all.
//
// # Thread Safety
//
// A Breaker may be shared across goroutines. State transitions are
// guarded by a single mutex per instance; the protected operation runs
// outside the lock. Breakers for different dependencies are fully
// independent.
package breaker
