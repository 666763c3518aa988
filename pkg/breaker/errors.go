package breaker

import (
	"errors"
	"fmt"
	"time"
)

// ErrOpen is the sentinel matched by errors.Is when a call is rejected
// because the breaker is open.
var ErrOpen = errors.New("circuit open")

// OpenError is returned by Do when the breaker rejects a call without
// invoking the protected operation.
type OpenError struct {
	// Name identifies the breaker (one per protected dependency).
	Name string

	// RetryAfter is how long until the breaker will next admit a probe.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *OpenError) Error() string {
	return fmt.Sprintf("circuit breaker %s is open, retry after %s", e.Name, e.RetryAfter.Round(time.Second))
}

// Unwrap lets errors.Is(err, ErrOpen) match.
func (e *OpenError) Unwrap() error {
	return ErrOpen
}
