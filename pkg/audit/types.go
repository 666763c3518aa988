package audit

import (
	"context"
	"time"
)

// Action names the gate decision being recorded.
type Action string

const (
	// ActionTokenVerified records a successful token verification.
	ActionTokenVerified Action = "auth.token_verified"

	// ActionTokenRejected records an invalid or expired token.
	ActionTokenRejected Action = "auth.token_rejected"

	// ActionPermissionDenied records a missing-permission rejection.
	ActionPermissionDenied Action = "auth.permission_denied"

	// ActionRateLimited records a denied rate limit check.
	ActionRateLimited Action = "ratelimit.denied"

	// ActionRateLimitFailOpen records a fail-open admission.
	ActionRateLimitFailOpen Action = "ratelimit.fail_open"

	// ActionBreakerRejected records an open-circuit rejection.
	ActionBreakerRejected Action = "breaker.rejected"

	// ActionReviewRequested records an admitted review request.
	ActionReviewRequested Action = "review.requested"
)

// Result is the outcome attached to a record.
type Result string

const (
	ResultSuccess Result = "success"
	ResultDenied  Result = "denied"
	ResultFailure Result = "failure"
)

// Record is one audit trail entry.
type Record struct {
	// ID uniquely identifies the record.
	ID string `json:"id"`

	// Timestamp is when the decision was made.
	Timestamp time.Time `json:"timestamp"`

	// RequestID correlates the record with gateway logs.
	RequestID string `json:"request_id,omitempty"`

	// UserID is the acting user, when known. Anonymous gate decisions
	// (e.g. IP rate limiting before authentication) leave it empty.
	UserID string `json:"user_id,omitempty"`

	// Action names the decision.
	Action Action `json:"action"`

	// Resource is what the decision applied to (endpoint, breaker
	// name, limit scope).
	Resource string `json:"resource,omitempty"`

	// Result is the outcome.
	Result Result `json:"result"`

	// Detail carries decision-specific context. Values must be
	// JSON-serializable.
	Detail map[string]any `json:"detail,omitempty"`
}

// QueryFilter selects records from a store. Zero fields match
// everything.
type QueryFilter struct {
	// UserID restricts to one user.
	UserID string

	// Action restricts to one action.
	Action Action

	// Since excludes records before this time.
	Since time.Time

	// Until excludes records after this time.
	Until time.Time

	// Limit caps the number of returned records. Zero means the
	// store's default cap.
	Limit int
}

// Store persists audit records. Implementations must be safe for
// concurrent use.
type Store interface {
	// Append persists one record.
	Append(ctx context.Context, record *Record) error

	// Query returns records matching the filter, newest first.
	Query(ctx context.Context, filter QueryFilter) ([]*Record, error)

	// Purge deletes records older than the cutoff and returns how many
	// were removed. Called by the scheduled retention sweep.
	Purge(ctx context.Context, olderThan time.Time) (int, error)

	// Close releases resources held by the store.
	Close() error
}
