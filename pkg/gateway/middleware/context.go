package middleware

import (
	"context"
	"time"

	"gatehouse-hq/janus/pkg/rbac"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// requestIDKey stores the unique request ID.
	requestIDKey contextKey = "request_id"

	// startTimeKey stores the request start time for latency
	// calculation.
	startTimeKey contextKey = "start_time"

	// identityKey stores the verified token payload.
	identityKey contextKey = "identity"
)

// GetRequestID extracts the request ID from the context. Returns empty
// string if not set.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetStartTime extracts the request start time from the context.
// Returns zero time if not set.
func GetStartTime(ctx context.Context) time.Time {
	if t, ok := ctx.Value(startTimeKey).(time.Time); ok {
		return t
	}
	return time.Time{}
}

// GetIdentity extracts the verified token payload from the context.
// Returns nil for requests that did not pass the auth middleware.
func GetIdentity(ctx context.Context) *rbac.TokenPayload {
	if p, ok := ctx.Value(identityKey).(*rbac.TokenPayload); ok {
		return p
	}
	return nil
}
