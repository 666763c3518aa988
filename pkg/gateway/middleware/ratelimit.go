package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"gatehouse-hq/janus/pkg/audit"
	"gatehouse-hq/janus/pkg/ratelimit"
	"gatehouse-hq/janus/pkg/telemetry/logging"
)

// APIKeyHeader carries an integration API key, rate limited on its
// own scope.
const APIKeyHeader = "X-API-Key"

// RateLimit enforces the per-IP limit on every request, the per-user
// limit on authenticated requests, and the per-key limit on requests
// carrying an API key. Denied requests get a 429
// with Retry-After and X-RateLimit-* headers. When the counting store
// is unreachable the request is admitted and the fail-open is audited.
func RateLimit(limiter *ratelimit.Limiter, recorder *audit.Recorder, logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			identity := GetIdentity(r.Context())

			decision := limiter.CheckIP(r.Context(), ip)
			scope := "ip"
			userID := ""

			if decision.Allowed && identity != nil {
				decision = limiter.CheckUser(r.Context(), identity.UserID)
				scope = "user"
				userID = identity.UserID
			}

			// Integration callers identify with an API key on top of
			// their token; the key gets its own, larger window.
			if apiKey := r.Header.Get(APIKeyHeader); apiKey != "" && decision.Allowed {
				decision = limiter.CheckAPIKey(r.Context(), apiKey)
				scope = "api_key"
			}

			setLimitHeaders(w, decision)

			if decision.FailedOpen {
				recorder.Record(r.Context(), &audit.Record{
					RequestID: GetRequestID(r.Context()),
					UserID:    userID,
					Action:    audit.ActionRateLimitFailOpen,
					Resource:  scope,
					Result:    audit.ResultSuccess,
				})
			}

			if !decision.Allowed {
				recorder.Record(r.Context(), &audit.Record{
					RequestID: GetRequestID(r.Context()),
					UserID:    userID,
					Action:    audit.ActionRateLimited,
					Resource:  scope,
					Result:    audit.ResultDenied,
					Detail:    map[string]any{"limit": decision.Limit},
				})
				logger.Warn("rate limit exceeded",
					"request_id", GetRequestID(r.Context()),
					"scope", scope,
					"limit", decision.Limit,
				)
				w.Header().Set("Retry-After", strconv.Itoa(int(decision.Window.Seconds())))
				WriteError(w, r, http.StatusTooManyRequests,
					"rate_limit_error", "rate limit exceeded, slow down")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setLimitHeaders exposes the limiter decision to the client.
func setLimitHeaders(w http.ResponseWriter, d ratelimit.Decision) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	if !d.ResetAt.IsZero() {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
	}
}

// clientIP returns the requester's IP, preferring the first hop of
// X-Forwarded-For when present.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
