// Package gateway provides the HTTP surface of the review service.
//
// # Overview
//
// The gateway wires the protection layers in front of the review
// providers: every request passes the middleware chain (request ID,
// recovery, logging, authentication, rate limiting) and review calls
// run through the per-provider circuit breaker. Gate decisions map to
// HTTP statuses:
//
//	401 - missing, invalid, or expired token
//	403 - valid token without the required permission
//	429 - rate limit exceeded (with Retry-After)
//	503 - circuit breaker open (with Retry-After)
//	502 - provider call failed
//
// # Endpoints
//
//	POST /v1/review    - run a code review through the default or named provider
//	GET  /v1/breakers  - breaker status snapshots (view_analytics)
//	GET  /v1/audit     - audit trail query (view_analytics)
//	GET  /healthz      - liveness
//	GET  /metrics      - Prometheus metrics (when enabled)
package gateway
