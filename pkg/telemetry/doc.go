// Package telemetry groups the observability concerns of Janus.
//
// # Components
//
//   - logging: structured slog-based logging with credential redaction
//
// Prometheus metrics live next to the components they measure (see
// pkg/ratelimit and pkg/breaker) and are served by the gateway's
// /metrics endpoint.
package telemetry
