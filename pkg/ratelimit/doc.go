// Package ratelimit implements sliding-window log rate limiting over a
// shared counting store.
//
// # Overview
//
// The limiter enforces a maximum number of admitted requests per
// identifier within a trailing time window. Each admitted request is
// recorded as a timestamped entry; on every check, entries older than
// the window are pruned, the survivors are counted, and the request is
// admitted only when the count is below the limit. Because individual
// timestamps are stored (a sliding-window log), the limiter does not
// suffer the reset-spike problem of fixed windows.
//
// # Architecture
//
//   - Limiter: decision logic and scope wrappers (user, IP, API key)
//   - Store: the counting backend interface; its Slide operation is a
//     single atomic compound (prune, count, conditional append)
//   - RedisStore: shared cross-process backend using a ZSET per key and
//     a Lua script for atomicity
//   - MemoryStore: in-process backend for tests and single-instance
//     deployments, with a janitor sweep for expired keys
//
// # Failure Policy
//
// When the store is unreachable the limiter fails open: the request is
// admitted with Decision.FailedOpen set, and the outage is logged and
// counted. Blocking all traffic on infrastructure failure is judged
// worse than briefly losing enforcement; operators can alert on the
// fail-open metric.
//
// # Thread Safety
//
// All operations are safe for concurrent use. Per-key atomicity of the
// prune/count/append compound is delegated to the Store, which makes
// the limit correct across processes when backed by Redis.
package ratelimit
