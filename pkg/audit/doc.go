// Package audit records gate decisions for compliance review.
//
// # Overview
//
// Every decision the gateway makes about a request — token verified or
// rejected, permission denied, rate limit exceeded, breaker rejection —
// can be appended to an audit trail with the acting user, the request
// ID, and a result. Records are queryable by user, action, and time
// range, and are purged past a configurable retention horizon by a
// scheduled sweep.
//
// # Backends
//
//   - SQLiteStore: durable storage with WAL and prepared statements,
//     for single-instance deployments
//   - MemoryStore: bounded in-process ring, for tests
//
// # Thread Safety
//
// All stores are safe for concurrent use.
package audit
