// Package middleware contains the HTTP middleware chain for the
// gateway: request ID propagation, panic recovery, request logging,
// token authentication, and rate limiting.
//
// # Chain order
//
// Middlewares compose outermost first:
//
//	recovery → request ID → logging → auth → rate limit → handler
//
// Recovery sits outermost so a panic anywhere below still produces a
// well-formed 500. Authentication runs before rate limiting so the
// per-user limit can key on the verified user ID; the per-IP limit
// needs no identity and guards unauthenticated traffic too.
package middleware
