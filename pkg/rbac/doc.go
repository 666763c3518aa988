// Package rbac issues signed, expiring identity tokens and answers
// authorization questions against a static role-to-permission mapping.
//
// # Overview
//
// Tokens are HS256 JWTs carrying the user ID, role, and the full
// permission set for that role, denormalized at issuance so that
// verification needs no lookup. Verification is stateless: any process
// holding the signing secret can verify a token, which means a changed
// role takes effect only when the old token expires.
//
// # Roles
//
//	admin:     configure_bot, view_reports, approve_reviews, manage_rules, view_analytics
//	developer: view_reports, approve_reviews, view_analytics
//	reviewer:  view_reports, approve_reviews
//	viewer:    view_reports
//
// The table is exhaustive: Manager construction fails if any role lacks
// an entry, so adding a role without defining its permissions is a
// startup failure rather than a silent runtime gap.
//
// # Errors
//
// VerifyToken distinguishes ErrTokenExpired from ErrTokenInvalid so
// callers can prompt re-authentication for the former and reject the
// latter outright. HasPermission deliberately collapses both to false;
// that call site only needs a boolean.
//
// # Thread Safety
//
// Manager is stateless per call: any number of goroutines may create
// and verify tokens concurrently.
package rbac
