package rbac

import (
	"errors"
	"fmt"
)

// Sentinel errors for token verification and manager construction.
var (
	// ErrTokenInvalid means the token is malformed, tampered with, or
	// signed with the wrong key or algorithm.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired means the token was valid but its expiry has
	// passed. Distinct from ErrTokenInvalid so callers can prompt
	// re-authentication instead of rejecting outright.
	ErrTokenExpired = errors.New("token expired")

	// ErrWeakSecret means the signing secret is missing, a known
	// placeholder, or shorter than MinSecretLength. Fatal at manager
	// construction; never silently defaulted.
	ErrWeakSecret = errors.New("signing secret missing or too weak")

	// ErrPermissionDenied is the sentinel matched by errors.Is when an
	// operation is rejected for a missing permission.
	ErrPermissionDenied = errors.New("permission denied")
)

// PermissionDeniedError reports which permission a guarded operation
// required. It is returned before the operation executes.
type PermissionDeniedError struct {
	// Permission is the permission the caller's token lacked.
	Permission Permission
}

// Error implements the error interface.
func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission %s required", e.Permission)
}

// Unwrap lets errors.Is(err, ErrPermissionDenied) match.
func (e *PermissionDeniedError) Unwrap() error {
	return ErrPermissionDenied
}
