package rbac

import "context"

// GuardedFunc is an operation wrapped with a permission check. The
// token is the caller's bearer token.
type GuardedFunc func(ctx context.Context, token string) error

// Guard wraps op so that it runs only when the caller's token carries
// perm. When the check fails the returned function reports a
// *PermissionDeniedError naming the required permission, and op is
// never invoked.
//
// Used to protect administrative operations:
//
//	reload := manager.Guard(rbac.PermissionManageRules, func(ctx context.Context) error {
//	    return rules.Reload(ctx)
//	})
//	if err := reload(ctx, bearerToken); err != nil {
//	    // 403 with the permission name in the detail
//	}
func (m *Manager) Guard(perm Permission, op func(ctx context.Context) error) GuardedFunc {
	return func(ctx context.Context, token string) error {
		if !m.HasPermission(token, perm) {
			return &PermissionDeniedError{Permission: perm}
		}
		return op(ctx)
	}
}
