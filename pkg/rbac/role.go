package rbac

import "fmt"

// Role is a closed set of identity roles.
type Role string

const (
	// RoleAdmin has every permission.
	RoleAdmin Role = "admin"

	// RoleDeveloper can view reports, approve reviews, and view analytics.
	RoleDeveloper Role = "developer"

	// RoleReviewer can view reports and approve reviews.
	RoleReviewer Role = "reviewer"

	// RoleViewer can only view reports.
	RoleViewer Role = "viewer"
)

// Permission is a closed set of grantable permissions.
type Permission string

const (
	PermissionConfigureBot   Permission = "configure_bot"
	PermissionViewReports    Permission = "view_reports"
	PermissionApproveReviews Permission = "approve_reviews"
	PermissionManageRules    Permission = "manage_rules"
	PermissionViewAnalytics  Permission = "view_analytics"
)

// allRoles enumerates every role; rolePermissions must cover all of them.
var allRoles = []Role{RoleAdmin, RoleDeveloper, RoleReviewer, RoleViewer}

// rolePermissions is the static role-to-permission table. Read-only
// after initialization; exhaustiveness is checked by NewManager.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionConfigureBot,
		PermissionViewReports,
		PermissionApproveReviews,
		PermissionManageRules,
		PermissionViewAnalytics,
	},
	RoleDeveloper: {
		PermissionViewReports,
		PermissionApproveReviews,
		PermissionViewAnalytics,
	},
	RoleReviewer: {
		PermissionViewReports,
		PermissionApproveReviews,
	},
	RoleViewer: {
		PermissionViewReports,
	},
}

// ParseRole converts a string to a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleDeveloper, RoleReviewer, RoleViewer:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// ParsePermission converts a string to a Permission.
func ParsePermission(s string) (Permission, error) {
	switch Permission(s) {
	case PermissionConfigureBot, PermissionViewReports, PermissionApproveReviews,
		PermissionManageRules, PermissionViewAnalytics:
		return Permission(s), nil
	default:
		return "", fmt.Errorf("unknown permission %q", s)
	}
}

// PermissionsForRole returns a copy of the role's permission set.
func PermissionsForRole(role Role) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// validateRoleTable checks that every role has a table entry.
func validateRoleTable() error {
	for _, role := range allRoles {
		perms, ok := rolePermissions[role]
		if !ok || len(perms) == 0 {
			return fmt.Errorf("role %q has no permission set defined", role)
		}
	}
	return nil
}
