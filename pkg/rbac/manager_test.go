package rbac

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef" // 32 chars

// ============================================================================
// Construction Tests
// ============================================================================

func TestNewManager_SecretValidation(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{"valid 32-char secret", testSecret, false},
		{"longer secret", testSecret + "extra-entropy", false},
		{"empty secret", "", true},
		{"short secret", "tooshort", true},
		{"31 chars", strings.Repeat("a", 31), true},
		{"placeholder padded to length", "please-change-this-secret-value!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewManager(tt.secret, ManagerConfig{})
			if tt.wantErr {
				if !errors.Is(err, ErrWeakSecret) {
					t.Errorf("Expected ErrWeakSecret, got %v", err)
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

// ============================================================================
// Token Round-Trip Tests
// ============================================================================

func TestManager_TokenRoundTrip(t *testing.T) {
	manager, err := NewManager(testSecret, ManagerConfig{})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	for _, role := range allRoles {
		t.Run(string(role), func(t *testing.T) {
			token, err := manager.CreateToken("user-7", role)
			if err != nil {
				t.Fatalf("CreateToken: %v", err)
			}

			payload, err := manager.VerifyToken(token)
			if err != nil {
				t.Fatalf("VerifyToken: %v", err)
			}

			if payload.UserID != "user-7" {
				t.Errorf("UserID = %q, want user-7", payload.UserID)
			}
			if payload.Role != role {
				t.Errorf("Role = %q, want %q", payload.Role, role)
			}

			want := PermissionsForRole(role)
			if len(payload.Permissions) != len(want) {
				t.Fatalf("Permissions = %v, want %v", payload.Permissions, want)
			}
			for i, perm := range want {
				if payload.Permissions[i] != perm {
					t.Errorf("Permissions[%d] = %q, want %q", i, payload.Permissions[i], perm)
				}
			}
		})
	}
}

func TestManager_TokenCarriesTimestamps(t *testing.T) {
	manager, _ := NewManager(testSecret, ManagerConfig{TokenTTL: time.Hour})

	before := time.Now()
	token, err := manager.CreateToken("user-7", RoleViewer)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	payload, err := manager.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}

	if payload.IssuedAt.Before(before.Add(-time.Second)) {
		t.Errorf("IssuedAt = %v, want >= %v", payload.IssuedAt, before)
	}
	wantExpiry := payload.IssuedAt.Add(time.Hour)
	if diff := payload.ExpiresAt.Sub(wantExpiry); diff < -time.Second || diff > time.Second {
		t.Errorf("ExpiresAt = %v, want ~%v", payload.ExpiresAt, wantExpiry)
	}
}

func TestManager_CreateTokenRejectsBadInput(t *testing.T) {
	manager, _ := NewManager(testSecret, ManagerConfig{})

	if _, err := manager.CreateToken("", RoleAdmin); err == nil {
		t.Error("Expected error for empty user ID")
	}
	if _, err := manager.CreateToken("user-7", Role("superuser")); err == nil {
		t.Error("Expected error for unknown role")
	}
}

// ============================================================================
// Verification Failure Tests
// ============================================================================

func TestManager_ExpiredVersusInvalid(t *testing.T) {
	manager, _ := NewManager(testSecret, ManagerConfig{})

	// Zero TTL mints an already-expired token.
	expired, err := manager.CreateTokenWithTTL("user-7", RoleAdmin, 0)
	if err != nil {
		t.Fatalf("CreateTokenWithTTL: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	_, err = manager.VerifyToken(expired)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}

	// A corrupted token is invalid, not expired.
	valid, _ := manager.CreateToken("user-7", RoleAdmin)
	corrupted := valid[:len(valid)-4] + "XXXX"
	_, err = manager.VerifyToken(corrupted)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Expected ErrTokenInvalid for corrupted token, got %v", err)
	}
	if errors.Is(err, ErrTokenExpired) {
		t.Error("Corrupted token must not report as expired")
	}
}

func TestManager_RejectsForeignSignature(t *testing.T) {
	manager, _ := NewManager(testSecret, ManagerConfig{})
	other, _ := NewManager("ffffffffffffffffffffffffffffffff", ManagerConfig{})

	token, _ := other.CreateToken("user-7", RoleAdmin)
	if _, err := manager.VerifyToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Expected ErrTokenInvalid for foreign signature, got %v", err)
	}
}

func TestManager_RejectsGarbage(t *testing.T) {
	manager, _ := NewManager(testSecret, ManagerConfig{})

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := manager.VerifyToken(token); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("VerifyToken(%q): expected ErrTokenInvalid, got %v", token, err)
		}
	}
}

// ============================================================================
// Permission Tests
// ============================================================================

func TestManager_HasPermissionMatchesTable(t *testing.T) {
	manager, _ := NewManager(testSecret, ManagerConfig{})

	allPerms := []Permission{
		PermissionConfigureBot,
		PermissionViewReports,
		PermissionApproveReviews,
		PermissionManageRules,
		PermissionViewAnalytics,
	}

	for _, role := range allRoles {
		token, err := manager.CreateToken("user-7", role)
		if err != nil {
			t.Fatalf("CreateToken(%s): %v", role, err)
		}

		granted := make(map[Permission]bool)
		for _, p := range PermissionsForRole(role) {
			granted[p] = true
		}

		for _, perm := range allPerms {
			got := manager.HasPermission(token, perm)
			if got != granted[perm] {
				t.Errorf("HasPermission(%s, %s) = %v, want %v", role, perm, got, granted[perm])
			}
		}
	}
}

func TestManager_AdminIsSupersetOfAllRoles(t *testing.T) {
	adminPerms := make(map[Permission]bool)
	for _, p := range PermissionsForRole(RoleAdmin) {
		adminPerms[p] = true
	}

	for _, role := range allRoles {
		for _, p := range PermissionsForRole(role) {
			if !adminPerms[p] {
				t.Errorf("Role %s has %s which admin lacks", role, p)
			}
		}
	}
}

func TestManager_HasPermissionCollapsesFailuresToFalse(t *testing.T) {
	manager, _ := NewManager(testSecret, ManagerConfig{})

	expired, _ := manager.CreateTokenWithTTL("user-7", RoleAdmin, 0)
	time.Sleep(10 * time.Millisecond)

	if manager.HasPermission(expired, PermissionViewReports) {
		t.Error("Expired token must yield false")
	}
	if manager.HasPermission("garbage", PermissionViewReports) {
		t.Error("Invalid token must yield false")
	}
}

// ============================================================================
// Guard Tests
// ============================================================================

func TestManager_GuardEnforcesPermission(t *testing.T) {
	manager, _ := NewManager(testSecret, ManagerConfig{})
	ctx := context.Background()

	executed := false
	guarded := manager.Guard(PermissionManageRules, func(context.Context) error {
		executed = true
		return nil
	})

	// Viewer lacks manage_rules.
	viewerToken, _ := manager.CreateToken("viewer-1", RoleViewer)
	err := guarded(ctx, viewerToken)

	var denied *PermissionDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("Expected *PermissionDeniedError, got %v", err)
	}
	if denied.Permission != PermissionManageRules {
		t.Errorf("Denied permission = %s, want manage_rules", denied.Permission)
	}
	if !errors.Is(err, ErrPermissionDenied) {
		t.Error("Expected errors.Is(err, ErrPermissionDenied)")
	}
	if executed {
		t.Error("Operation ran despite missing permission")
	}

	// Admin passes.
	adminToken, _ := manager.CreateToken("admin-1", RoleAdmin)
	if err := guarded(ctx, adminToken); err != nil {
		t.Errorf("Admin call failed: %v", err)
	}
	if !executed {
		t.Error("Operation did not run for admin")
	}
}
