package main

import (
	"path/filepath"
	"testing"

	"gatehouse-hq/janus/pkg/config"
	"gatehouse-hq/janus/pkg/rbac"
)

func TestTokenManagerFromConfig(t *testing.T) {
	t.Setenv(config.EnvSigningSecret, "0123456789abcdef0123456789abcdef")

	orig := cfgFile
	cfgFile = filepath.Join(t.TempDir(), "absent.yaml")
	defer func() { cfgFile = orig }()

	manager, err := tokenManager()
	if err != nil {
		t.Fatalf("tokenManager() error = %v", err)
	}

	token, err := manager.CreateToken("alice", rbac.RoleAdmin)
	if err != nil {
		t.Fatalf("CreateToken() error = %v", err)
	}

	payload, err := manager.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if payload.UserID != "alice" || payload.Role != rbac.RoleAdmin {
		t.Errorf("payload = %+v", payload)
	}
}

func TestTokenManagerRequiresSecret(t *testing.T) {
	t.Setenv(config.EnvSigningSecret, "")

	orig := cfgFile
	cfgFile = filepath.Join(t.TempDir(), "absent.yaml")
	defer func() { cfgFile = orig }()

	if _, err := tokenManager(); err == nil {
		t.Error("tokenManager() succeeded without a signing secret")
	}
}
