package config

import (
	"os"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoad(t *testing.T) {
	configContent := `
server:
  port: 9090
catalog:
  path: "data/normes_db.yaml"
output:
  dir: "/var/lib/qp"
minio:
  enabled: true
  endpoint: "localhost:9000"
  access_key: "minioadmin"
  secret_key: "minioadmin"
  bucket: "quality-plans"
  use_ssl: false
  expire_days: 14
auth:
  jwt_secret: "test-secret"
  token_expire_hours: 48
log:
  level: "debug"
  format: "json"
store:
  max_plans: 50
rate_limit:
  requests: 20
  window: 30s
plan:
  approved_by: "Quality Manager"
users:
  - username: "testuser"
    password: "testpass"
    full_name: "Test User"
`
	cfg, err := Load(writeTempConfig(t, configContent))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Catalog.Path != "data/normes_db.yaml" {
		t.Errorf("Expected catalog path data/normes_db.yaml, got %s", cfg.Catalog.Path)
	}
	if cfg.Output.Dir != "/var/lib/qp" {
		t.Errorf("Expected output dir /var/lib/qp, got %s", cfg.Output.Dir)
	}
	if !cfg.Minio.Enabled {
		t.Error("Expected minio enabled")
	}
	if cfg.Minio.ExpireDays != 14 {
		t.Errorf("Expected expire_days 14, got %d", cfg.Minio.ExpireDays)
	}
	if cfg.Auth.TokenExpireHours != 48 {
		t.Errorf("Expected token_expire_hours 48, got %d", cfg.Auth.TokenExpireHours)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Expected log format json, got %s", cfg.Log.Format)
	}
	if cfg.Store.MaxPlans != 50 {
		t.Errorf("Expected max_plans 50, got %d", cfg.Store.MaxPlans)
	}
	if cfg.RateLimit.Requests != 20 || cfg.RateLimit.Window != 30*time.Second {
		t.Errorf("Expected rate limit 20/30s, got %d/%v", cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}
	if cfg.Plan.ApprovedBy != "Quality Manager" {
		t.Errorf("Expected approved_by Quality Manager, got %s", cfg.Plan.ApprovedBy)
	}
	if len(cfg.Users) != 1 {
		t.Fatalf("Expected 1 user, got %d", len(cfg.Users))
	}
	if cfg.Users[0].FullName != "Test User" {
		t.Errorf("Expected full name Test User, got %s", cfg.Users[0].FullName)
	}
}

func TestLoadDefaults(t *testing.T) {
	configContent := `
auth:
  jwt_secret: "secret"
`
	cfg, err := Load(writeTempConfig(t, configContent))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Catalog.Path != "normes_db.json" {
		t.Errorf("Expected default catalog path normes_db.json, got %s", cfg.Catalog.Path)
	}
	if cfg.Output.Dir != "output" {
		t.Errorf("Expected default output dir output, got %s", cfg.Output.Dir)
	}
	if cfg.Minio.Enabled {
		t.Error("Expected minio disabled by default")
	}
	if cfg.Minio.ExpireDays != 7 {
		t.Errorf("Expected default expire_days 7, got %d", cfg.Minio.ExpireDays)
	}
	if cfg.Auth.TokenExpireHours != 24 {
		t.Errorf("Expected default token_expire_hours 24, got %d", cfg.Auth.TokenExpireHours)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Expected default log format text, got %s", cfg.Log.Format)
	}
	if cfg.Store.MaxPlans != 100 {
		t.Errorf("Expected default max_plans 100, got %d", cfg.Store.MaxPlans)
	}
	if cfg.RateLimit.Requests != 100 || cfg.RateLimit.Window != time.Minute {
		t.Errorf("Expected default rate limit 100/1m, got %d/%v", cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}
}

func TestLoadNonExistent(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeTempConfig(t, "invalid: yaml: content:"))
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestFindUser(t *testing.T) {
	cfg := &Config{
		Users: []User{
			{Username: "user1", Password: "pass1", FullName: "First Inspector"},
			{Username: "user2", Password: "pass2"},
		},
	}

	user := cfg.FindUser("user1")
	if user == nil {
		t.Fatal("Expected to find user1")
	}
	if user.Password != "pass1" {
		t.Errorf("Expected password pass1, got %s", user.Password)
	}
	if user.DisplayName() != "First Inspector" {
		t.Errorf("Expected display name First Inspector, got %s", user.DisplayName())
	}

	if got := cfg.FindUser("user2").DisplayName(); got != "user2" {
		t.Errorf("Expected display name to fall back to username, got %s", got)
	}

	user = cfg.FindUser("nonexistent")
	if user != nil {
		t.Error("Expected nil for non-existent user")
	}
}
