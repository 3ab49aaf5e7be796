package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 8080
auth:
  api_key: "test-key-123"
backend:
  kind: "postgres"
database:
  host: "localhost"
  port: 5432
  name: "fixfit"
  user: "fixfit"
  password: "secret"
  sslmode: "disable"
roles:
  studio@example.com: admin
import:
  placeholder_domain: "studio.placeholder.test"
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadValid verifies that a well-formed YAML config loads with all fields
// populated and defaults applied.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Backend.Kind != BackendPostgres {
		t.Errorf("backend.kind = %q, want postgres", cfg.Backend.Kind)
	}
	if cfg.Database.Name != "fixfit" {
		t.Errorf("database.name = %q, want fixfit", cfg.Database.Name)
	}
	if cfg.Import.PlaceholderDomain != "studio.placeholder.test" {
		t.Errorf("placeholder_domain = %q", cfg.Import.PlaceholderDomain)
	}
	// Defaults for fields the file leaves out
	if cfg.Import.CSVPassword != "123456" {
		t.Errorf("csv_password default = %q, want 123456", cfg.Import.CSVPassword)
	}
	if cfg.Import.WorkbookPassword != "password123" {
		t.Errorf("workbook_password default = %q, want password123", cfg.Import.WorkbookPassword)
	}
}

// TestEnvOverride verifies that FIXFIT_ env vars take precedence over YAML
// values, so deployments can override config via environment.
func TestEnvOverride(t *testing.T) {
	t.Setenv("FIXFIT_DB_HOST", "override-host")
	t.Setenv("FIXFIT_DB_PORT", "9999")
	t.Setenv("FIXFIT_AUTH_API_KEY", "env-key")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Host != "override-host" {
		t.Errorf("database.host = %q, want override-host", cfg.Database.Host)
	}
	if cfg.Database.Port != 9999 {
		t.Errorf("database.port = %d, want 9999", cfg.Database.Port)
	}
	if cfg.Auth.APIKey != "env-key" {
		t.Errorf("auth.api_key = %q, want env-key", cfg.Auth.APIKey)
	}
	if cfg.Database.Name != "fixfit" {
		t.Errorf("database.name = %q, want fixfit", cfg.Database.Name)
	}
}

// TestValidationBadBackend verifies that an unknown backend kind is rejected.
func TestValidationBadBackend(t *testing.T) {
	yaml := `
backend:
  kind: "mongo"
`
	_, err := Load(writeTemp(t, yaml))
	if err == nil {
		t.Fatal("expected validation error for unknown backend kind")
	}
}

// TestValidationPostgresFields verifies that the postgres backend requires
// connection details.
func TestValidationPostgresFields(t *testing.T) {
	yaml := `
backend:
  kind: "postgres"
database:
  host: "localhost"
`
	_, err := Load(writeTemp(t, yaml))
	if err == nil {
		t.Fatal("expected validation error for missing database fields")
	}
}

// TestValidationBadRole verifies that the role policy table only accepts
// known roles.
func TestValidationBadRole(t *testing.T) {
	yaml := `
roles:
  someone@example.com: superuser
`
	_, err := Load(writeTemp(t, yaml))
	if err == nil {
		t.Fatal("expected validation error for unknown role")
	}
}

// TestRoleFor verifies the policy lookup defaults to trainee.
func TestRoleFor(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.RoleFor("studio@example.com"); got != "admin" {
		t.Errorf("RoleFor(admin email) = %q, want admin", got)
	}
	if got := cfg.RoleFor("dana@example.com"); got != "trainee" {
		t.Errorf("RoleFor(unknown email) = %q, want trainee", got)
	}
}

// TestLoadOrDefaultMissingFile verifies the CLI fallback: a missing config
// file yields usable defaults (firestore backend).
func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend.Kind != BackendFirestore {
		t.Errorf("backend.kind = %q, want firestore", cfg.Backend.Kind)
	}
	if cfg.Import.PlaceholderDomain == "" {
		t.Error("placeholder domain default missing")
	}
}
