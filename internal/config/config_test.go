package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenNoConfigFilePresent(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timeout.Milliseconds() != 30000 {
		t.Fatalf("expected default timeout 30000ms, got %v", cfg.Timeout)
	}
	if cfg.SourceFile != "" {
		t.Fatalf("expected no source file, got %q", cfg.SourceFile)
	}
}

func TestLoadReadsProjectConfigFile(t *testing.T) {
	dir := t.TempDir()
	n8nDir := filepath.Join(dir, ".n8n-cli")
	if err := os.MkdirAll(n8nDir, 0o700); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(n8nDir, "config.json")
	if err := os.WriteFile(configPath, []byte(`{"host":"https://example.com","timeout":5000}`), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Host != "https://example.com" {
		t.Fatalf("expected host from config file, got %q", cfg.Host)
	}
	if cfg.Timeout.Milliseconds() != 5000 {
		t.Fatalf("expected timeout 5000ms, got %v", cfg.Timeout)
	}
	if cfg.SourceFile != configPath {
		t.Fatalf("expected source file %q, got %q", configPath, cfg.SourceFile)
	}
}

func TestLoadEnvVarOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	n8nDir := filepath.Join(dir, ".n8n-cli")
	if err := os.MkdirAll(n8nDir, 0o700); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(n8nDir, "config.json")
	if err := os.WriteFile(configPath, []byte(`{"host":"https://from-file.example"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(envKeyFor("host"), "https://from-env.example")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Host != "https://from-env.example" {
		t.Fatalf("expected env var to override config file, got %q", cfg.Host)
	}
}

func TestCheckPermissionsWarnsOnPermissiveMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	warning, err := checkPermissions(path, false)
	if err != nil {
		t.Fatalf("unexpected error in non-strict mode: %v", err)
	}
	if warning == "" {
		t.Fatal("expected a permission warning for mode 0644")
	}
}

func TestCheckPermissionsRefusesUnderStrictMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := checkPermissions(path, true)
	if err == nil {
		t.Fatal("expected refusal under strict mode for a group/world readable config")
	}
}

func TestCheckPermissionsAllowsOwnerOnlyMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}

	warning, err := checkPermissions(path, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if warning != "" {
		t.Fatalf("expected no warning for owner-only mode, got %q", warning)
	}
}

func TestValidateRejectsNonPositiveTimeout(t *testing.T) {
	cfg := &Config{Timeout: 0, CleanupTimeoutMs: 5000}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero timeout")
	}
}

func TestWriteDefaultCreatesLoadableConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".n8n-cli", "config.json")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error loading generated config: %v", err)
	}
	if cfg.SourceFile != path {
		t.Fatalf("expected generated config to be picked up from %q, got %q", path, cfg.SourceFile)
	}
}

func TestWriteDefaultRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := WriteDefault(path); err != nil {
		t.Fatal(err)
	}
	if err := WriteDefault(path); err == nil {
		t.Fatal("expected an error when the config file already exists")
	}
}
