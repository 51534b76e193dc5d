package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestGetConfigPath verifies the environment override and default.
func TestGetConfigPath(t *testing.T) {
	t.Setenv("FIELDSENSE_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv("FIELDSENSE_CONFIG", "/etc/fieldsense/config.yaml")
	if got := getConfigPath(); got != "/etc/fieldsense/config.yaml" {
		t.Errorf("getConfigPath() = %q, want env override", got)
	}
}

// TestRun_InvalidConfig verifies run fails with an invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("FIELDSENSE_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_InvalidConfigContent verifies run fails on a config that does
// not validate.
func TestRun_InvalidConfigContent(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
mqtt:
  broker:
    host: ""
ingest:
  flush_interval: 0
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("FIELDSENSE_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail when validation fails")
	}
}
