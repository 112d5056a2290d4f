package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "obelisk.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AgentTimeout.Std() != 30*time.Second {
		t.Errorf("timeout: got %s", cfg.AgentTimeout.Std())
	}
	if cfg.Server.Addr != ":8080" || cfg.Log.Level != "info" {
		t.Errorf("defaults: %+v", cfg)
	}
}

func TestLoad_OverlaysOnDefaults(t *testing.T) {
	path := writeFile(t, `
agent_timeout: 5s
log:
  level: debug
config_baseline:
  MAX_DB_CONNECTIONS: 20
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AgentTimeout.Std() != 5*time.Second {
		t.Errorf("timeout: got %s", cfg.AgentTimeout.Std())
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level: got %q", cfg.Log.Level)
	}
	// Unnamed fields keep their defaults.
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server addr: got %q", cfg.Server.Addr)
	}
	if _, ok := cfg.ConfigBaseline["MAX_DB_CONNECTIONS"]; !ok {
		t.Errorf("baseline missing: %+v", cfg.ConfigBaseline)
	}
}

func TestLoad_RejectsBadFormat(t *testing.T) {
	path := writeFile(t, "log:\n  format: xml\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "log.format") {
		t.Errorf("got %v, want log.format error", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
