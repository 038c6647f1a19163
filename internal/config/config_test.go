package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValidatesClean(t *testing.T) {
	cfg := DefaultConfig()
	if warnings := cfg.Validate(); len(warnings) != 0 {
		t.Fatalf("expected no warnings for defaults, got %v", warnings)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Transport.Port != DefaultConfig().Transport.Port {
		t.Fatalf("expected default port, got %d", cfg.Transport.Port)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := "transport:\n  port: 9333\n  bind_address: 0.0.0.0\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Transport.Port != 9333 {
		t.Fatalf("expected overridden port 9333, got %d", cfg.Transport.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected overridden log level debug, got %s", cfg.LogLevel)
	}
	// Unset fields retain their defaults.
	if cfg.NetworkMaxResponseBodySize != DefaultConfig().NetworkMaxResponseBodySize {
		t.Fatalf("expected default response body size to survive merge")
	}
}

func TestValidateFlagsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NetworkMaxResponseBodySize = -1
	cfg.RuntimeMaxRemoteObjects = 0
	cfg.LogLevel = "verbose"

	warnings := cfg.Validate()
	if len(warnings) < 3 {
		t.Fatalf("expected at least 3 warnings, got %v", warnings)
	}
}
