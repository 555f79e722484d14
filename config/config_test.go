package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ethbridge.toml")
	contents := `
[Store]
Backend = "leveldb"
Path = "/var/lib/ethbridge"

[Metrics]
Enabled = true
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := Defaults
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Store.Backend != "leveldb" {
		t.Fatalf("Store.Backend = %q, want leveldb", cfg.Store.Backend)
	}
	if cfg.Store.Path != "/var/lib/ethbridge" {
		t.Fatalf("Store.Path = %q, want /var/lib/ethbridge", cfg.Store.Path)
	}
	if !cfg.Metrics.Enabled {
		t.Fatalf("Metrics.Enabled = false, want true")
	}
	// Serve was untouched by the file and must keep its default.
	if cfg.Serve.Addr != Defaults.Serve.Addr {
		t.Fatalf("Serve.Addr = %q, want default %q", cfg.Serve.Addr, Defaults.Serve.Addr)
	}
}

func TestLoadRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ethbridge.toml")
	contents := `
[Store]
Backend = "memory"
Bogus = "nope"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := Defaults
	if err := Load(path, &cfg); err == nil {
		t.Fatalf("expected Load to reject an unknown field, got nil error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg := Defaults
	if err := Load(filepath.Join(t.TempDir(), "missing.toml"), &cfg); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}
