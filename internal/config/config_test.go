package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Store.DataDir != "~/.filekv" {
		t.Errorf("DataDir: got %q, want ~/.filekv", cfg.Store.DataDir)
	}
	if cfg.Store.Backend != BackendFile {
		t.Errorf("Backend: got %q, want file", cfg.Store.Backend)
	}
	if cfg.Store.Bucket != "default" {
		t.Errorf("Bucket: got %q, want default", cfg.Store.Bucket)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadNoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != BackendFile {
		t.Errorf("Backend: got %q, want file", cfg.Store.Backend)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
[store]
data_dir = "/tmp/filekv-test"
backend = "bolt"
bucket = "cache"

[logging]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.DataDir != "/tmp/filekv-test" {
		t.Errorf("DataDir: got %q", cfg.Store.DataDir)
	}
	if cfg.Store.Backend != BackendBolt {
		t.Errorf("Backend: got %q", cfg.Store.Backend)
	}
	if cfg.Store.Bucket != "cache" {
		t.Errorf("Bucket: got %q", cfg.Store.Bucket)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging: got %+v", cfg.Logging)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[store]\nbackend = \"pebble\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Backend != BackendPebble || cfg.Store.Bucket != "default" || cfg.Logging.Level != "info" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("{{invalid"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestLoadUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.toml")
	if err := os.WriteFile(path, []byte("[store]\nbakend = \"bolt\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "store.bakend") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for explicit missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"empty data dir", func(c *Config) { c.Store.DataDir = " " }, "store.data_dir"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "redis" }, "store.backend"},
		{"bucket with slash", func(c *Config) { c.Store.Bucket = "a/b" }, "store.bucket"},
		{"empty bucket", func(c *Config) { c.Store.Bucket = "" }, "store.bucket"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error should mention %q: %v", tt.wantSub, err)
			}
		})
	}
}

func TestValidateReportsAll(t *testing.T) {
	cfg := Defaults()
	cfg.Store.Backend = "nope"
	cfg.Logging.Format = "nope"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "store.backend") || !strings.Contains(err.Error(), "logging.format") {
		t.Errorf("expected both problems reported: %v", err)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got, want := ExpandHome("~/foo/bar"), filepath.Join(home, "foo/bar"); got != want {
		t.Errorf("ExpandHome: got %q, want %q", got, want)
	}
	if got := ExpandHome("/absolute/path"); got != "/absolute/path" {
		t.Errorf("ExpandHome: got %q, want /absolute/path", got)
	}
}
