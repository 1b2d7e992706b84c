package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"filekv/internal/filekv"
	"filekv/internal/logging"
)

// Backend names accepted in store.backend.
const (
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendPebble = "pebble"
)

type Config struct {
	Store   StoreConfig   `toml:"store"`
	Logging LoggingConfig `toml:"logging"`
}

type StoreConfig struct {
	DataDir string `toml:"data_dir"`
	Backend string `toml:"backend"`
	Bucket  string `toml:"bucket"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Defaults returns a Config with sane defaults.
func Defaults() *Config {
	return &Config{
		Store: StoreConfig{
			DataDir: "~/.filekv",
			Backend: BackendFile,
			Bucket:  "default",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a TOML config file over the defaults. With an empty path,
// ~/.filekv/config.toml is used if it exists.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		path = ExpandHome("~/.filekv/config.toml")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parsing config: unknown key %q", undecoded[0].String())
	}

	return cfg, nil
}

// Validate checks field values. Every problem is reported, joined.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Store.DataDir) == "" {
		errs = append(errs, errors.New("store.data_dir: must not be empty"))
	}
	switch c.Store.Backend {
	case BackendFile, BackendBolt, BackendPebble:
	default:
		errs = append(errs, fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend))
	}
	if !filekv.ValidKey(c.Store.Bucket) {
		errs = append(errs, fmt.Errorf("store.bucket: %q is not a valid name", c.Store.Bucket))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	if !logging.ValidFormat(c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// ExpandHome resolves a leading ~/ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
