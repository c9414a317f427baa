package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config stores repository-local settings.
type Config struct {
	// Author is the default author for new commits.
	Author string `toml:"author,omitempty"`
	// LockWait bounds how long object store handles wait on a contended
	// file lock. Zero means the store default.
	LockWait time.Duration `toml:"lock_wait,omitempty"`
}

// DefaultConfig returns the config written by Init.
func DefaultConfig() *Config {
	return &Config{}
}

func (r *Repo) configPath() string {
	return filepath.Join(r.CafDir, "config.toml")
}

// ReadConfig reads .caf/config.toml. A missing file returns defaults.
func (r *Repo) ReadConfig() (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(r.configPath(), cfg); err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// WriteConfig atomically writes .caf/config.toml via temp file + rename.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tmp, err := os.CreateTemp(r.CafDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, r.configPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}
