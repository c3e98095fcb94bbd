// Package config holds the immutable settings shared by the store and
// the deployment manager. Paths for the staging database and the history
// folder are derived from the production path when not set explicitly.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the resolved configuration. Constructed once and passed by
// value into constructors; nothing reads ambient global state.
type Config struct {
	// ProductionDatabase is the path to the production store file.
	ProductionDatabase string `yaml:"production_database"`

	// StagingDatabase is the path to the staging store file.
	// Defaults to a "staging." sibling of the production path.
	StagingDatabase string `yaml:"staging_database,omitempty"`

	// HistoryFolder is the directory for timestamped deploy snapshots.
	// Defaults to a "history" subdirectory next to the production file.
	HistoryFolder string `yaml:"history_folder,omitempty"`

	// KeepHistory snapshots production before each deploy replaces it.
	KeepHistory bool `yaml:"keep_history"`

	// ResolverCommand is the external resolver invoked as the
	// validation oracle, first element the binary, the rest fixed
	// arguments. Package names are appended per check. When unset,
	// validation reports the oracle unavailable; only force-mode
	// edits can proceed.
	ResolverCommand []string `yaml:"resolver_command,omitempty"`
}

// Load reads and validates a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the required keys.
func (c Config) Validate() error {
	if c.ProductionDatabase == "" {
		return fmt.Errorf("production_database is required")
	}
	return nil
}

// StagingPath returns the effective staging database path.
func (c Config) StagingPath() string {
	if c.StagingDatabase != "" {
		return c.StagingDatabase
	}
	dir, base := filepath.Split(c.ProductionDatabase)
	return filepath.Join(dir, "staging."+base)
}

// HistoryDir returns the effective history folder path.
func (c Config) HistoryDir() string {
	if c.HistoryFolder != "" {
		return c.HistoryFolder
	}
	return filepath.Join(filepath.Dir(c.ProductionDatabase), "history")
}
