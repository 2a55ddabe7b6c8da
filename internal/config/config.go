// Package config loads process configuration from a YAML file, with
// environment-variable fallbacks for the common settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Database configures the durable tier. When both Path and DSN are empty the
// process runs memory-only.
type Database struct {
	Path     string `yaml:"path,omitempty"` // database file; ignored when DSN is set
	DSN      string `yaml:"dsn,omitempty"`  // full driver DSN, overrides Path
	MinConns int    `yaml:"min_conns,omitempty"`
	MaxConns int    `yaml:"max_conns,omitempty"`
}

// Embedding configures the embedding provider.
type Embedding struct {
	Provider string `yaml:"provider,omitempty"` // "openai" | "ollama" | "" (disabled)
	Model    string `yaml:"model,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Dim      int    `yaml:"dim,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	Database    Database  `yaml:"database"`
	Embedding   Embedding `yaml:"embedding"`
	UniqueLinks bool      `yaml:"unique_links,omitempty"`
}

// DefaultDBPath returns the database file used when nothing is configured.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".keepsake", "keepsake.db")
}

// Load reads the config file at path, or at $KEEPSAKE_CONFIG when path is
// empty. A missing path on both yields defaults. Environment variables fill
// in any setting the file leaves empty.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		path = os.Getenv("KEEPSAKE_CONFIG")
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if c.Database.Path == "" {
		c.Database.Path = os.Getenv("KEEPSAKE_DB")
	}
	if c.Database.DSN == "" {
		c.Database.DSN = os.Getenv("KEEPSAKE_DSN")
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = os.Getenv("KEEPSAKE_EMBED_PROVIDER")
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = os.Getenv("KEEPSAKE_EMBED_MODEL")
	}
	if c.Embedding.BaseURL == "" {
		c.Embedding.BaseURL = os.Getenv("KEEPSAKE_EMBED_URL")
	}
}
