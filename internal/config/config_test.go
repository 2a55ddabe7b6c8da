package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KEEPSAKE_CONFIG", "")
	t.Setenv("KEEPSAKE_DB", "")
	t.Setenv("KEEPSAKE_DSN", "")
	t.Setenv("KEEPSAKE_EMBED_PROVIDER", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Path != "" || cfg.Database.DSN != "" {
		t.Errorf("expected empty database config, got %+v", cfg.Database)
	}
	if cfg.UniqueLinks {
		t.Error("unique_links must default to false")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keepsake.yaml")
	data := `
database:
  path: /var/lib/keepsake/keepsake.db
  min_conns: 2
  max_conns: 10
embedding:
  provider: ollama
  model: all-minilm
  dim: 384
unique_links: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Path != "/var/lib/keepsake/keepsake.db" {
		t.Errorf("path = %q", cfg.Database.Path)
	}
	if cfg.Database.MinConns != 2 || cfg.Database.MaxConns != 10 {
		t.Errorf("pool bounds = %d/%d", cfg.Database.MinConns, cfg.Database.MaxConns)
	}
	if cfg.Embedding.Provider != "ollama" || cfg.Embedding.Dim != 384 {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
	if !cfg.UniqueLinks {
		t.Error("expected unique_links true")
	}
}

func TestEnvFallback(t *testing.T) {
	t.Setenv("KEEPSAKE_CONFIG", "")
	t.Setenv("KEEPSAKE_DSN", "file:env.db")
	t.Setenv("KEEPSAKE_EMBED_PROVIDER", "openai")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.DSN != "file:env.db" {
		t.Errorf("dsn = %q", cfg.Database.DSN)
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("provider = %q", cfg.Embedding.Provider)
	}
}

func TestFileWinsOverEnv(t *testing.T) {
	t.Setenv("KEEPSAKE_DSN", "file:env.db")

	path := filepath.Join(t.TempDir(), "keepsake.yaml")
	if err := os.WriteFile(path, []byte("database:\n  dsn: file:file.db\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.DSN != "file:file.db" {
		t.Errorf("expected file value to win, got %q", cfg.Database.DSN)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}
