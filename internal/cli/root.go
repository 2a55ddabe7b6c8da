// Package cli implements the keepsake CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keepsake-ai/keepsake/internal/config"
	"github.com/keepsake-ai/keepsake/internal/embedding"
	"github.com/keepsake-ai/keepsake/internal/memory"
	"github.com/keepsake-ai/keepsake/internal/memstore"
	"github.com/keepsake-ai/keepsake/internal/store"
)

var (
	configPath string
	dbPath     string
	ephemeral  bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "keepsake",
	Short: "Dual-tier semantic memory for AI agents",
	Long: "A semantic memory store: fast in-memory working set, write-through to SQLite.\n" +
		"Runs memory-only when no database is configured or reachable.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $KEEPSAKE_CONFIG)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $KEEPSAKE_DB or ~/.keepsake/keepsake.db)")
	RootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Skip the durable tier and run memory-only")
}

// openMemory builds the composed store from flags, config file, and env.
func openMemory() (*memory.Memory, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	var repoOpts []memstore.Option
	if cfg.UniqueLinks {
		repoOpts = append(repoOpts, memstore.WithUniqueLinks())
	}
	repo := memstore.New(repoOpts...)

	if ephemeral {
		return memory.New(repo, nil), cfg, nil
	}

	dsn := cfg.Database.DSN
	if dsn == "" {
		path := cfg.Database.Path
		if path == "" {
			path = config.DefaultDBPath()
		}
		dsn, err = store.FileDSN(path)
		if err != nil {
			return nil, nil, err
		}
	}

	db := store.New(store.Config{
		DSN:         dsn,
		MinConns:    cfg.Database.MinConns,
		MaxConns:    cfg.Database.MaxConns,
		EmbedDim:    cfg.Embedding.Dim,
		EmbedModel:  cfg.Embedding.Model,
		UniqueLinks: cfg.UniqueLinks,
	})
	return memory.New(repo, db), cfg, nil
}

// openEmbedder returns the configured embedder, or nil when embeddings are
// disabled.
func openEmbedder(cfg *config.Config) embedding.Embedder {
	return embedding.New(
		cfg.Embedding.Provider,
		cfg.Embedding.Model,
		cfg.Embedding.BaseURL,
		cfg.Embedding.Dim,
	)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
