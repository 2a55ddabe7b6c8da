// Package store mirrors the semantic-memory working set into SQLite and
// reloads it. The driver fails open: when the database cannot be opened,
// persistence degrades to a no-op and the process keeps running on the
// in-memory tier alone. The connectivity error is returned once, from the
// first call that hits it; Ready reports the degraded state afterwards.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/keepsake-ai/keepsake/internal/memstore"
	"github.com/keepsake-ai/keepsake/internal/model"
)

// Connection-pool and embedding defaults.
const (
	DefaultMinConns = 1
	DefaultMaxConns = 5
	DefaultEmbedDim = 1536
)

// errUnavailable marks calls made after the connectivity error was already
// surfaced; they degrade to silent no-ops.
var errUnavailable = errors.New("durable store unavailable")

// Config describes the durable tier.
type Config struct {
	DSN         string
	MinConns    int // idle connections kept in the pool
	MaxConns    int // upper bound on open connections
	EmbedDim    int // recorded alongside each stored embedding
	EmbedModel  string
	UniqueLinks bool // enforce one relation row per (item, category) pair
	Logger      *slog.Logger
}

// Client is a lazily-connected SQLite driver. The pool is created under a
// mutex on first use; exactly one caller performs initialization even when
// persistence calls race.
type Client struct {
	cfg Config
	log *slog.Logger

	mu          sync.Mutex
	initialized bool
	db          *sql.DB
	initErr     error
}

// New creates a Client. No I/O happens until the first persistence or load
// call.
func New(cfg Config) *Client {
	if cfg.MinConns <= 0 {
		cfg.MinConns = DefaultMinConns
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = DefaultMaxConns
	}
	if cfg.EmbedDim <= 0 {
		cfg.EmbedDim = DefaultEmbedDim
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{cfg: cfg, log: log}
}

// FileDSN builds a DSN for a database file path, creating the parent
// directory.
func FileDSN(path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create db dir: %w", err)
	}
	return path + "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)", nil
}

// ensure opens the pool on first call. The first caller to observe a
// connectivity failure gets the error; later callers get errUnavailable.
func (c *Client) ensure(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		c.initialized = true
		c.db, c.initErr = c.open(ctx)
		if c.initErr != nil {
			c.log.Warn("durable store unreachable, continuing memory-only",
				"error", c.initErr)
			return fmt.Errorf("connect durable store: %w", c.initErr)
		}
		return nil
	}
	if c.initErr != nil {
		return errUnavailable
	}
	return nil
}

func (c *Client) open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", c.cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	db.SetMaxOpenConns(c.cfg.MaxConns)
	db.SetMaxIdleConns(c.cfg.MinConns)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := c.migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (c *Client) migrate(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS resources (
		id          TEXT PRIMARY KEY,
		url         TEXT NOT NULL,
		local_path  TEXT NOT NULL,
		modality    TEXT NOT NULL,
		caption     TEXT,
		embedding   TEXT,
		embed_model TEXT,
		embed_dim   INTEGER
	);

	CREATE TABLE IF NOT EXISTS categories (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL,
		summary     TEXT,
		embedding   TEXT,
		embed_model TEXT,
		embed_dim   INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_categories_name ON categories(name);

	CREATE TABLE IF NOT EXISTS items (
		id         TEXT PRIMARY KEY,
		summary    TEXT NOT NULL,
		embedding  TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS relations (
		id          TEXT PRIMARY KEY,
		item_id     TEXT NOT NULL,
		category_id TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_relations_item ON relations(item_id);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return err
	}
	if c.cfg.UniqueLinks {
		_, err := db.ExecContext(ctx,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_relations_pair ON relations(item_id, category_id)`)
		return err
	}
	return nil
}

// ignoreUnavailable turns the post-first-failure sentinel into a silent
// no-op while letting real errors (including the first connectivity error)
// through.
func ignoreUnavailable(err error) error {
	if errors.Is(err, errUnavailable) {
		return nil
	}
	return err
}

// Ready reports whether the durable tier is reachable, establishing the pool
// on first call.
func (c *Client) Ready(ctx context.Context) bool {
	return c.ensure(ctx) == nil
}

// Close releases the pool. Later persistence calls become no-ops.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialized = true
	c.initErr = errUnavailable
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// UpsertResource inserts the resource or overwrites all mutable columns of
// an existing row with the same id. Idempotent.
func (c *Client) UpsertResource(ctx context.Context, res *model.Resource) error {
	if err := c.ensure(ctx); err != nil {
		return ignoreUnavailable(err)
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO resources (id, url, local_path, modality, caption, embedding, embed_model, embed_dim)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  url=excluded.url,
		  local_path=excluded.local_path,
		  modality=excluded.modality,
		  caption=excluded.caption,
		  embedding=excluded.embedding,
		  embed_model=excluded.embed_model,
		  embed_dim=excluded.embed_dim`,
		res.ID, res.URL, res.LocalPath, res.Modality, nullable(res.Caption),
		encodeVector(res.Embedding), nullable(c.cfg.EmbedModel), c.cfg.EmbedDim)
	if err != nil {
		return fmt.Errorf("upsert resource: %w", err)
	}
	return nil
}

// UpsertCategory inserts the category or overwrites all mutable columns of
// an existing row with the same id. Idempotent.
func (c *Client) UpsertCategory(ctx context.Context, cat *model.MemoryCategory) error {
	if err := c.ensure(ctx); err != nil {
		return ignoreUnavailable(err)
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, description, summary, embedding, embed_model, embed_dim)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  name=excluded.name,
		  description=excluded.description,
		  summary=excluded.summary,
		  embedding=excluded.embedding,
		  embed_model=excluded.embed_model,
		  embed_dim=excluded.embed_dim`,
		cat.ID, cat.Name, cat.Description, nullable(cat.Summary),
		encodeVector(cat.Embedding), nullable(c.cfg.EmbedModel), c.cfg.EmbedDim)
	if err != nil {
		return fmt.Errorf("upsert category: %w", err)
	}
	return nil
}

// UpsertItem inserts the item or overwrites summary and embedding of an
// existing row with the same id. created_at is set once, at first insert.
func (c *Client) UpsertItem(ctx context.Context, item *model.MemoryItem) error {
	if err := c.ensure(ctx); err != nil {
		return ignoreUnavailable(err)
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO items (id, summary, embedding, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  summary=excluded.summary,
		  embedding=excluded.embedding`,
		item.ID, item.Summary, encodeVector(item.Embedding),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert item: %w", err)
	}
	return nil
}

// UpsertRelation inserts a relation row under a freshly generated id. An id
// collision (or, with UniqueLinks, a duplicate pair) is silently skipped.
func (c *Client) UpsertRelation(ctx context.Context, rel model.CategoryItem) error {
	if err := c.ensure(ctx); err != nil {
		return ignoreUnavailable(err)
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO relations (id, item_id, category_id)
		VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING`,
		uuid.NewString(), rel.ItemID, rel.CategoryID)
	if err != nil {
		return fmt.Errorf("upsert relation: %w", err)
	}
	return nil
}

// LoadInto reads every row of the four tables and hydrates the repository in
// place, overwriting entities by id and appending relations. It reports
// whether durable storage was actually read (false when no pool could be
// established). A row whose embedding fails to decode still loads, with no
// embedding.
func (c *Client) LoadInto(ctx context.Context, repo *memstore.Store) (bool, error) {
	if err := c.ensure(ctx); err != nil {
		return false, ignoreUnavailable(err)
	}
	if err := c.loadCategories(ctx, repo); err != nil {
		return true, fmt.Errorf("load categories: %w", err)
	}
	if err := c.loadResources(ctx, repo); err != nil {
		return true, fmt.Errorf("load resources: %w", err)
	}
	if err := c.loadItems(ctx, repo); err != nil {
		return true, fmt.Errorf("load items: %w", err)
	}
	if err := c.loadRelations(ctx, repo); err != nil {
		return true, fmt.Errorf("load relations: %w", err)
	}
	return true, nil
}

func (c *Client) loadCategories(ctx context.Context, repo *memstore.Store) error {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, name, description, summary, embedding FROM categories`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var name, description, summary, embedding sql.NullString
		if err := rows.Scan(&id, &name, &description, &summary, &embedding); err != nil {
			return err
		}
		repo.SetCategory(&model.MemoryCategory{
			ID:          id,
			Name:        name.String,
			Description: description.String,
			Summary:     summary.String,
			Embedding:   decodeVector(embedding),
		})
	}
	return rows.Err()
}

func (c *Client) loadResources(ctx context.Context, repo *memstore.Store) error {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, url, local_path, modality, caption, embedding FROM resources`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var url, localPath, modality, caption, embedding sql.NullString
		if err := rows.Scan(&id, &url, &localPath, &modality, &caption, &embedding); err != nil {
			return err
		}
		repo.SetResource(&model.Resource{
			ID:        id,
			URL:       url.String,
			LocalPath: localPath.String,
			Modality:  modality.String,
			Caption:   caption.String,
			Embedding: decodeVector(embedding),
		})
	}
	return rows.Err()
}

func (c *Client) loadItems(ctx context.Context, repo *memstore.Store) error {
	rows, err := c.db.QueryContext(ctx, `SELECT id, summary, embedding FROM items`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var summary, embedding sql.NullString
		if err := rows.Scan(&id, &summary, &embedding); err != nil {
			return err
		}
		// resource_id and memory_type are not stored durably.
		repo.SetItem(&model.MemoryItem{
			ID:         id,
			MemoryType: model.MemoryTypeKnowledge,
			Summary:    summary.String,
			Embedding:  decodeVector(embedding),
		})
	}
	return rows.Err()
}

func (c *Client) loadRelations(ctx context.Context, repo *memstore.Store) error {
	rows, err := c.db.QueryContext(ctx, `SELECT item_id, category_id FROM relations`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var itemID, categoryID string
		if err := rows.Scan(&itemID, &categoryID); err != nil {
			return err
		}
		repo.AddRelation(model.CategoryItem{ItemID: itemID, CategoryID: categoryID})
	}
	return rows.Err()
}

// nullable maps an empty string to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
