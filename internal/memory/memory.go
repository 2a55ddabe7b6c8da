// Package memory composes the in-memory repository with the durable driver.
// Creation happens in memory only and always succeeds; persistence is a
// separate, best-effort step the caller invokes afterward. The two are not
// transactionally linked.
package memory

import (
	"context"

	"github.com/keepsake-ai/keepsake/internal/memstore"
	"github.com/keepsake-ai/keepsake/internal/model"
	"github.com/keepsake-ai/keepsake/internal/store"
)

// Health status values.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// Health reports whether writes reach durable storage or the process is
// running memory-only.
type Health struct {
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	Persistent bool   `json:"persistent"`
}

// Memory forwards creation to the repository and mirrors entities into the
// durable store on request. It owns neither tier.
type Memory struct {
	repo *memstore.Store
	db   *store.Client // nil when no durable tier is configured
}

// New composes a repository with an optional durable driver. Pass a nil
// driver to run memory-only; persistence calls then no-op and LoadAll
// reports false.
func New(repo *memstore.Store, db *store.Client) *Memory {
	return &Memory{repo: repo, db: db}
}

// Repo exposes the underlying repository for reads.
func (m *Memory) Repo() *memstore.Store { return m.repo }

// Close releases the durable tier's pool, if one is configured.
func (m *Memory) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

// CreateResource creates a resource in the fast tier.
func (m *Memory) CreateResource(url, modality, localPath string) *model.Resource {
	return m.repo.CreateResource(url, modality, localPath)
}

// GetOrCreateCategory returns the named category, creating it if absent.
func (m *Memory) GetOrCreateCategory(name, description string, embedding model.Vector) *model.MemoryCategory {
	return m.repo.GetOrCreateCategory(name, description, embedding)
}

// CreateItem creates an item in the fast tier.
func (m *Memory) CreateItem(resourceID, memoryType, summary string, embedding model.Vector) *model.MemoryItem {
	return m.repo.CreateItem(resourceID, memoryType, summary, embedding)
}

// LinkItemCategory records a relation in the fast tier.
func (m *Memory) LinkItemCategory(itemID, categoryID string) model.CategoryItem {
	return m.repo.LinkItemCategory(itemID, categoryID)
}

// PersistResource mirrors a resource into the durable store, if one is
// configured.
func (m *Memory) PersistResource(ctx context.Context, res *model.Resource) error {
	if m.db == nil {
		return nil
	}
	return m.db.UpsertResource(ctx, res)
}

// PersistCategory mirrors a category into the durable store, if one is
// configured.
func (m *Memory) PersistCategory(ctx context.Context, cat *model.MemoryCategory) error {
	if m.db == nil {
		return nil
	}
	return m.db.UpsertCategory(ctx, cat)
}

// PersistItem mirrors an item into the durable store, if one is configured.
func (m *Memory) PersistItem(ctx context.Context, item *model.MemoryItem) error {
	if m.db == nil {
		return nil
	}
	return m.db.UpsertItem(ctx, item)
}

// PersistRelation mirrors a relation into the durable store, if one is
// configured.
func (m *Memory) PersistRelation(ctx context.Context, rel model.CategoryItem) error {
	if m.db == nil {
		return nil
	}
	return m.db.UpsertRelation(ctx, rel)
}

// LoadAll hydrates the repository from the durable store. It reports false
// when no durable store is configured or reachable.
func (m *Memory) LoadAll(ctx context.Context) (bool, error) {
	if m.db == nil {
		return false, nil
	}
	return m.db.LoadInto(ctx, m.repo)
}

// Health probes the durable tier, establishing its pool if this is the first
// touch, and reports whether the process persists or runs memory-only.
func (m *Memory) Health(ctx context.Context) Health {
	if m.db == nil {
		return Health{
			Status:  StatusDegraded,
			Message: "no durable store configured; running memory-only",
		}
	}
	if !m.db.Ready(ctx) {
		return Health{
			Status:  StatusDegraded,
			Message: "durable store unreachable; running memory-only",
		}
	}
	return Health{Status: StatusHealthy, Persistent: true}
}
