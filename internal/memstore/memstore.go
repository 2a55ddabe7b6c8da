// Package memstore holds the in-process working set of semantic-memory
// entities. It is the fast tier: every read, and the create half of every
// write, happens here synchronously and without network I/O.
package memstore

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/keepsake-ai/keepsake/internal/model"
)

// Store owns the entity maps and the relation list for the life of the
// process. Safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	entropy     *rand.Rand
	resources   map[string]*model.Resource
	categories  map[string]*model.MemoryCategory
	byName      map[string]string // category name -> id
	items       map[string]*model.MemoryItem
	relations   []model.CategoryItem
	uniqueLinks bool
}

// Option configures a Store.
type Option func(*Store)

// WithUniqueLinks makes linking an (item, category) pair idempotent: a
// duplicate link returns the existing relation instead of appending another.
func WithUniqueLinks() Option {
	return func(s *Store) { s.uniqueLinks = true }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		entropy:    rand.New(rand.NewSource(time.Now().UnixNano())),
		resources:  make(map[string]*model.Resource),
		categories: make(map[string]*model.MemoryCategory),
		byName:     make(map[string]string),
		items:      make(map[string]*model.MemoryItem),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newID must be called with mu held; the entropy source is not thread-safe.
func (s *Store) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// CreateResource allocates a fresh id and stores a new resource.
func (s *Store) CreateResource(url, modality, localPath string) *model.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := &model.Resource{
		ID:        s.newID(),
		URL:       url,
		Modality:  modality,
		LocalPath: localPath,
	}
	s.resources[res.ID] = res
	return res
}

// GetOrCreateCategory returns the category with the given name, creating it
// if absent. An existing category is returned unchanged; the incoming
// description and embedding are discarded for an existing match.
func (s *Store) GetOrCreateCategory(name, description string, embedding model.Vector) *model.MemoryCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byName[name]; ok {
		return s.categories[id]
	}
	cat := &model.MemoryCategory{
		ID:          s.newID(),
		Name:        name,
		Description: description,
		Embedding:   embedding,
	}
	s.categories[cat.ID] = cat
	s.byName[cat.Name] = cat.ID
	return cat
}

// CreateItem always creates a new item. The resource id is a weak reference;
// it is not checked against the resource map.
func (s *Store) CreateItem(resourceID, memoryType, summary string, embedding model.Vector) *model.MemoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := &model.MemoryItem{
		ID:         s.newID(),
		ResourceID: resourceID,
		MemoryType: memoryType,
		Summary:    summary,
		Embedding:  embedding,
	}
	s.items[item.ID] = item
	return item
}

// LinkItemCategory appends a relation between an item and a category.
// Referenced ids are not validated. Without WithUniqueLinks, linking the
// same pair twice records two relations.
func (s *Store) LinkItemCategory(itemID, categoryID string) model.CategoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	rel := model.CategoryItem{ItemID: itemID, CategoryID: categoryID}
	if s.uniqueLinks && s.hasRelation(rel) {
		return rel
	}
	s.relations = append(s.relations, rel)
	return rel
}

// hasRelation must be called with mu held.
func (s *Store) hasRelation(rel model.CategoryItem) bool {
	for _, r := range s.relations {
		if r == rel {
			return true
		}
	}
	return false
}

// SetResource stores a resource under its own id, overwriting any existing
// entry. Used by durable-store reload.
func (s *Store) SetResource(res *model.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[res.ID] = res
}

// SetCategory stores a category under its own id and keeps the name index
// consistent. Used by durable-store reload.
func (s *Store) SetCategory(cat *model.MemoryCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.categories[cat.ID]; ok && old.Name != cat.Name {
		delete(s.byName, old.Name)
	}
	s.categories[cat.ID] = cat
	s.byName[cat.Name] = cat.ID
}

// SetItem stores an item under its own id, overwriting any existing entry.
// Used by durable-store reload.
func (s *Store) SetItem(item *model.MemoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
}

// AddRelation appends a reloaded relation, honoring the unique-links option.
func (s *Store) AddRelation(rel model.CategoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uniqueLinks && s.hasRelation(rel) {
		return
	}
	s.relations = append(s.relations, rel)
}

// Resource returns the resource with the given id.
func (s *Store) Resource(id string) (*model.Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.resources[id]
	return res, ok
}

// Category returns the category with the given id.
func (s *Store) Category(id string) (*model.MemoryCategory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cat, ok := s.categories[id]
	return cat, ok
}

// CategoryByName returns the category with the given name.
func (s *Store) CategoryByName(name string) (*model.MemoryCategory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.categories[id], true
}

// Item returns the item with the given id.
func (s *Store) Item(id string) (*model.MemoryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok
}

// Categories returns all categories in unspecified order.
func (s *Store) Categories() []*model.MemoryCategory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cats := make([]*model.MemoryCategory, 0, len(s.categories))
	for _, c := range s.categories {
		cats = append(cats, c)
	}
	return cats
}

// Relations returns a copy of the relation list.
func (s *Store) Relations() []model.CategoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rels := make([]model.CategoryItem, len(s.relations))
	copy(rels, s.relations)
	return rels
}

// Counts reports the number of entities per kind.
func (s *Store) Counts() (resources, categories, items, relations int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.resources), len(s.categories), len(s.items), len(s.relations)
}
