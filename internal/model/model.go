// Package model defines the core semantic-memory entity types.
package model

// Vector is a float64 embedding vector.
type Vector = []float64

// Recognized resource modalities.
const (
	ModalityText  = "text"
	ModalityImage = "image"
)

// MemoryTypeKnowledge is the default memory type, and the type assigned to
// items reloaded from durable storage (the schema does not store the type).
const MemoryTypeKnowledge = "knowledge"

// Resource is an identified external artifact a memory was derived from.
type Resource struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	LocalPath string `json:"local_path"`
	Modality  string `json:"modality"`
	Caption   string `json:"caption,omitempty"`
	Embedding Vector `json:"embedding,omitempty"`
}

// MemoryCategory is a named grouping of memory items. Name acts as a natural
// key: get-or-create semantics guarantee at most one category per name.
type MemoryCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Summary     string `json:"summary,omitempty"`
	Embedding   Vector `json:"embedding,omitempty"`
}

// MemoryItem is a single unit of remembered knowledge.
type MemoryItem struct {
	ID         string `json:"id"`
	ResourceID string `json:"resource_id"`
	MemoryType string `json:"memory_type"`
	Summary    string `json:"summary"`
	Embedding  Vector `json:"embedding,omitempty"`
}

// CategoryItem links one item to one category. Durable rows carry a
// generated id; the in-memory relation is just the pair.
type CategoryItem struct {
	ItemID     string `json:"item_id"`
	CategoryID string `json:"category_id"`
}
