package memstore

import (
	"testing"

	"github.com/keepsake-ai/keepsake/internal/model"
)

func TestCreateResource(t *testing.T) {
	s := New()

	res := s.CreateResource("http://x", "text", "/tmp/x")
	if res.ID == "" {
		t.Fatal("expected non-empty id")
	}
	if res.URL != "http://x" || res.Modality != "text" || res.LocalPath != "/tmp/x" {
		t.Errorf("fields not stored: %+v", res)
	}

	got, ok := s.Resource(res.ID)
	if !ok || got != res {
		t.Error("expected resource retrievable by id")
	}

	other := s.CreateResource("http://y", "image", "/tmp/y")
	if other.ID == res.ID {
		t.Error("expected fresh id per resource")
	}
}

func TestGetOrCreateCategory(t *testing.T) {
	s := New()

	first := s.GetOrCreateCategory("diet", "eating habits", model.Vector{0.1, 0.2})
	second := s.GetOrCreateCategory("diet", "something else", nil)

	if first.ID != second.ID {
		t.Errorf("expected same id for same name, got %s and %s", first.ID, second.ID)
	}
	if second.Description != "eating habits" {
		t.Errorf("existing category must be returned unchanged, got description %q", second.Description)
	}

	_, categories, _, _ := s.Counts()
	if categories != 1 {
		t.Errorf("expected 1 category, got %d", categories)
	}

	other := s.GetOrCreateCategory("travel", "", nil)
	if other.ID == first.ID {
		t.Error("expected distinct id for distinct name")
	}
}

func TestCreateItemNoValidation(t *testing.T) {
	s := New()

	// resource_id is a weak reference; no lookup is performed.
	item := s.CreateItem("no-such-resource", "knowledge", "prefers tea", model.Vector{1, 2, 3})
	if item.ID == "" {
		t.Fatal("expected non-empty id")
	}
	if item.ResourceID != "no-such-resource" {
		t.Errorf("resource id not stored: %q", item.ResourceID)
	}

	got, ok := s.Item(item.ID)
	if !ok || got.Summary != "prefers tea" {
		t.Error("expected item retrievable by id")
	}
}

func TestLinkTwiceKeepsBoth(t *testing.T) {
	s := New()

	s.LinkItemCategory("item-a", "cat-b")
	s.LinkItemCategory("item-a", "cat-b")

	if got := len(s.Relations()); got != 2 {
		t.Errorf("expected 2 relations, got %d", got)
	}
}

func TestUniqueLinks(t *testing.T) {
	s := New(WithUniqueLinks())

	first := s.LinkItemCategory("item-a", "cat-b")
	second := s.LinkItemCategory("item-a", "cat-b")

	if first != second {
		t.Error("expected duplicate link to return the existing relation")
	}
	if got := len(s.Relations()); got != 1 {
		t.Errorf("expected 1 relation, got %d", got)
	}

	s.AddRelation(model.CategoryItem{ItemID: "item-a", CategoryID: "cat-b"})
	if got := len(s.Relations()); got != 1 {
		t.Errorf("expected AddRelation to dedup too, got %d", got)
	}
}

func TestSetCategoryKeepsNameIndex(t *testing.T) {
	s := New()

	loaded := &model.MemoryCategory{ID: "cat-1", Name: "diet", Description: "from disk"}
	s.SetCategory(loaded)

	got := s.GetOrCreateCategory("diet", "fresh", nil)
	if got.ID != "cat-1" {
		t.Errorf("expected loaded category reused, got id %s", got.ID)
	}

	// Renaming via overwrite drops the stale name entry.
	s.SetCategory(&model.MemoryCategory{ID: "cat-1", Name: "nutrition"})
	if _, ok := s.CategoryByName("diet"); ok {
		t.Error("expected old name unindexed after rename")
	}
	if _, ok := s.CategoryByName("nutrition"); !ok {
		t.Error("expected new name indexed")
	}
}

func TestSetOverwritesByID(t *testing.T) {
	s := New()

	res := s.CreateResource("http://x", "text", "/tmp/x")
	s.SetResource(&model.Resource{ID: res.ID, URL: "http://x2", Modality: "text"})

	got, _ := s.Resource(res.ID)
	if got.URL != "http://x2" {
		t.Errorf("expected overwrite by id, got url %q", got.URL)
	}

	resources, _, _, _ := s.Counts()
	if resources != 1 {
		t.Errorf("expected 1 resource, got %d", resources)
	}
}
