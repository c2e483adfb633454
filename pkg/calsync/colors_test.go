package calsync

import (
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func TestColorCache_Assignment(t *testing.T) {
	cache, err := NewColorCache(filepath.Join(t.TempDir(), "colors.json"))
	if err != nil {
		t.Fatalf("NewColorCache failed: %v", err)
	}

	if got := cache.GetColorID("default"); got != "14" {
		t.Errorf("Expected gray for the default category, got %s", got)
	}
	if got := cache.GetColorID(""); got != "14" {
		t.Errorf("Expected gray for no category, got %s", got)
	}

	first := cache.GetColorID("work")
	second := cache.GetColorID("home")
	if first == second {
		t.Errorf("Expected distinct colors, got %s twice", first)
	}
	if again := cache.GetColorID("work"); again != first {
		t.Errorf("Expected stable assignment, got %s then %s", first, again)
	}
}

func TestColorCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache, _ := NewColorCache(filepath.Join(t.TempDir(), "colors.json"))

	for i := 1; i <= 11; i++ {
		cache.GetColorID("cat" + strconv.Itoa(i))
	}
	// Make cat1 the stalest entry.
	cache.Categories["cat1"].LastModified = time.Now().Add(-time.Hour)
	recycled := cache.Categories["cat1"].ColorID

	got := cache.GetColorID("cat12")
	if got != recycled {
		t.Errorf("Expected recycled color %s, got %s", recycled, got)
	}
	if _, exists := cache.Categories["cat1"]; exists {
		t.Error("Expected stalest category evicted")
	}
}

func TestColorCache_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors.json")
	cache, _ := NewColorCache(path)
	assigned := cache.GetColorID("work")
	if err := cache.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := NewColorCache(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := reloaded.GetColorID("work"); got != assigned {
		t.Errorf("Expected %s after reload, got %s", assigned, got)
	}
}
