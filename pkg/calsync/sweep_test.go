package calsync

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDueTable_Sweep(t *testing.T) {
	table, err := NewDueTable(filepath.Join(t.TempDir(), "pending.json"))
	if err != nil {
		t.Fatalf("NewDueTable failed: %v", err)
	}

	now := time.Now()
	table.Update("past", "ev-1", "Already due", now.Add(-time.Hour))
	table.Update("future", "ev-2", "Not yet", now.Add(time.Hour))

	swept := table.Sweep(now)
	if len(swept) != 1 || swept[0].EventID != "ev-1" {
		t.Errorf("Expected only the past entry swept, got %v", swept)
	}
	if _, exists := table.Entries["past"]; exists {
		t.Error("Expected swept entry removed")
	}
	if _, exists := table.Entries["future"]; !exists {
		t.Error("Expected future entry kept")
	}
}

func TestDueTable_UpdateAndRemove(t *testing.T) {
	table, err := NewDueTable(filepath.Join(t.TempDir(), "pending.json"))
	if err != nil {
		t.Fatalf("NewDueTable failed: %v", err)
	}

	due := time.Now().Add(time.Hour)
	table.Update("a", "ev-1", "Task", due)
	if table.Entries["a"].EventID != "ev-1" {
		t.Error("Expected entry recorded")
	}

	// A zero due date means the task no longer belongs in the table.
	table.Update("a", "ev-1", "Task", time.Time{})
	if _, exists := table.Entries["a"]; exists {
		t.Error("Expected entry dropped when due date cleared")
	}
}

func TestDueTable_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.json")
	table, _ := NewDueTable(path)
	due := time.Now().Add(time.Hour).Truncate(time.Second)
	table.Update("a", "ev-1", "Task", due)
	if err := table.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := NewDueTable(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	entry, exists := reloaded.Entries["a"]
	if !exists || entry.Text != "Task" || !entry.Due.Equal(due) {
		t.Errorf("Expected entry to survive reload, got %+v", entry)
	}
}
