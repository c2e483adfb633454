package calsync

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Entry is a pending task watched for its due date passing.
type Entry struct {
	EventID string    `json:"event_id"`
	Text    string    `json:"text"`
	Due     time.Time `json:"due"`
}

// DueTable tracks pending tasks with future due dates between syncs. Sweep
// surfaces the ones whose due date has passed so their calendar events can
// be re-rendered with the overdue marker.
type DueTable struct {
	Entries map[string]Entry `json:"entries"`
	Path    string           `json:"-"`
	dirty   bool
}

// NewDueTable loads the table stored at path, or starts empty.
func NewDueTable(path string) (*DueTable, error) {
	t := &DueTable{
		Path:    path,
		Entries: make(map[string]Entry),
	}
	if _, err := os.Stat(path); err == nil {
		if err := t.Load(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *DueTable) Load() error {
	f, err := os.Open(t.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(t)
}

func (t *DueTable) Save() error {
	if !t.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(t.Path), 0700); err != nil {
		return err
	}
	f, err := os.Create(t.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	err = encoder.Encode(t)
	if err == nil {
		t.dirty = false
	}
	return err
}

// Update records a task's due date, or drops the task when it no longer has
// one.
func (t *DueTable) Update(taskID, eventID, text string, due time.Time) {
	if due.IsZero() {
		t.Remove(taskID)
		return
	}
	old, exists := t.Entries[taskID]
	if !exists || !old.Due.Equal(due) || old.EventID != eventID || old.Text != text {
		t.Entries[taskID] = Entry{
			EventID: eventID,
			Text:    text,
			Due:     due,
		}
		t.dirty = true
	}
}

func (t *DueTable) Remove(taskID string) {
	if _, exists := t.Entries[taskID]; exists {
		delete(t.Entries, taskID)
		t.dirty = true
	}
}

// Sweep removes and returns the entries whose due date is before now.
func (t *DueTable) Sweep(now time.Time) []Entry {
	var swept []Entry
	for taskID, entry := range t.Entries {
		if entry.Due.Before(now) {
			swept = append(swept, entry)
			delete(t.Entries, taskID)
			t.dirty = true
		}
	}
	return swept
}
