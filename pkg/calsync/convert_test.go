package calsync

import (
	"strings"
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"

	"tidu/pkg/task"
)

func dueTask(t *testing.T, text string, due time.Time) *task.Task {
	t.Helper()
	tk, err := task.New(text, task.Options{DueDate: &due})
	if err != nil {
		t.Fatalf("task.New failed: %v", err)
	}
	return tk
}

func TestEventForTask(t *testing.T) {
	due := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)
	tk, _ := task.New("Call dentist", task.Options{
		DueDate:     &due,
		Category:    "health",
		Tags:        []string{"phone"},
		Description: "ask about crown",
	})

	event, err := EventForTask(tk, "3")
	if err != nil {
		t.Fatalf("EventForTask failed: %v", err)
	}
	if event.Summary != "Call dentist" {
		t.Errorf("Expected plain summary, got '%s'", event.Summary)
	}
	if event.ColorId != "3" {
		t.Errorf("Expected color 3, got '%s'", event.ColorId)
	}
	if event.Start.DateTime != due.Format(time.RFC3339) {
		t.Errorf("Expected start at due time, got %s", event.Start.DateTime)
	}
	if event.End.DateTime != due.Add(30*time.Minute).Format(time.RFC3339) {
		t.Errorf("Expected 30-minute slot, got %s", event.End.DateTime)
	}
	if event.ExtendedProperties.Private[TaskIDProperty] != tk.ID {
		t.Error("Expected task id in extended properties")
	}
	for _, want := range []string{"#phone", "Status: pending", "Category: health", "ID: " + tk.ID, "‣ ask about crown"} {
		if !strings.Contains(event.Description, want) {
			t.Errorf("Expected description to contain %q:\n%s", want, event.Description)
		}
	}
}

func TestEventForTask_Prefixes(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)

	overdue := dueTask(t, "Late", past)
	event, err := EventForTask(overdue, "")
	if err != nil {
		t.Fatalf("EventForTask failed: %v", err)
	}
	if event.Summary != "! Late" {
		t.Errorf("Expected overdue marker, got '%s'", event.Summary)
	}

	done := dueTask(t, "Finished", future)
	done.Toggle()
	event, err = EventForTask(done, "")
	if err != nil {
		t.Fatalf("EventForTask failed: %v", err)
	}
	if event.Summary != "✓ Finished" {
		t.Errorf("Expected completed marker, got '%s'", event.Summary)
	}
}

func TestEventForTask_RequiresDueDate(t *testing.T) {
	tk, _ := task.New("No due", task.Options{})
	if _, err := EventForTask(tk, ""); err == nil {
		t.Error("Expected error for task without due date")
	}
	if _, err := EventForTask(nil, ""); err == nil {
		t.Error("Expected error for nil task")
	}
}

func TestEventNeedsUpdate(t *testing.T) {
	due := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	tk := dueTask(t, "Stable", due)
	target, _ := EventForTask(tk, "")

	same := *target
	patch, err := EventNeedsUpdate(&same, target)
	if err != nil {
		t.Fatalf("EventNeedsUpdate failed: %v", err)
	}
	if patch != nil {
		t.Errorf("Expected nil patch for identical events, got %+v", patch)
	}

	existing := *target
	existing.Summary = "Old title"
	existing.Start = &calendar.EventDateTime{DateTime: "2026-09-09T09:00:00Z"}
	existing.End = &calendar.EventDateTime{DateTime: "2026-09-09T09:30:00Z"}
	patch, err = EventNeedsUpdate(&existing, target)
	if err != nil {
		t.Fatalf("EventNeedsUpdate failed: %v", err)
	}
	if patch == nil {
		t.Fatal("Expected a patch")
	}
	if patch.Summary != target.Summary {
		t.Errorf("Expected summary in patch, got '%s'", patch.Summary)
	}
	if patch.Start == nil || patch.Start.DateTime != target.Start.DateTime {
		t.Error("Expected start time in patch")
	}
	if patch.Description != "" {
		t.Error("Expected unchanged description left out of patch")
	}
}

func TestTaskIDFromEvent(t *testing.T) {
	event := &calendar.Event{
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{TaskIDProperty: "abc-123"},
		},
	}
	if id, ok := TaskIDFromEvent(event); !ok || id != "abc-123" {
		t.Errorf("Expected id from extended property, got %q %v", id, ok)
	}

	event = &calendar.Event{Description: "Status: pending\nID: def-456\n"}
	if id, ok := TaskIDFromEvent(event); !ok || id != "def-456" {
		t.Errorf("Expected id from description fallback, got %q %v", id, ok)
	}

	if _, ok := TaskIDFromEvent(&calendar.Event{}); ok {
		t.Error("Expected no id for bare event")
	}
}
