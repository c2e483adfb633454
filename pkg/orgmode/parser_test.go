package orgmode

import (
	"strings"
	"testing"
	"time"

	"tidu/pkg/task"
)

const sampleOrg = `#+TITLE: Inbox

* TODO [#A] Call dentist :health:phone:
:PROPERTIES:
:ID: 11111111-2222-3333-4444-555555555555
:END:
DEADLINE: <2026-09-10 Thu 09:00>

* DONE [#C] Water plants
* TODO Buy milk
DEADLINE: <2026-09-12>

* Notes
Not a task.
`

func TestParse(t *testing.T) {
	records, err := Parse(strings.NewReader(sampleOrg), "inbox.org")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	dentist := records[0]
	if dentist.Text != "Call dentist" {
		t.Errorf("Expected text 'Call dentist', got '%s'", dentist.Text)
	}
	if dentist.ID != "11111111-2222-3333-4444-555555555555" {
		t.Errorf("Expected id from :ID: property, got '%s'", dentist.ID)
	}
	if dentist.Priority != string(task.PriorityHigh) {
		t.Errorf("Expected [#A] to map to high, got '%s'", dentist.Priority)
	}
	if len(dentist.Tags) != 2 || dentist.Tags[0] != "health" || dentist.Tags[1] != "phone" {
		t.Errorf("Expected tags [health phone], got %v", dentist.Tags)
	}
	want := time.Date(2026, 9, 10, 9, 0, 0, 0, time.Local)
	if dentist.DueDate == nil || !dentist.DueDate.Equal(want) {
		t.Errorf("Expected deadline %v, got %v", want, dentist.DueDate)
	}

	plants := records[1]
	if !plants.Completed {
		t.Error("Expected DONE heading to be completed")
	}
	if plants.Priority != string(task.PriorityLow) {
		t.Errorf("Expected [#C] to map to low, got '%s'", plants.Priority)
	}
	if plants.ID == "" {
		t.Error("Expected a generated id")
	}

	milk := records[2]
	if milk.Completed || milk.Priority != string(task.PriorityNormal) {
		t.Errorf("Expected pending normal task, got %+v", milk)
	}
	wantDay := time.Date(2026, 9, 12, 0, 0, 0, 0, time.Local)
	if milk.DueDate == nil || !milk.DueDate.Equal(wantDay) {
		t.Errorf("Expected date-only deadline %v, got %v", wantDay, milk.DueDate)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	records, err := Parse(strings.NewReader("just prose\n"), "prose.org")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestFilterRecords(t *testing.T) {
	records := []task.Record{
		{ID: "a", Text: "A", Tags: []string{"health"}},
		{ID: "b", Text: "B", Tags: []string{"garden"}},
	}
	filtered := FilterRecords(records, "health")
	if len(filtered) != 1 || filtered[0].ID != "a" {
		t.Errorf("Expected only the tagged record, got %v", filtered)
	}
}
