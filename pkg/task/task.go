package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityNormal || p == PriorityHigh
}

// Rank maps a priority to its sort weight. Unknown values rank as normal.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// DefaultCategory is assigned to tasks created without one.
const DefaultCategory = "default"

// ErrEmptyText is returned when a task would end up with no text.
var ErrEmptyText = errors.New("task text is empty")

// Task is a single to-do item. The ID is immutable after creation; all other
// fields are mutated through the setter methods so the entity invariants hold
// (non-empty text, normalized tags, CompletedAt tracking Completed, UpdatedAt
// advancing on every mutation).
type Task struct {
	ID          string
	Text        string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	Priority    Priority
	Category    string
	Tags        []string
	DueDate     *time.Time
	Description string
}

// Record is the persisted form of a Task. Field names are the wire format
// shared with the storage adapter and the export envelope, so they must not
// change.
type Record struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt"`
	Priority    string     `json:"priority"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"dueDate"`
	Description string     `json:"description"`
}

// Options carries the optional fields accepted at task creation.
type Options struct {
	ID          string
	Priority    Priority
	Category    string
	Tags        []string
	DueDate     *time.Time
	Description string
	Completed   bool
}

// New creates a task from trimmed text and optional overrides. Unsupplied
// fields take their documented defaults. The ID is generated unless opts
// provides one (used when reconstructing from storage).
func New(text string, opts Options) (*Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	now := time.Now()
	t := &Task{
		ID:          opts.ID,
		Text:        text,
		CreatedAt:   now,
		UpdatedAt:   now,
		Priority:    PriorityNormal,
		Category:    DefaultCategory,
		Tags:        []string{},
		Description: opts.Description,
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if opts.Priority != "" && opts.Priority.Valid() {
		t.Priority = opts.Priority
	}
	if opts.Category != "" {
		t.Category = opts.Category
	}
	for _, tag := range opts.Tags {
		t.addTag(tag)
	}
	if opts.DueDate != nil && !opts.DueDate.IsZero() {
		due := opts.DueDate.UTC()
		t.DueDate = &due
	}
	if opts.Completed {
		t.Completed = true
		done := now
		t.CompletedAt = &done
	}
	return t, nil
}

// Toggle flips the completed state, maintaining CompletedAt. Always succeeds.
func (t *Task) Toggle() bool {
	t.Completed = !t.Completed
	if t.Completed {
		done := time.Now()
		t.CompletedAt = &done
	} else {
		t.CompletedAt = nil
	}
	t.touch()
	return true
}

// UpdateText replaces the task text. Fails without mutating if the new text
// is empty after trimming.
func (t *Task) UpdateText(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	t.Text = text
	t.touch()
	return true
}

// SetPriority sets the priority. Fails on unknown values.
func (t *Task) SetPriority(p Priority) bool {
	if !p.Valid() {
		return false
	}
	t.Priority = p
	t.touch()
	return true
}

// AddTag adds a normalized (trimmed, lowercased) tag. Fails if the normalized
// tag is empty or already present.
func (t *Task) AddTag(tag string) bool {
	if !t.addTag(tag) {
		return false
	}
	t.touch()
	return true
}

func (t *Task) addTag(tag string) bool {
	tag = NormalizeTag(tag)
	if tag == "" {
		return false
	}
	for _, existing := range t.Tags {
		if existing == tag {
			return false
		}
	}
	t.Tags = append(t.Tags, tag)
	return true
}

// RemoveTag removes a tag, matching by normalized form. Fails if absent.
func (t *Task) RemoveTag(tag string) bool {
	tag = NormalizeTag(tag)
	for i, existing := range t.Tags {
		if existing == tag {
			t.Tags = append(t.Tags[:i], t.Tags[i+1:]...)
			t.touch()
			return true
		}
	}
	return false
}

// SetDueDate stores the due date in UTC, or clears it when d is nil. A zero
// time is rejected without mutation.
func (t *Task) SetDueDate(d *time.Time) bool {
	if d == nil {
		t.DueDate = nil
		t.touch()
		return true
	}
	if d.IsZero() {
		return false
	}
	due := d.UTC()
	t.DueDate = &due
	t.touch()
	return true
}

// IsOverdue reports whether the task has a due date in the past and is not
// completed. Pure query.
func (t *Task) IsOverdue() bool {
	return t.DueDate != nil && !t.Completed && t.DueDate.Before(time.Now())
}

// Age returns whole days (rounded up) since the task was created.
func (t *Task) Age() int {
	return int(math.Ceil(time.Since(t.CreatedAt).Hours() / 24))
}

// Touch refreshes UpdatedAt after a direct field assignment (category,
// description, tag replacement) made by the collection manager.
func (t *Task) Touch() {
	t.touch()
}

// touch refreshes UpdatedAt, keeping it monotonically non-decreasing.
func (t *Task) touch() {
	if now := time.Now(); now.After(t.UpdatedAt) {
		t.UpdatedAt = now
	}
}

// Record returns the plain persisted form of the task. The tag slice is
// copied so storage never aliases the live entity.
func (t *Task) Record() Record {
	tags := make([]string, len(t.Tags))
	copy(tags, t.Tags)
	return Record{
		ID:          t.ID,
		Text:        t.Text,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: copyTime(t.CompletedAt),
		Priority:    string(t.Priority),
		Category:    t.Category,
		Tags:        tags,
		DueDate:     copyTime(t.DueDate),
		Description: t.Description,
	}
}

// FromRecord reconstructs a task from its persisted form. A record without
// text is malformed and rejected. Timestamps are taken as stored (zero ones
// are backfilled); tags are re-normalized so the no-duplicates invariant
// holds even for hand-edited files.
func FromRecord(r Record) (*Task, error) {
	if strings.TrimSpace(r.Text) == "" {
		return nil, fmt.Errorf("record %q: %w", r.ID, ErrEmptyText)
	}

	t := &Task{
		ID:          r.ID,
		Text:        strings.TrimSpace(r.Text),
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		CompletedAt: copyTime(r.CompletedAt),
		Priority:    Priority(r.Priority),
		Category:    r.Category,
		Tags:        []string{},
		DueDate:     copyTime(r.DueDate),
		Description: r.Description,
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	if t.Priority == "" {
		t.Priority = PriorityNormal
	}
	if t.Category == "" {
		t.Category = DefaultCategory
	}
	for _, tag := range r.Tags {
		t.addTag(tag)
	}
	if t.Completed && t.CompletedAt == nil {
		done := t.UpdatedAt
		t.CompletedAt = &done
	}
	if !t.Completed {
		t.CompletedAt = nil
	}
	return t, nil
}

// ToJSON serializes the task to its wire form.
func (t *Task) ToJSON() ([]byte, error) {
	return json.Marshal(t.Record())
}

// FromJSON reconstructs a task from its wire form.
func FromJSON(data []byte) (*Task, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode task json: %w", err)
	}
	return FromRecord(r)
}

// NormalizeTag trims and lowercases a tag.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
