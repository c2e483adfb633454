package manager

import (
	"time"

	"tidu/pkg/logging"
	"tidu/pkg/task"
)

// Update is a partial update: nil fields are left untouched. Text, priority,
// due date and completion go through the entity's validated setters; the
// remaining fields are assigned directly. There is no way to express an
// unknown field, which is the point.
type Update struct {
	Text        *string
	Priority    *task.Priority
	Completed   *bool
	DueDate     *time.Time
	ClearDue    bool // clear the due date (DueDate must be nil)
	Category    *string
	Description *string
	Tags        []string // nil leaves tags untouched; non-nil replaces them
}

// UpdateTask applies a partial update to a task. Fails with NotFoundError if
// the id is absent. Individual setter rejections (empty text, unknown
// priority) skip that field and are logged; the rest of the update still
// applies. Emits EventTaskUpdated with old and new snapshots, then
// EventTasksChanged.
func (m *Manager) UpdateTask(id string, u Update) (*task.Task, error) {
	t, err := m.GetTask(id)
	if err != nil {
		return nil, err
	}
	old := t.Record()

	if u.Text != nil {
		if !t.UpdateText(*u.Text) {
			logging.Info("manager", "update %s: rejected empty text", id)
		}
	}
	if u.Priority != nil {
		if !t.SetPriority(*u.Priority) {
			logging.Info("manager", "update %s: rejected priority %q", id, *u.Priority)
		}
	}
	if u.Completed != nil && *u.Completed != t.Completed {
		t.Toggle()
	}
	if u.DueDate != nil {
		if !t.SetDueDate(u.DueDate) {
			logging.Info("manager", "update %s: rejected due date", id)
		}
	} else if u.ClearDue {
		t.SetDueDate(nil)
	}
	if u.Category != nil {
		t.Category = *u.Category
		t.Touch()
	}
	if u.Description != nil {
		t.Description = *u.Description
		t.Touch()
	}
	if u.Tags != nil {
		t.Tags = t.Tags[:0]
		for _, tag := range u.Tags {
			t.AddTag(tag)
		}
		t.Touch()
	}

	m.saveTasks()
	m.bus.Emit(EventTaskUpdated, TaskUpdatedPayload{Old: old, New: t.Record()})
	m.emitChanged()
	return t, nil
}
