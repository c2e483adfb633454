// Package manager owns the in-memory task collection: contents, ordering and
// derived views. It is the single source of truth the presentation layer
// observes through the event bus, and it delegates persistence to a storage
// adapter after every mutation.
//
// The manager is deliberately unsynchronized: operations run to completion on
// the caller's goroutine and event handlers may call back into the manager
// during emission. One manager instance per running application.
package manager

import (
	"errors"

	"tidu/pkg/events"
	"tidu/pkg/logging"
	"tidu/pkg/storage"
	"tidu/pkg/task"
)

// Manager is the collection manager. Construct with New.
type Manager struct {
	store storage.Adapter
	bus   *events.Bus

	tasks     []*task.Task // newest first
	filter    Filter
	search    string
	sortBy    SortField
	sortOrder SortOrder
}

// New creates a manager, restores the collection from the storage adapter
// and announces the load. A failed load degrades to an empty collection.
// Subscribers that care about EventTasksLoaded must subscribe on the bus
// before calling New.
func New(store storage.Adapter, bus *events.Bus) *Manager {
	m := &Manager{
		store:     store,
		bus:       bus,
		filter:    FilterAll,
		sortBy:    SortCreatedAt,
		sortOrder: SortDesc,
	}
	m.loadTasks()
	return m
}

// AddTask creates a task from text and options and inserts it at the front
// of the collection (most recent first). Fails with ValidationError on empty
// text.
func (m *Manager) AddTask(text string, opts task.Options) (*task.Task, error) {
	t, err := task.New(text, opts)
	if err != nil {
		if errors.Is(err, task.ErrEmptyText) {
			return nil, &ValidationError{Reason: "task text cannot be empty"}
		}
		return nil, err
	}

	m.tasks = append([]*task.Task{t}, m.tasks...)
	m.saveTasks()
	m.bus.Emit(EventTaskAdded, t.Record())
	m.emitChanged()
	return t, nil
}

// RemoveTask removes a task by id. Fails with NotFoundError.
func (m *Manager) RemoveTask(id string) (*task.Task, error) {
	i := m.indexOf(id)
	if i < 0 {
		return nil, &NotFoundError{ID: id}
	}
	t := m.tasks[i]
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	m.saveTasks()
	m.bus.Emit(EventTaskRemoved, t.Record())
	m.emitChanged()
	return t, nil
}

// GetTask looks up a task by id. Fails with NotFoundError. The returned
// entity is live; callers mutate it only through UpdateTask.
func (m *Manager) GetTask(id string) (*task.Task, error) {
	if i := m.indexOf(id); i >= 0 {
		return m.tasks[i], nil
	}
	return nil, &NotFoundError{ID: id}
}

// GetAllTasks returns a copy of the collection slice in current in-memory
// order.
func (m *Manager) GetAllTasks() []*task.Task {
	all := make([]*task.Task, len(m.tasks))
	copy(all, m.tasks)
	return all
}

// ToggleTask flips a task's completed state. Fails with NotFoundError.
func (m *Manager) ToggleTask(id string) (*task.Task, error) {
	t, err := m.GetTask(id)
	if err != nil {
		return nil, err
	}
	completed := !t.Completed
	return m.UpdateTask(id, Update{Completed: &completed})
}

// BatchResult reports the per-id outcome of a bulk operation: the tasks
// actually changed plus the ids that were skipped and why.
type BatchResult struct {
	Tasks   []*task.Task
	Skipped []SkippedID
}

// SkippedID records a bulk-operation id that could not be processed.
type SkippedID struct {
	ID  string
	Err error
}

// BulkComplete marks each listed task completed, best-effort. Tasks that are
// already completed or missing are skipped (logged, not raised).
func (m *Manager) BulkComplete(ids []string) BatchResult {
	var result BatchResult
	for _, id := range ids {
		t, err := m.GetTask(id)
		if err != nil {
			logging.Info("manager", "bulk complete: skipping %s: %v", id, err)
			result.Skipped = append(result.Skipped, SkippedID{ID: id, Err: err})
			continue
		}
		if t.Completed {
			continue
		}
		updated, err := m.ToggleTask(id)
		if err != nil {
			logging.Info("manager", "bulk complete: skipping %s: %v", id, err)
			result.Skipped = append(result.Skipped, SkippedID{ID: id, Err: err})
			continue
		}
		result.Tasks = append(result.Tasks, updated)
	}
	return result
}

// BulkDelete removes each listed task, best-effort. Missing ids are skipped
// (logged, not raised).
func (m *Manager) BulkDelete(ids []string) BatchResult {
	var result BatchResult
	for _, id := range ids {
		removed, err := m.RemoveTask(id)
		if err != nil {
			logging.Info("manager", "bulk delete: skipping %s: %v", id, err)
			result.Skipped = append(result.Skipped, SkippedID{ID: id, Err: err})
			continue
		}
		result.Tasks = append(result.Tasks, removed)
	}
	return result
}

// ClearCompleted removes every completed task in one step, preserving the
// relative order of the rest, and persists once.
func (m *Manager) ClearCompleted() []*task.Task {
	var removed []*task.Task
	kept := m.tasks[:0]
	for _, t := range m.tasks {
		if t.Completed {
			removed = append(removed, t)
		} else {
			kept = append(kept, t)
		}
	}
	m.tasks = kept

	m.saveTasks()
	m.bus.Emit(EventCompletedCleared, CompletedClearedPayload{Count: len(removed)})
	m.emitChanged()
	return removed
}

// Reset clears the collection and restores filter, search and sorting to
// their defaults.
func (m *Manager) Reset() {
	m.tasks = nil
	m.filter = FilterAll
	m.search = ""
	m.sortBy = SortCreatedAt
	m.sortOrder = SortDesc

	m.saveTasks()
	m.bus.Emit(EventTasksReset, nil)
	m.emitChanged()
}

// Import modes.
const (
	ImportModeMerge   = "merge"
	ImportModeReplace = "replace"
)

// ImportTasks reconstructs tasks from records and adds them to the
// collection. In merge mode only records with new ids are appended (existing
// ids are dropped, never overwritten); otherwise the whole collection is
// replaced. A repeated id within the incoming batch keeps its first record
// and drops the rest, so ids stay unique in the collection either way. Fails
// with ValidationError on nil data or a malformed record; nothing is mutated
// on failure.
func (m *Manager) ImportTasks(records []task.Record, merge bool) (int, error) {
	if records == nil {
		return 0, &ValidationError{Reason: "import data is not a task list"}
	}

	incoming := make([]*task.Task, 0, len(records))
	for _, r := range records {
		t, err := task.FromRecord(r)
		if err != nil {
			return 0, &ValidationError{Reason: err.Error()}
		}
		incoming = append(incoming, t)
	}

	mode := ImportModeReplace
	imported := 0
	if merge {
		mode = ImportModeMerge
		for _, t := range incoming {
			if m.indexOf(t.ID) >= 0 {
				logging.Debug("manager", "import: dropping duplicate id %s", t.ID)
				continue
			}
			m.tasks = append(m.tasks, t)
			imported++
		}
	} else {
		seen := make(map[string]bool, len(incoming))
		replacement := make([]*task.Task, 0, len(incoming))
		for _, t := range incoming {
			if seen[t.ID] {
				logging.Debug("manager", "import: dropping duplicate id %s", t.ID)
				continue
			}
			seen[t.ID] = true
			replacement = append(replacement, t)
		}
		m.tasks = replacement
		imported = len(replacement)
	}

	m.saveTasks()
	m.bus.Emit(EventTasksImported, TasksImportedPayload{
		Imported: imported,
		Mode:     mode,
		Total:    len(m.tasks),
	})
	m.emitChanged()
	return imported, nil
}

// loadTasks restores the collection from the storage adapter at
// construction. Records that fail reconstruction are skipped with a log
// line; the adapter already guarantees a read failure yields an empty list.
func (m *Manager) loadTasks() {
	records := m.store.LoadTasks()
	for _, r := range records {
		t, err := task.FromRecord(r)
		if err != nil {
			logging.Info("manager", "load: skipping bad record: %v", err)
			continue
		}
		m.tasks = append(m.tasks, t)
	}
	m.bus.Emit(EventTasksLoaded, TasksLoadedPayload{Count: len(m.tasks)})
	m.emitChanged()
}

// saveTasks hands the serialized collection to the storage adapter.
// Fire-and-forget: a write failure is the adapter's to report, the mutation
// that triggered the save has already happened.
func (m *Manager) saveTasks() {
	records := make([]task.Record, len(m.tasks))
	for i, t := range m.tasks {
		records[i] = t.Record()
	}
	if err := m.store.SaveTasks(records); err != nil {
		logging.Info("manager", "persist failed: %v", err)
	}
}

func (m *Manager) emitChanged() {
	m.bus.Emit(EventTasksChanged, TasksChangedPayload{Count: len(m.tasks)})
}

func (m *Manager) indexOf(id string) int {
	for i, t := range m.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
