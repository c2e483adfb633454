package manager

import (
	"math"
	"sort"
	"strings"
	"time"

	"tidu/pkg/logging"
	"tidu/pkg/task"
)

// Filter selects which tasks the derived view shows.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

func (f Filter) valid() bool {
	return f == FilterAll || f == FilterActive || f == FilterCompleted
}

// SortField selects the comparison key for the derived view.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortPriority  SortField = "priority"
	SortText      SortField = "text"
)

func (s SortField) valid() bool {
	return s == SortCreatedAt || s == SortUpdatedAt || s == SortPriority || s == SortText
}

// SortOrder is ascending or descending.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) valid() bool {
	return o == SortAsc || o == SortDesc
}

// SetFilter switches the status filter. Invalid values are ignored with no
// state change and no event. Emits only EventFilterChanged: view-state
// setters never emit EventTasksChanged because the collection itself did not
// change.
func (m *Manager) SetFilter(f Filter) {
	if !f.valid() {
		logging.Debug("manager", "ignoring invalid filter %q", f)
		return
	}
	m.filter = f
	m.bus.Emit(EventFilterChanged, f)
}

// SetSearchQuery sets the substring search. Emits only EventSearchChanged.
func (m *Manager) SetSearchQuery(q string) {
	m.search = q
	m.bus.Emit(EventSearchChanged, q)
}

// SetSorting sets the sort key and direction. Each component is validated
// independently: a valid field paired with an invalid order still applies
// the field. Emits EventSortingChanged unless both components were invalid.
func (m *Manager) SetSorting(by SortField, order SortOrder) {
	applied := false
	if by.valid() {
		m.sortBy = by
		applied = true
	} else {
		logging.Debug("manager", "ignoring invalid sort field %q", by)
	}
	if order.valid() {
		m.sortOrder = order
		applied = true
	} else {
		logging.Debug("manager", "ignoring invalid sort order %q", order)
	}
	if applied {
		m.bus.Emit(EventSortingChanged, SortingChangedPayload{By: m.sortBy, Order: m.sortOrder})
	}
}

// Filter returns the current status filter.
func (m *Manager) Filter() Filter { return m.filter }

// SearchQuery returns the current search query.
func (m *Manager) SearchQuery() string { return m.search }

// Sorting returns the current sort field and order.
func (m *Manager) Sorting() (SortField, SortOrder) { return m.sortBy, m.sortOrder }

// FilteredTasks returns the derived view: status filter, then search, then
// sort. Pure function of current state — no mutation, no persistence, no
// events.
func (m *Manager) FilteredTasks() []*task.Task {
	view := make([]*task.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		switch m.filter {
		case FilterActive:
			if t.Completed {
				continue
			}
		case FilterCompleted:
			if !t.Completed {
				continue
			}
		}
		if !m.matchesSearch(t) {
			continue
		}
		view = append(view, t)
	}

	sort.SliceStable(view, func(i, j int) bool {
		return m.less(view[i], view[j])
	})
	return view
}

// matchesSearch is a case-insensitive substring match against text,
// description, or any tag.
func (m *Manager) matchesSearch(t *task.Task) bool {
	if m.search == "" {
		return true
	}
	q := strings.ToLower(m.search)
	if strings.Contains(strings.ToLower(t.Text), q) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(tag, q) {
			return true
		}
	}
	return false
}

func (m *Manager) less(a, b *task.Task) bool {
	var cmp int
	switch m.sortBy {
	case SortPriority:
		cmp = a.Priority.Rank() - b.Priority.Rank()
	case SortText:
		cmp = strings.Compare(strings.ToLower(a.Text), strings.ToLower(b.Text))
	case SortUpdatedAt:
		cmp = compareTime(a.UpdatedAt, b.UpdatedAt)
	default:
		cmp = compareTime(a.CreatedAt, b.CreatedAt)
	}
	if m.sortOrder == SortDesc {
		return cmp > 0
	}
	return cmp < 0
}

func compareTime(a, b time.Time) int {
	if a.Before(b) {
		return -1
	}
	if a.After(b) {
		return 1
	}
	return 0
}

// Stats are the derived collection counts.
type Stats struct {
	Total          int
	Completed      int
	Active         int
	Overdue        int
	CompletionRate int // rounded percentage, 0 when the collection is empty
}

// Stats computes the derived counts. Pure query.
func (m *Manager) Stats() Stats {
	s := Stats{Total: len(m.tasks)}
	for _, t := range m.tasks {
		if t.Completed {
			s.Completed++
		}
		if t.IsOverdue() {
			s.Overdue++
		}
	}
	s.Active = s.Total - s.Completed
	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	return s
}
