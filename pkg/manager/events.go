package manager

import "tidu/pkg/task"

// Event channel names. Every mutation of the visible collection emits its
// specific event immediately followed by EventTasksChanged; view-state
// setters (filter/search/sorting) emit only their own event. Subscribers
// treat EventTasksChanged as "re-read derived state" and the specific events
// as the delta.
const (
	EventTaskAdded        = "taskAdded"
	EventTaskRemoved      = "taskRemoved"
	EventTaskUpdated      = "taskUpdated"
	EventTasksChanged     = "tasksChanged"
	EventFilterChanged    = "filterChanged"
	EventSearchChanged    = "searchChanged"
	EventSortingChanged   = "sortingChanged"
	EventCompletedCleared = "completedCleared"
	EventTasksReset       = "tasksReset"
	EventTasksImported    = "tasksImported"
	EventTasksLoaded      = "tasksLoaded"
)

// TaskUpdatedPayload carries the before and after snapshots of an update.
type TaskUpdatedPayload struct {
	Old task.Record
	New task.Record
}

// TasksChangedPayload carries the collection size after a mutation.
type TasksChangedPayload struct {
	Count int
}

// SortingChangedPayload carries the sorting state after SetSorting.
type SortingChangedPayload struct {
	By    SortField
	Order SortOrder
}

// CompletedClearedPayload carries the number of tasks removed by
// ClearCompleted.
type CompletedClearedPayload struct {
	Count int
}

// TasksImportedPayload describes a completed import.
type TasksImportedPayload struct {
	Imported int
	Mode     string
	Total    int
}

// TasksLoadedPayload carries the number of tasks restored from storage.
type TasksLoadedPayload struct {
	Count int
}
