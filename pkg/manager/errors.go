package manager

import "fmt"

// ValidationError reports input the manager refuses to act on: empty task
// text on add, or import data that is not a usable sequence.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// NotFoundError reports an operation referencing a task id that is not in
// the collection.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.ID)
}
