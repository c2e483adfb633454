// Package storage persists the task collection and the presentation
// settings. The manager hands over plain records and gets plain records back;
// live entities never cross this boundary.
package storage

import "tidu/pkg/task"

// Adapter is the persistence contract consumed by the collection manager.
// LoadTasks and LoadSettings never fail: any read or parse problem is logged
// by the adapter and an empty value returned, so a corrupt data file degrades
// to an empty collection instead of a startup crash.
type Adapter interface {
	SaveTasks(records []task.Record) error
	LoadTasks() []task.Record
	SaveSettings(settings map[string]any) error
	LoadSettings() map[string]any
}
