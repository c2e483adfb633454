// Package calsync mirrors tasks with due dates onto a Google Calendar. Each
// task becomes a 30-minute event starting at its due time, tagged with the
// task id in a private extended property so later syncs can find it again.
package calsync

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"tidu/pkg/task"
)

// TaskIDProperty is the private extended property holding the task id.
const TaskIDProperty = "tidu_id"

const eventDuration = 30 * time.Minute

// EventForTask converts a task into its calendar event. Tasks without a due
// date have no place on a calendar and are rejected. colorID may be empty.
func EventForTask(t *task.Task, colorID string) (*calendar.Event, error) {
	if t == nil {
		return nil, fmt.Errorf("could not convert nil task")
	}
	if t.DueDate == nil || t.DueDate.IsZero() {
		return nil, fmt.Errorf("task has no due date: %s", t.ID)
	}

	prefix := ""
	if t.Completed {
		prefix = "✓"
	} else if t.IsOverdue() {
		prefix = "!"
	}
	summary := t.Text
	if prefix != "" {
		summary = fmt.Sprintf("%s %s", prefix, t.Text)
	}

	start := *t.DueDate
	end := start.Add(eventDuration)

	var desc strings.Builder
	if len(t.Tags) > 0 {
		for _, tag := range t.Tags {
			desc.WriteString(fmt.Sprintf("#%s ", tag))
		}
		desc.WriteString("\n\n")
	}
	status := "pending"
	if t.Completed {
		status = "completed"
	}
	desc.WriteString(fmt.Sprintf("Status: %s\n", status))
	if t.Category != "" && t.Category != task.DefaultCategory {
		desc.WriteString(fmt.Sprintf("Category: %s\n", t.Category))
	}
	desc.WriteString(fmt.Sprintf("ID: %s\n", t.ID))
	if t.Description != "" {
		desc.WriteString("\nNotes:\n")
		for _, line := range strings.Split(t.Description, "\n") {
			desc.WriteString(fmt.Sprintf("‣ %s\n", line))
		}
	}

	return &calendar.Event{
		Summary: summary,
		ColorId: colorID,
		Start: &calendar.EventDateTime{
			DateTime: start.UTC().Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: end.UTC().Format(time.RFC3339),
		},
		Description: desc.String(),
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				TaskIDProperty: t.ID,
			},
		},
	}, nil
}

// EventNeedsUpdate compares an existing calendar event with the freshly
// converted target and returns a minimal patch, or nil when they already
// agree.
func EventNeedsUpdate(existing, target *calendar.Event) (*calendar.Event, error) {
	patch := &calendar.Event{}
	needsUpdate := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		needsUpdate = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		needsUpdate = true
	}
	if existing.ColorId != target.ColorId && target.ColorId != "" {
		patch.ColorId = target.ColorId
		needsUpdate = true
	}

	existingStart, err := time.Parse(time.RFC3339, existing.Start.DateTime)
	if err != nil {
		return nil, err
	}
	targetStart, err := time.Parse(time.RFC3339, target.Start.DateTime)
	if err != nil {
		return nil, err
	}
	existingEnd, err := time.Parse(time.RFC3339, existing.End.DateTime)
	if err != nil {
		return nil, err
	}
	targetEnd, err := time.Parse(time.RFC3339, target.End.DateTime)
	if err != nil {
		return nil, err
	}
	if !existingStart.Equal(targetStart) || !existingEnd.Equal(targetEnd) {
		patch.Start = target.Start
		patch.End = target.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch, nil
	}
	return nil, nil
}

var descIDRegex = regexp.MustCompile(`ID: ([a-zA-Z0-9\-]+)`)

// TaskIDFromEvent recovers the task id from an event, preferring the
// extended property and falling back to the description.
func TaskIDFromEvent(event *calendar.Event) (string, bool) {
	if event.ExtendedProperties != nil {
		if id, ok := event.ExtendedProperties.Private[TaskIDProperty]; ok && id != "" {
			return id, true
		}
	}
	matches := descIDRegex.FindStringSubmatch(event.Description)
	if len(matches) > 1 {
		return matches[1], true
	}
	return "", false
}
