package calsync

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"tidu/pkg/logging"
	"tidu/pkg/task"
)

// CalendarClient wraps the Google Calendar API for one target calendar.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	index      *EventIndex
	colors     *ColorCache
}

// NewCalendarClient wires an existing calendar service to an index and color
// cache. index and colors may be nil.
func NewCalendarClient(srv *calendar.Service, calendarID string, idx *EventIndex, colors *ColorCache) *CalendarClient {
	return &CalendarClient{srv: srv, calendarID: calendarID, index: idx, colors: colors}
}

// NewClient authenticates and resolves the named calendar to its id.
// configDir holds the OAuth credentials, cached token and sync state files.
func NewClient(ctx context.Context, calendarName, configDir string, idx *EventIndex, colors *ColorCache) (*CalendarClient, error) {
	scopes := []string{
		calendar.CalendarEventsScope,
		calendar.CalendarReadonlyScope,
	}
	client, err := GetClient(ctx, configDir, scopes)
	if err != nil {
		return nil, err
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create calendar service: %w", err)
	}

	calendarList, err := srv.CalendarList.List().Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve calendar list: %w", err)
	}

	var calendarID string
	for _, item := range calendarList.Items {
		if item.Summary == calendarName {
			calendarID = item.Id
			break
		}
	}
	if calendarID == "" {
		return nil, fmt.Errorf("calendar '%s' not found", calendarName)
	}

	return NewCalendarClient(srv, calendarID, idx, colors), nil
}

// SyncTask creates or patches the calendar event mirroring a task. Existing
// events are located through the local index first, then by extended
// property search.
func (c *CalendarClient) SyncTask(t *task.Task) (*calendar.Event, error) {
	colorID := ""
	if c.colors != nil {
		colorID = c.colors.GetColorID(t.Category)
	}
	event, err := EventForTask(t, colorID)
	if err != nil {
		return nil, err
	}

	var existing *calendar.Event
	if c.index != nil {
		if eventID := c.index.Get(t.ID); eventID != "" {
			existing, err = c.srv.Events.Get(c.calendarID, eventID).Do()
			if err != nil {
				// Stale index entry, fall back to search.
				existing = nil
			}
		}
	}
	if existing == nil {
		existing, err = c.GetEventByTaskID(t.ID)
		if err != nil {
			return nil, fmt.Errorf("error searching for event: %w", err)
		}
	}

	if existing != nil {
		patch, err := EventNeedsUpdate(existing, event)
		if err != nil {
			logging.Info("calsync", "could not compare task %s with its event: %v", t.ID, err)
			return nil, err
		}
		if patch != nil {
			updated, err := c.PatchEvent(existing.Id, patch)
			if err == nil && c.index != nil {
				c.index.Set(t.ID, updated.Id)
			}
			return updated, err
		}
		return existing, nil
	}

	created, err := c.srv.Events.Insert(c.calendarID, event).Do()
	if err == nil && c.index != nil {
		c.index.Set(t.ID, created.Id)
	}
	return created, err
}

// DeleteTask removes the calendar event for a task id, if one exists.
func (c *CalendarClient) DeleteTask(taskID string) error {
	eventID := ""
	if c.index != nil {
		eventID = c.index.Get(taskID)
	}
	if eventID == "" {
		event, err := c.GetEventByTaskID(taskID)
		if err != nil {
			return err
		}
		if event == nil {
			return nil
		}
		eventID = event.Id
	}
	if err := c.srv.Events.Delete(c.calendarID, eventID).Do(); err != nil {
		return err
	}
	if c.index != nil {
		c.index.Remove(taskID)
	}
	return nil
}

// PatchEvent performs a partial update on an event.
func (c *CalendarClient) PatchEvent(eventID string, patch *calendar.Event) (*calendar.Event, error) {
	return c.srv.Events.Patch(c.calendarID, eventID, patch).Do()
}

// ListEvents fetches events starting after timeMin.
func (c *CalendarClient) ListEvents(timeMin time.Time) ([]*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).TimeMin(timeMin.Format(time.RFC3339)).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from calendar: %w", err)
	}
	return events.Items, nil
}

// GetEventByTaskID searches the calendar for the event carrying the task id
// in its private extended properties.
func (c *CalendarClient) GetEventByTaskID(taskID string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", TaskIDProperty, taskID)).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}
