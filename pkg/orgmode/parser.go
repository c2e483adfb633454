// Package orgmode imports tasks from Org-mode files. Only TODO/DONE headings
// are considered; priority cookies, tags, DEADLINE and :ID: properties map
// onto the corresponding task fields.
package orgmode

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"tidu/pkg/logging"
	"tidu/pkg/task"
)

var (
	todoRegex     = regexp.MustCompile(`^\* TODO\s*(?:\[#([A-Z])\])?\s*(.*?)(?:\s+(:(\w+(:\w+)*):))?\s*$`)
	doneRegex     = regexp.MustCompile(`^\* DONE\s*(?:\[#([A-Z])\])?\s*(.*?)(?:\s+(:(\w+(:\w+)*):))?\s*$`)
	deadlineRegex = regexp.MustCompile(`DEADLINE:\s+<(\d{4}-\d{2}-\d{2})(?:\s+[A-Za-z]{3})?(?:\s+(\d{2}:\d{2}))?>`)
	idRegex       = regexp.MustCompile(`:ID:\s+([a-zA-Z0-9-]+)`)
)

func parseFile(filePath string) ([]task.Record, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file, filePath)
}

// ParseFiles parses multiple Org-mode files into task records.
func ParseFiles(filePaths []string) ([]task.Record, error) {
	var all []task.Record
	for _, filePath := range filePaths {
		records, err := parseFile(filePath)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

// Parse reads Org-mode text and returns one record per TODO/DONE heading.
// Headings without an :ID: property get a generated id.
func Parse(r io.Reader, source string) ([]task.Record, error) {
	logging.Debug("orgmode", "parsing %s", source)
	scanner := bufio.NewScanner(r)
	var records []task.Record
	var current *task.Record

	flush := func() {
		if current == nil {
			return
		}
		if current.Text == "" {
			logging.Debug("orgmode", "%s: skipping heading with no text", source)
			current = nil
			return
		}
		if current.ID == "" {
			current.ID = uuid.NewString()
		}
		records = append(records, *current)
		current = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		isTodo := strings.HasPrefix(line, "* TODO")
		isDone := strings.HasPrefix(line, "* DONE")
		if isTodo || isDone {
			flush()
			var matches []string
			if isTodo {
				matches = todoRegex.FindStringSubmatch(line)
			} else {
				matches = doneRegex.FindStringSubmatch(line)
			}
			current = &task.Record{Completed: isDone, Category: "orgmode"}
			if len(matches) > 0 {
				current.Priority = string(cookiePriority(matches[1]))
				current.Text = strings.TrimSpace(matches[2])
				if matches[3] != "" {
					tags := strings.Trim(matches[3], ":")
					current.Tags = strings.Split(tags, ":")
				}
			}
			continue
		}
		if strings.HasPrefix(line, "* ") {
			// A non-task heading ends the current entry.
			flush()
			continue
		}
		if current == nil {
			continue
		}
		if matches := deadlineRegex.FindStringSubmatch(line); len(matches) > 0 {
			if due, ok := parseDeadline(matches[1], matches[2]); ok {
				current.DueDate = &due
			}
		} else if matches := idRegex.FindStringSubmatch(line); len(matches) > 0 {
			current.ID = matches[1]
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// cookiePriority maps Org priority cookies onto task priorities: [#A] is
// high, [#C] is low, everything else (including no cookie) is normal.
func cookiePriority(cookie string) task.Priority {
	switch cookie {
	case "A":
		return task.PriorityHigh
	case "C":
		return task.PriorityLow
	default:
		return task.PriorityNormal
	}
}

func parseDeadline(date, clock string) (time.Time, bool) {
	layout := "2006-01-02"
	value := date
	if clock != "" {
		layout = "2006-01-02 15:04"
		value = date + " " + clock
	}
	due, err := time.ParseInLocation(layout, value, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}

// FilterRecords keeps only records carrying the given tag.
func FilterRecords(records []task.Record, tag string) []task.Record {
	var filtered []task.Record
	for _, r := range records {
		for _, t := range r.Tags {
			if t == tag {
				filtered = append(filtered, r)
				break
			}
		}
	}
	return filtered
}
