package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"tidu/pkg/logging"
	"tidu/pkg/task"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"

	settingsFile = "settings.json"
)

// FileStore keeps the whole task list in a single tasks.json (or tasks.yaml)
// file under the data directory, plus a settings.json beside it.
type FileStore struct {
	dir    string
	format string
	mu     sync.Mutex
}

// NewFileStore creates a file store rooted at dir. Format is "json" or
// "yaml".
func NewFileStore(dir, format string) (*FileStore, error) {
	switch format {
	case FormatJSON, FormatYAML:
	case "":
		format = FormatJSON
	default:
		return nil, fmt.Errorf("unsupported storage format: %s (want json or yaml)", format)
	}
	return &FileStore{dir: dir, format: format}, nil
}

func (s *FileStore) tasksPath() string {
	return filepath.Join(s.dir, "tasks."+s.format)
}

// SaveTasks writes the full task list, replacing the previous snapshot.
func (s *FileStore) SaveTasks(records []task.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if records == nil {
		records = []task.Record{}
	}

	var data []byte
	var err error
	if s.format == FormatYAML {
		data, err = yaml.Marshal(records)
	} else {
		data, err = json.MarshalIndent(records, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(s.tasksPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write tasks file: %w", err)
	}
	return nil
}

// LoadTasks reads the stored task list. Missing or unreadable files yield an
// empty list; the failure is logged, never raised.
func (s *FileStore) LoadTasks() []task.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.tasksPath())
	if os.IsNotExist(err) {
		return []task.Record{}
	}
	if err != nil {
		logging.Info("storage", "could not read %s: %v", s.tasksPath(), err)
		return []task.Record{}
	}

	var records []task.Record
	if s.format == FormatYAML {
		err = yaml.Unmarshal(data, &records)
	} else {
		err = json.Unmarshal(data, &records)
	}
	if err != nil {
		logging.Info("storage", "could not parse %s: %v", s.tasksPath(), err)
		return []task.Record{}
	}
	if records == nil {
		records = []task.Record{}
	}
	return records
}

// SaveSettings persists the opaque settings map. Settings are a pass-through:
// nothing in this package interprets them.
func (s *FileStore) SaveSettings(settings map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if settings == nil {
		settings = map[string]any{}
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, settingsFile), data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// LoadSettings reads the stored settings map, empty on any failure.
func (s *FileStore) LoadSettings() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, settingsFile))
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Info("storage", "could not read settings: %v", err)
		}
		return map[string]any{}
	}
	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		logging.Info("storage", "could not parse settings: %v", err)
		return map[string]any{}
	}
	if settings == nil {
		settings = map[string]any{}
	}
	return settings
}
