package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"tidu/pkg/logging"
	"tidu/pkg/task"
)

const (
	kvTasksKey    = "tasks"
	kvSettingsKey = "settings"
)

// SQLiteStore implements the Adapter contract on top of a single key-value
// table, mirroring the whole-snapshot semantics of the file store. WAL and a
// busy timeout make concurrent CLI invocations safe.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) put(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *SQLiteStore) get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return value, err
}

// SaveTasks stores the full task list as one serialized snapshot.
func (s *SQLiteStore) SaveTasks(records []task.Record) error {
	if records == nil {
		records = []task.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}
	if err := s.put(kvTasksKey, data); err != nil {
		return fmt.Errorf("failed to store tasks: %w", err)
	}
	return nil
}

// LoadTasks reads the stored task list, empty on any failure.
func (s *SQLiteStore) LoadTasks() []task.Record {
	data, err := s.get(kvTasksKey)
	if err != nil {
		logging.Info("storage", "could not read tasks from database: %v", err)
		return []task.Record{}
	}
	if data == nil {
		return []task.Record{}
	}
	var records []task.Record
	if err := json.Unmarshal(data, &records); err != nil {
		logging.Info("storage", "could not parse stored tasks: %v", err)
		return []task.Record{}
	}
	if records == nil {
		records = []task.Record{}
	}
	return records
}

// SaveSettings stores the opaque settings map.
func (s *SQLiteStore) SaveSettings(settings map[string]any) error {
	if settings == nil {
		settings = map[string]any{}
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := s.put(kvSettingsKey, data); err != nil {
		return fmt.Errorf("failed to store settings: %w", err)
	}
	return nil
}

// LoadSettings reads the stored settings map, empty on any failure.
func (s *SQLiteStore) LoadSettings() map[string]any {
	data, err := s.get(kvSettingsKey)
	if err != nil {
		logging.Info("storage", "could not read settings from database: %v", err)
		return map[string]any{}
	}
	if data == nil {
		return map[string]any{}
	}
	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		logging.Info("storage", "could not parse stored settings: %v", err)
		return map[string]any{}
	}
	return settings
}
