// Package config loads and saves the application configuration from
// ~/.config/tidu/config.json. Environment variables override file values so
// a single shell export can redirect the data directory or storage backend.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	xdgAppName = "tidu"
	configFile = "config.json"
)

// Storage backend names accepted in Config.Storage.
const (
	StorageJSON   = "json"
	StorageYAML   = "yaml"
	StorageSQLite = "sqlite"
)

type Config struct {
	// DataDir is where task data lives. Defaults to the config directory.
	DataDir string `json:"dataDir"`
	// Storage selects the persistence backend: json, yaml or sqlite.
	Storage string `json:"storage"`
	// Calendar is the Google Calendar name used for due-date sync.
	Calendar string `json:"calendar"`
}

func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config file, falling back to defaults when it does not
// exist, then applies TIDU_DATA_DIR, TIDU_STORAGE and TIDU_CALENDAR
// overrides.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if cfg.Storage != StorageJSON && cfg.Storage != StorageYAML && cfg.Storage != StorageSQLite {
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TIDU_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TIDU_STORAGE"); v != "" {
		cfg.Storage = v
	}
	if v := os.Getenv("TIDU_CALENDAR"); v != "" {
		cfg.Calendar = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		if dir, err := GetConfigDir(); err == nil {
			cfg.DataDir = dir
		}
	}
	if cfg.Storage == "" {
		cfg.Storage = StorageJSON
	}
	if cfg.Calendar == "" {
		cfg.Calendar = "Tasks"
	}
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}
