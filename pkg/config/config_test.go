package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TIDU_DATA_DIR", "")
	t.Setenv("TIDU_STORAGE", "")
	t.Setenv("TIDU_CALENDAR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage != StorageJSON {
		t.Errorf("Expected default storage json, got %s", cfg.Storage)
	}
	if cfg.Calendar != "Tasks" {
		t.Errorf("Expected default calendar Tasks, got %s", cfg.Calendar)
	}
	want := filepath.Join(home, ".config", "tidu")
	if cfg.DataDir != want {
		t.Errorf("Expected data dir %s, got %s", want, cfg.DataDir)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TIDU_DATA_DIR", "")
	t.Setenv("TIDU_STORAGE", "")
	t.Setenv("TIDU_CALENDAR", "")

	saved := &Config{DataDir: "/tmp/tasks", Storage: StorageSQLite, Calendar: "Chores"}
	if err := Save(saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataDir != "/tmp/tasks" || cfg.Storage != StorageSQLite || cfg.Calendar != "Chores" {
		t.Errorf("Round trip mismatch: %+v", cfg)
	}

	path, _ := GetConfigPath()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected config file at %s: %v", path, err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := Save(&Config{Storage: StorageJSON, Calendar: "Chores"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("TIDU_DATA_DIR", "/srv/tidu")
	t.Setenv("TIDU_STORAGE", StorageYAML)
	t.Setenv("TIDU_CALENDAR", "Overridden")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataDir != "/srv/tidu" || cfg.Storage != StorageYAML || cfg.Calendar != "Overridden" {
		t.Errorf("Expected env overrides applied, got %+v", cfg)
	}
}

func TestLoad_RejectsUnknownStorage(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TIDU_STORAGE", "parchment")
	t.Setenv("TIDU_DATA_DIR", "")
	t.Setenv("TIDU_CALENDAR", "")

	if _, err := Load(); err == nil {
		t.Error("Expected error for unknown storage backend")
	}
}
