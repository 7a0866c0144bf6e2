package model

import (
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.Display.ShowCompleted {
		t.Error("default ShowCompleted = false, want true")
	}
	if cfg.DatabasePath == "" || cfg.LogPath == "" {
		t.Errorf("default paths missing: %+v", cfg)
	}
}

func TestSaveLoadConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	in := &AppConfig{
		DatabasePath: "/tmp/tm.db",
		LogPath:      "/tmp/tm.log",
		Display:      DisplayConfig{ShowCompleted: false},
	}
	if err := SaveConfig(path, in); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	out, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if out.DatabasePath != in.DatabasePath || out.LogPath != in.LogPath {
		t.Errorf("paths = %+v, want %+v", out, in)
	}
	if out.Display.ShowCompleted {
		t.Error("ShowCompleted = true after round trip, want false")
	}
}
