package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if len(cfg.Sources.Feeds) != 8 {
		t.Errorf("expected 8 default feeds, got %d", len(cfg.Sources.Feeds))
	}
	if cfg.Sources.Feeds[0].Title != "ipSpace Blog" {
		t.Errorf("expected first feed 'ipSpace Blog', got %q", cfg.Sources.Feeds[0].Title)
	}
	if cfg.Window.Days != 90 {
		t.Errorf("expected window 90 days, got %d", cfg.Window.Days)
	}
	if cfg.Archive.Backend != "json" {
		t.Errorf("expected json backend, got %q", cfg.Archive.Backend)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
sources:
  feeds:
    - url: https://example.com/feed
      title: Example
      manual_tags: [Go, " Networking "]
window:
  days: 30
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if len(cfg.Sources.Feeds) != 1 {
		t.Fatalf("expected 1 feed, got %d", len(cfg.Sources.Feeds))
	}
	if got := cfg.Sources.Feeds[0].ManualTags; len(got) != 2 || got[0] != "Go" {
		t.Errorf("unexpected manual tags: %v", got)
	}
	if cfg.WindowDuration() != 30*24*time.Hour {
		t.Errorf("expected 30 day window, got %v", cfg.WindowDuration())
	}
	// Defaults should still be set for unspecified fields
	if cfg.Output.CurrentFile != "feeds.json" {
		t.Errorf("expected default current_file, got %q", cfg.Output.CurrentFile)
	}
	if cfg.Summary.MaxLength != 300 {
		t.Errorf("expected default summary length 300, got %d", cfg.Summary.MaxLength)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing url", "sources:\n  feeds:\n    - title: No URL\n"},
		{"bad window", "window:\n  days: 0\n"},
		{"bad backend", "archive:\n  backend: redis\n"},
		{"bad log level", "logging:\n  level: TRACE\n"},
		{"bad yaml", "sources: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parse([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoggingLevel(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}
	if cfg.Debug() {
		t.Error("default INFO level should not enable debug output")
	}

	cfg, err = parse([]byte("logging:\n  level: debug\n"))
	if err != nil {
		t.Fatalf("failed to parse debug config: %v", err)
	}
	if !cfg.Debug() {
		t.Error("expected debug level to enable debug output")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Sources.Feeds) == 0 {
		t.Error("expected feeds to be populated from file")
	}
}

func TestResolveExplicitMissing(t *testing.T) {
	if _, err := ResolveConfigPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestOutputPaths(t *testing.T) {
	cfg := &Config{}
	if cfg.GetDataDir() == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output = Output{DataDir: "/custom/path", CurrentFile: "feeds.json", ArchiveFile: "/abs/archive.json"}
	if cfg.CurrentPath() != filepath.Join("/custom/path", "feeds.json") {
		t.Errorf("unexpected current path %q", cfg.CurrentPath())
	}
	if cfg.ArchivePath() != "/abs/archive.json" {
		t.Errorf("expected absolute archive path to be kept, got %q", cfg.ArchivePath())
	}
	if cfg.DatabasePath() != filepath.Join("/custom/path", "feedshelf.db") {
		t.Errorf("unexpected database path %q", cfg.DatabasePath())
	}
}
