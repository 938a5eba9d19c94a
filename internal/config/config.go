package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Sources Sources `yaml:"sources"`
	Window  Window  `yaml:"window"`
	Summary Summary `yaml:"summary"`
	Output  Output  `yaml:"output"`
	Archive Archive `yaml:"archive"`
	Fetch   Fetch   `yaml:"fetch"`
	Enrich  Enrich  `yaml:"enrich"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

type Sources struct {
	Feeds []Feed `yaml:"feeds"`
}

type Feed struct {
	URL        string   `yaml:"url"`
	Title      string   `yaml:"title"`
	ManualTags []string `yaml:"manual_tags"`
}

type Window struct {
	Days int `yaml:"days"`
}

type Summary struct {
	MaxLength int `yaml:"max_length"`
}

type Output struct {
	DataDir     string `yaml:"data_dir"`
	CurrentFile string `yaml:"current_file"`
	ArchiveFile string `yaml:"archive_file"`
}

type Archive struct {
	Backend string `yaml:"backend"` // "json" or "sqlite"
}

type Fetch struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
}

type Enrich struct {
	Enabled        bool `yaml:"enabled"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for feedshelf.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "feedshelf")
}

// DataDir returns the XDG data directory for feedshelf.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "feedshelf")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > $XDG_CONFIG_HOME/feedshelf/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'feedshelf init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Window:  Window{Days: 90},
		Summary: Summary{MaxLength: 300},
		Output: Output{
			CurrentFile: "feeds.json",
			ArchiveFile: "archive.json",
		},
		Archive: Archive{Backend: "json"},
		Fetch: Fetch{
			TimeoutSeconds: 30,
			UserAgent:      "feedshelf/1.0 (feed archiver)",
		},
		Enrich:  Enrich{TimeoutSeconds: 15},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for i, f := range c.Sources.Feeds {
		if f.URL == "" {
			return fmt.Errorf("feed %d: url is required", i+1)
		}
	}
	if c.Window.Days <= 0 {
		return fmt.Errorf("window.days must be positive, got %d", c.Window.Days)
	}
	switch c.Archive.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("archive.backend must be json or sqlite, got %q", c.Archive.Backend)
	}
	switch strings.ToUpper(c.Logging.Level) {
	case "DEBUG", "INFO", "WARNING", "ERROR":
	default:
		return fmt.Errorf("logging.level must be DEBUG, INFO, WARNING or ERROR, got %q", c.Logging.Level)
	}
	return nil
}

// Debug reports whether logging.level asks for debug output.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.Logging.Level, "DEBUG")
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// CurrentPath returns the path of the current-window JSON document.
func (c *Config) CurrentPath() string {
	return c.outputPath(c.Output.CurrentFile)
}

// ArchivePath returns the path of the archive JSON document.
func (c *Config) ArchivePath() string {
	return c.outputPath(c.Output.ArchiveFile)
}

// DatabasePath returns the path of the SQLite run log / archive database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.GetDataDir(), "feedshelf.db")
}

func (c *Config) outputPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.GetDataDir(), name)
}

// WindowDuration returns the trailing window that counts as current.
func (c *Config) WindowDuration() time.Duration {
	return time.Duration(c.Window.Days) * 24 * time.Hour
}

// FetchTimeout returns the per-feed HTTP timeout.
func (c *Config) FetchTimeout() time.Duration {
	if c.Fetch.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// EnrichTimeout returns the per-page HTTP timeout used by enrichment.
func (c *Config) EnrichTimeout() time.Duration {
	if c.Enrich.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Enrich.TimeoutSeconds) * time.Second
}
