package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// API contains TaskNotes connection settings.
type API struct {
	BaseURL        string `toml:"base_url"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// FetchLimit is the page size requested from the task listing
	// endpoint; filtering happens locally.
	FetchLimit int `toml:"fetch_limit"`
	// ReturnLimit caps how many rows a feed emits to the launcher.
	ReturnLimit int `toml:"return_limit"`
}

// Cache contains persistence and freshness settings for the snapshot cache.
type Cache struct {
	// Backend selects the store: "file" or "sqlite".
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`

	TTLSeconds            int `toml:"ttl_seconds"`
	MaxStaleSeconds       int `toml:"max_stale_seconds"`
	RerunDelayMS          int `toml:"rerun_delay_ms"`
	RefreshBackoffSeconds int `toml:"refresh_backoff_seconds"`

	SessionTTLMS       int `toml:"session_ttl_ms"`
	DetailTTLMS        int `toml:"detail_ttl_ms"`
	PomodoroTTLMS      int `toml:"pomodoro_ttl_ms"`
	PomodoroMaxStaleMS int `toml:"pomodoro_max_stale_ms"`
}

// Display controls how result rows are rendered.
type Display struct {
	// SubtitleFields lists the task fields shown in row subtitles, in
	// order. Recognized: due, scheduled, priority, status, tags, projects.
	SubtitleFields []string `toml:"subtitle_fields"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for taskdeck.
type Config struct {
	API     API     `toml:"api"`
	Cache   Cache   `toml:"cache"`
	Display Display `toml:"display"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/taskdeck/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file
// yields defaults; the returned bool reports whether a file was read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("taskdeck.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the cache directory and, when file logging is
// enabled, the log directory.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Cache.Dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory %q: %w", c.Cache.Dir, err)
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		if err := os.MkdirAll(filepath.Dir(c.Logging.File), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}
	return nil
}

// Timeout returns the HTTP request timeout.
func (a API) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// TTL returns the freshness window for the task-list cache.
func (c Cache) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// MaxStale returns the bound past which stale data is no longer served
// without a foreground refresh.
func (c Cache) MaxStale() time.Duration {
	return time.Duration(c.MaxStaleSeconds) * time.Second
}

// RerunDelay returns the launcher re-invocation hint used after serving
// stale data.
func (c Cache) RerunDelay() time.Duration {
	return time.Duration(c.RerunDelayMS) * time.Millisecond
}

// RefreshBackoff returns the minimum spacing between background refreshes.
func (c Cache) RefreshBackoff() time.Duration {
	return time.Duration(c.RefreshBackoffSeconds) * time.Second
}

func (c Cache) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMS) * time.Millisecond
}

func (c Cache) DetailTTL() time.Duration {
	return time.Duration(c.DetailTTLMS) * time.Millisecond
}

func (c Cache) PomodoroTTL() time.Duration {
	return time.Duration(c.PomodoroTTLMS) * time.Millisecond
}

func (c Cache) PomodoroMaxStale() time.Duration {
	return time.Duration(c.PomodoroMaxStaleMS) * time.Millisecond
}

// SQLitePath returns the cache database location for the sqlite backend.
func (c Cache) SQLitePath() string {
	return filepath.Join(c.Dir, "taskdeck.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
