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

// Backend contains connection settings for the organizer web backend.
type Backend struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Library lists the movie folders and genre names the user organizes into.
type Library struct {
	MovieFolders []string `toml:"movie_folders"`
	Genres       []string `toml:"genres"`
}

// Paths contains client-side directories.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// UI contains presentation timings and toggles for the terminal client.
type UI struct {
	// SuggestionErrorSeconds is how long a failed suggestion message stays
	// before the cell reverts to its previous content.
	SuggestionErrorSeconds int `toml:"suggestion_error_seconds"`
	// SummarySeconds is how long the batch summary lingers on interactive terminals.
	SummarySeconds int  `toml:"summary_seconds"`
	Color          bool `toml:"color"`
	Progress       bool `toml:"progress"`
}

// Notifications contains ntfy settings. An empty topic disables notifications.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   bool   `toml:"file"`
}

// Config encapsulates all configuration values for movieorg.
//
// Configuration sections by concern:
//   - Backend: organizer backend URL and request timeout
//   - Library: movie folders and configured genres
//   - Paths: client state and log directories
//   - UI: error revert and summary timings, colour and progress toggles
//   - Notifications: ntfy topic for batch results
//   - Logging: log format and level
type Config struct {
	Backend       Backend       `toml:"backend"`
	Library       Library       `toml:"library"`
	Paths         Paths         `toml:"paths"`
	UI            UI            `toml:"ui"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
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

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
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

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("movieorg.toml")
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

// EnsureDirectories creates the client state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StatePath returns the location of the client state database.
func (c *Config) StatePath() string {
	return filepath.Join(c.Paths.DataDir, "state.db")
}

// ApplyLockPath returns the lock file that serializes batch apply runs.
func (c *Config) ApplyLockPath() string {
	return filepath.Join(c.Paths.DataDir, "apply.lock")
}

// LogPath returns the log file path used when file logging is enabled.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "movieorg.log")
}

// RequestTimeout returns the per-request backend timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// NotificationTimeout returns the ntfy request timeout.
func (c *Config) NotificationTimeout() time.Duration {
	return time.Duration(c.Notifications.RequestTimeoutSeconds) * time.Second
}

// SuggestionErrorDelay returns how long a suggestion error stays visible.
func (c *Config) SuggestionErrorDelay() time.Duration {
	return time.Duration(c.UI.SuggestionErrorSeconds) * time.Second
}

// SummaryDelay returns how long the batch summary lingers.
func (c *Config) SummaryDelay() time.Duration {
	return time.Duration(c.UI.SummarySeconds) * time.Second
}

// DefaultFolder returns the first configured movie folder, or "" when none is set.
func (c *Config) DefaultFolder() string {
	if len(c.Library.MovieFolders) == 0 {
		return ""
	}
	return c.Library.MovieFolders[0]
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
