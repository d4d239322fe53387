package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// environment lists the MOVIEORG_* variables that override file values.
type environment struct {
	BackendURL string   `env:"MOVIEORG_BACKEND_URL"`
	Timeout    int      `env:"MOVIEORG_BACKEND_TIMEOUT"`
	DataDir    string   `env:"MOVIEORG_DATA_DIR"`
	LogDir     string   `env:"MOVIEORG_LOG_DIR"`
	LogLevel   string   `env:"MOVIEORG_LOG_LEVEL"`
	LogFormat  string   `env:"MOVIEORG_LOG_FORMAT"`
	Genres     []string `env:"MOVIEORG_GENRES" envSeparator:","`
	NtfyTopic  string   `env:"MOVIEORG_NTFY_TOPIC"`
}

func (c *Config) applyEnv() error {
	var vars environment
	if err := env.Parse(&vars); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if v := strings.TrimSpace(vars.BackendURL); v != "" {
		c.Backend.URL = v
	}
	if vars.Timeout > 0 {
		c.Backend.TimeoutSeconds = vars.Timeout
	}
	if v := strings.TrimSpace(vars.DataDir); v != "" {
		c.Paths.DataDir = v
	}
	if v := strings.TrimSpace(vars.LogDir); v != "" {
		c.Paths.LogDir = v
	}
	if v := strings.TrimSpace(vars.LogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(vars.LogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := strings.TrimSpace(vars.NtfyTopic); v != "" {
		c.Notifications.NtfyTopic = v
	}
	if len(vars.Genres) > 0 {
		c.Library.Genres = vars.Genres
	}
	return nil
}
