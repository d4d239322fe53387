package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeBackend(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLibrary()
	c.normalizeUI()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeBackend() error {
	c.Backend.URL = strings.TrimRight(strings.TrimSpace(c.Backend.URL), "/")
	if c.Backend.URL == "" {
		c.Backend.URL = defaultBackendURL
	}
	if _, err := url.Parse(c.Backend.URL); err != nil {
		return fmt.Errorf("backend.url: %w", err)
	}
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = defaultBackendTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// normalizeLibrary trims folders, and trims, dedups, and sorts genres the
// way the backend stores them.
func (c *Config) normalizeLibrary() {
	folders := make([]string, 0, len(c.Library.MovieFolders))
	for _, folder := range c.Library.MovieFolders {
		if trimmed := strings.TrimSpace(folder); trimmed != "" {
			folders = append(folders, trimmed)
		}
	}
	c.Library.MovieFolders = folders

	seen := make(map[string]struct{}, len(c.Library.Genres))
	genres := make([]string, 0, len(c.Library.Genres))
	for _, genre := range c.Library.Genres {
		trimmed := strings.TrimSpace(genre)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		genres = append(genres, trimmed)
	}
	sort.Strings(genres)
	c.Library.Genres = genres
}

func (c *Config) normalizeUI() {
	if c.UI.SuggestionErrorSeconds <= 0 {
		c.UI.SuggestionErrorSeconds = defaultSuggestionErrorSeconds
	}
	if c.UI.SummarySeconds < 0 {
		c.UI.SummarySeconds = 0
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
