package testsupport

import (
	"path/filepath"
	"testing"

	"movieorg/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Library.MovieFolders = []string{DefaultFolder}
	cfgVal.Library.Genres = []string{"Action", "Comedy", "Drama", "Horror"}
	cfgVal.UI.Color = false
	cfgVal.UI.Progress = false
	cfgVal.UI.SummarySeconds = 0

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithBackend points the config at a fake backend.
func WithBackend(b *Backend) ConfigOption {
	return func(cb *configBuilder) {
		cb.cfg.Backend.URL = b.URL
	}
}

// WithGenres replaces the configured genre list.
func WithGenres(genres ...string) ConfigOption {
	return func(cb *configBuilder) {
		cb.cfg.Library.Genres = genres
	}
}
