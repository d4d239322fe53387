package preflight

import (
	"context"

	"movieorg/internal/config"
	"movieorg/internal/page"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// fetcher may be nil, in which case the backend check is skipped.
func RunAll(ctx context.Context, cfg *config.Config, fetcher page.Fetcher) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckStateStore(ctx, cfg.StatePath()))

	if cfg.Logging.File {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	if fetcher != nil {
		results = append(results, CheckBackend(ctx, fetcher, cfg.DefaultFolder(), cfg.RequestTimeout()))
	}

	if cfg.Notifications.NtfyTopic != "" {
		results = append(results, Result{Name: "Notifications", Passed: true, Detail: cfg.Notifications.NtfyTopic})
	}

	return results
}
