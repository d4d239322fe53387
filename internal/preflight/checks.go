package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"movieorg/internal/backend"
	"movieorg/internal/page"
	"movieorg/internal/queue"
	"movieorg/internal/services"
)

// CheckBackend loads the movies page for folder and reports how many rows it
// holds. An empty folder asks the backend for its default.
func CheckBackend(ctx context.Context, fetcher page.Fetcher, folder string, timeout time.Duration) Result {
	const name = "Organizer backend"

	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p, err := page.Load(checkCtx, fetcher, folder)
	if err != nil {
		return Result{Name: name, Detail: summarizeBackendError(err)}
	}
	where := p.BaseFolder
	if where == "" {
		where = "default folder"
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("Reachable (%d movies in %s)", len(p.Rows), where)}
}

func summarizeBackendError(err error) string {
	var banner *page.BannerError
	switch {
	case errors.As(err, &banner):
		return fmt.Sprintf("page error: %s", banner.Message)
	case errors.Is(err, page.ErrNoTable):
		return "reachable, but the page has no movie table"
	case errors.Is(err, services.ErrTimeout):
		return "timed out"
	case backend.StatusCode(err) != 0:
		return fmt.Sprintf("unexpected status (%d)", backend.StatusCode(err))
	default:
		return fmt.Sprintf("unreachable (%v)", err)
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStateStore opens the client state database and counts queued moves.
func CheckStateStore(ctx context.Context, path string) Result {
	const name = "State database"

	store, err := queue.OpenPath(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()

	open, err := store.ListOpen(ctx, "")
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d queued moves)", path, len(open))}
}
