package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"movieorg/internal/logging"
	"movieorg/internal/moveaction"
	"movieorg/internal/services"
)

// ProgressTitle labels the progress display of a run.
const ProgressTitle = "Moving movies..."

// ErrLocked reports that another run holds the apply lock.
var ErrLocked = errors.New("another apply run is in progress")

// Control is one pending move.
type Control interface {
	Target() moveaction.Target
	Move(ctx context.Context) error
}

// Progress is reported after every attempted move.
type Progress struct {
	Done      int
	Completed int
	Failed    int
	Total     int
	Percent   float64
	Target    moveaction.Target
	Err       error
}

// Failure records one failed move.
type Failure struct {
	Target moveaction.Target
	Err    error
}

// Summary is the outcome of a run. Completed+Failed+Skipped equals Total.
type Summary struct {
	RunID     string
	Completed int
	Failed    int
	Skipped   int
	Total     int
	Elapsed   time.Duration
	Failures  []Failure
}

// String renders the completion message.
func (s Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Complete! Successfully moved %d movies.", s.Completed)
	if s.Failed > 0 {
		fmt.Fprintf(&sb, "\nFailed to move %d movies.", s.Failed)
	}
	if s.Skipped > 0 {
		fmt.Fprintf(&sb, "\nSkipped %d movies.", s.Skipped)
	}
	return sb.String()
}

// Options configures a Runner.
type Options struct {
	// LockPath enables the cross-process apply lock when set.
	LockPath   string
	Logger     *slog.Logger
	OnProgress func(Progress)
	NewRunID   func() string
}

// Runner applies move controls sequentially.
type Runner struct {
	opts   Options
	logger *slog.Logger
}

// NewRunner builds a runner.
func NewRunner(opts Options) *Runner {
	if opts.NewRunID == nil {
		opts.NewRunID = uuid.NewString
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{opts: opts, logger: logging.NewComponentLogger(logger, "batch")}
}

// Run moves every control in order, awaiting each before starting the next.
// A failed move is counted and the run continues. Cancelling ctx stops the
// run before the next move; the remaining controls are reported as skipped
// and ctx's error is returned with the summary.
func (r *Runner) Run(ctx context.Context, controls []Control) (Summary, error) {
	summary := Summary{RunID: r.opts.NewRunID(), Total: len(controls)}

	unlock, err := r.acquire()
	if err != nil {
		summary.Skipped = summary.Total
		return summary, err
	}
	defer unlock()

	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("apply started", logging.Int("total", summary.Total))

	start := time.Now()
	for i, control := range controls {
		if err := ctx.Err(); err != nil {
			summary.Skipped = summary.Total - i
			summary.Elapsed = time.Since(start)
			logger.Warn("apply cancelled",
				logging.Int("completed", summary.Completed),
				logging.Int("failed", summary.Failed),
				logging.Int("skipped", summary.Skipped),
			)
			return summary, err
		}

		target := control.Target()
		moveErr := control.Move(ctx)
		if moveErr != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Target: target, Err: moveErr})
		} else {
			summary.Completed++
		}
		r.report(summary, target, moveErr)
	}

	summary.Elapsed = time.Since(start)
	logger.Info("apply finished",
		logging.Int("completed", summary.Completed),
		logging.Int("failed", summary.Failed),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

func (r *Runner) report(summary Summary, target moveaction.Target, err error) {
	if r.opts.OnProgress == nil {
		return
	}
	done := summary.Completed + summary.Failed
	r.opts.OnProgress(Progress{
		Done:      done,
		Completed: summary.Completed,
		Failed:    summary.Failed,
		Total:     summary.Total,
		Percent:   float64(done) / float64(summary.Total) * 100,
		Target:    target,
		Err:       err,
	})
}

func (r *Runner) acquire() (func(), error) {
	if r.opts.LockPath == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(r.opts.LockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(r.opts.LockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire apply lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release apply lock", logging.Error(err))
		}
	}, nil
}
