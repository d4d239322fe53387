package moveaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"movieorg/internal/backend"
	"movieorg/internal/logging"
	"movieorg/internal/services"
)

// FailureMessage is the alert shown when a move fails.
const FailureMessage = "Failed to move movie. Please try again."

// State is the visible state of a move control.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateRetry   State = "retry"
)

var (
	// ErrInFlight rejects a move while the previous one is still loading.
	ErrInFlight = errors.New("move already in progress")
	// ErrMoved rejects a move on a control whose movie was already moved.
	ErrMoved = errors.New("movie already moved")
)

// Mover performs the backend move.
type Mover interface {
	MoveMovie(ctx context.Context, req backend.MoveRequest) (backend.MoveResult, error)
}

// Remover drops a row from the table view.
type Remover interface {
	Remove(path string) bool
}

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(ctx context.Context, message string)
}

// AlertFunc adapts a function to Alerter.
type AlertFunc func(ctx context.Context, message string)

// Alert calls f.
func (f AlertFunc) Alert(ctx context.Context, message string) {
	f(ctx, message)
}

// Tracker records the lifecycle of a pending move.
type Tracker interface {
	MarkMoving(ctx context.Context, baseFolder, path, runID string) error
	MarkMoved(ctx context.Context, baseFolder, path string) error
	MarkFailed(ctx context.Context, baseFolder, path, message string) error
}

// Deps are the collaborators shared by every control on a page. Only Mover
// is required.
type Deps struct {
	Mover   Mover
	Remover Remover
	Alerter Alerter
	Tracker Tracker
	Logger  *slog.Logger
}

// Target names the movie and destination genre of a control.
type Target struct {
	Path       string
	BaseFolder string
	Genre      string
}

// Control is the move button of one row.
type Control struct {
	target Target
	deps   Deps
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	done    bool
	newPath string
	lastErr error
}

// New builds an idle control.
func New(target Target, deps Deps) *Control {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Control{
		target: target,
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "move").With(
			logging.String(logging.FieldPath, target.Path),
			logging.String(logging.FieldBaseFolder, target.BaseFolder),
			logging.String(logging.FieldGenre, target.Genre),
		),
		state: StateIdle,
	}
}

// Target returns what the control moves.
func (c *Control) Target() Target {
	return c.target
}

// State returns the control's current state.
func (c *Control) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done reports whether the movie was moved.
func (c *Control) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// NewPath returns the destination reported by the backend after a move.
func (c *Control) NewPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.newPath
}

// Err returns the error of the last failed attempt.
func (c *Control) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Label is the button text for the current state.
func (c *Control) Label() string {
	switch c.State() {
	case StateLoading:
		return "Moving..."
	case StateRetry:
		return "Try again"
	default:
		return "Move to " + c.target.Genre
	}
}

// Move sends exactly one move request. On failure the control enters retry,
// the user is alerted and the error is returned; the row stays in place.
func (c *Control) Move(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.state == StateLoading:
		c.mu.Unlock()
		return ErrInFlight
	case c.done:
		c.mu.Unlock()
		return ErrMoved
	}
	c.state = StateLoading
	c.mu.Unlock()

	logger := logging.WithContext(ctx, c.logger)
	runID, _ := services.RunIDFromContext(ctx)
	c.track(ctx, logger, "mark moving", func(t Tracker) error {
		return t.MarkMoving(ctx, c.target.BaseFolder, c.target.Path, runID)
	})

	logger.Debug("moving movie")
	result, err := c.deps.Mover.MoveMovie(ctx, backend.MoveRequest{
		Path:       c.target.Path,
		BaseFolder: c.target.BaseFolder,
		Genre:      c.target.Genre,
	})
	if err != nil {
		c.mu.Lock()
		c.state = StateRetry
		c.lastErr = err
		c.mu.Unlock()

		logger.Warn("move failed", logging.Error(err))
		c.track(ctx, logger, "mark failed", func(t Tracker) error {
			return t.MarkFailed(context.WithoutCancel(ctx), c.target.BaseFolder, c.target.Path, err.Error())
		})
		if c.deps.Alerter != nil {
			c.deps.Alerter.Alert(ctx, FailureMessage)
		}
		return fmt.Errorf("move %s to %s: %w", c.target.Path, c.target.Genre, err)
	}

	c.mu.Lock()
	c.state = StateIdle
	c.done = true
	c.newPath = result.NewPath
	c.lastErr = nil
	c.mu.Unlock()

	if c.deps.Remover != nil {
		c.deps.Remover.Remove(c.target.Path)
	}
	c.track(ctx, logger, "mark moved", func(t Tracker) error {
		return t.MarkMoved(context.WithoutCancel(ctx), c.target.BaseFolder, c.target.Path)
	})
	logger.Info("movie moved", logging.String("new_path", result.NewPath))
	return nil
}

func (c *Control) track(ctx context.Context, logger *slog.Logger, op string, fn func(Tracker) error) {
	if c.deps.Tracker == nil {
		return
	}
	if err := fn(c.deps.Tracker); err != nil && !errors.Is(err, services.ErrNotFound) {
		logger.WarnContext(ctx, "pending move bookkeeping failed",
			logging.String("operation", op),
			logging.Error(err),
		)
	}
}
