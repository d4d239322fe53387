package suggestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"movieorg/internal/backend"
	"movieorg/internal/logging"
	"movieorg/internal/moveaction"
	"movieorg/internal/movietable"
	"movieorg/internal/services"
)

const (
	// GenreUpdateFailure is the alert shown when a genre cannot be added.
	GenreUpdateFailure = "Failed to update genre. Please try again."
	// CustomPrompt asks the user for a custom genre name.
	CustomPrompt = "Enter new genre name:"

	defaultErrorDelay = 3 * time.Second
)

// ErrNoGenre rejects a selection without a genre.
var ErrNoGenre = fmt.Errorf("%w: genre is required", services.ErrValidation)

// Suggester fetches a genre guess.
type Suggester interface {
	SuggestGenre(ctx context.Context, title, baseFolder string) (backend.Suggestion, error)
}

// GenreAdder registers a new genre.
type GenreAdder interface {
	AddGenre(ctx context.Context, genre string) error
}

// Prompter asks the user for free text. ok is false when the user cancelled.
type Prompter interface {
	Prompt(ctx context.Context, message string) (answer string, ok bool)
}

// Injector installs a move control for a row, replacing its actions cell.
type Injector interface {
	InjectMove(ctx context.Context, target moveaction.Target) error
}

// Options configures a Client. Suggester is required.
type Options struct {
	Suggester Suggester
	Adder     GenreAdder
	Prompter  Prompter
	Alerter   moveaction.Alerter
	Injector  Injector
	Logger    *slog.Logger
	// Genres are the configured genres listed in every menu.
	Genres []string
	// ErrorDelay is how long a fetch error stays visible. Zero means 3s.
	ErrorDelay time.Duration
}

// Client owns the suggestion cells of one page.
type Client struct {
	opts   Options
	logger *slog.Logger
	fold   cases.Caser

	mu     sync.Mutex
	genres []string
	cells  map[string]*Cell
}

// New builds a client.
func New(opts Options) *Client {
	if opts.ErrorDelay <= 0 {
		opts.ErrorDelay = defaultErrorDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "suggestion"),
		fold:   cases.Fold(),
		genres: slices.Clone(opts.Genres),
		cells:  make(map[string]*Cell),
	}
}

// Genres returns the genres offered in menus.
func (c *Client) Genres() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.genres)
}

// Cell returns the suggestion cell for row, creating it from the row's
// suggested genre on first use.
func (c *Client) Cell(row *movietable.Row) *Cell {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := row.BaseFolder + "\x00" + row.Path
	cell, ok := c.cells[key]
	if !ok {
		cell = newCell(row.SuggestedGenre)
		c.cells[key] = cell
	}
	return cell
}

// Close cancels every pending error revert.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cell := range c.cells {
		cell.Close()
	}
}

// Fetch requests a suggestion for row. On success the row's suggested genre
// and its cell are updated and a move control is injected when the genre
// differs from the current one. On failure the cell shows ErrorMessage until
// the error delay passes and the error is returned.
func (c *Client) Fetch(ctx context.Context, row *movietable.Row) (string, error) {
	cell := c.Cell(row)
	logger := logging.WithContext(ctx, c.logger).With(
		logging.String(logging.FieldPath, row.Path),
		logging.String(logging.FieldBaseFolder, row.BaseFolder),
	)
	if row.Path == "" || row.BaseFolder == "" {
		return "", fmt.Errorf("%w: row is missing path or base folder", services.ErrValidation)
	}

	cell.begin()
	reply, err := c.opts.Suggester.SuggestGenre(ctx, row.Path, row.BaseFolder)
	if err != nil {
		cell.fail(c.opts.ErrorDelay)
		logger.Warn("suggestion failed", logging.Error(err))
		return "", fmt.Errorf("suggest genre for %s: %w", row.Path, err)
	}

	genre := reply.Genre
	cell.show(genre, Menu(genre, c.Genres()))
	row.SuggestedGenre = genre
	logger.Info("genre suggested",
		logging.String(logging.FieldGenre, genre),
		logging.String("message", reply.Message),
	)
	if err := c.injectIfChanged(ctx, row, genre); err != nil {
		return genre, err
	}
	return genre, nil
}

// Select applies a menu choice to row. ActionCustom prompts for the genre and
// aborts silently when the answer is empty or cancelled. ActionAdd and
// ActionCustom register the genre with the backend first; a failure there
// alerts the user and leaves the row unchanged. It returns the applied genre,
// or "" when nothing was applied.
func (c *Client) Select(ctx context.Context, row *movietable.Row, genre string, action Action) (string, error) {
	logger := logging.WithContext(ctx, c.logger).With(
		logging.String(logging.FieldPath, row.Path),
		logging.String("action", string(action)),
	)

	switch action {
	case ActionCustom:
		if c.opts.Prompter == nil {
			return "", nil
		}
		answer, ok := c.opts.Prompter.Prompt(ctx, CustomPrompt)
		if !ok {
			return "", nil
		}
		genre = strings.TrimSpace(answer)
		if genre == "" {
			return "", nil
		}
	case ActionAdd, ActionSelect:
		genre = strings.TrimSpace(genre)
		if genre == "" {
			return "", ErrNoGenre
		}
	default:
		return "", fmt.Errorf("%w: unknown action %q", services.ErrValidation, action)
	}

	if action != ActionSelect {
		if err := c.addGenre(ctx, genre); err != nil {
			logger.Warn("add genre failed", logging.String(logging.FieldGenre, genre), logging.Error(err))
			if c.opts.Alerter != nil {
				c.opts.Alerter.Alert(ctx, GenreUpdateFailure)
			}
			return "", fmt.Errorf("add genre %q: %w", genre, err)
		}
	}

	c.Cell(row).show(genre, Menu(genre, c.Genres()))
	row.SuggestedGenre = genre
	logger.Info("genre selected", logging.String(logging.FieldGenre, genre))
	if err := c.injectIfChanged(ctx, row, genre); err != nil {
		if c.opts.Alerter != nil {
			c.opts.Alerter.Alert(ctx, GenreUpdateFailure)
		}
		return genre, err
	}
	return genre, nil
}

func (c *Client) addGenre(ctx context.Context, genre string) error {
	if c.opts.Adder == nil {
		return errors.New("no genre adder configured")
	}
	if err := c.opts.Adder.AddGenre(ctx, genre); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !slices.ContainsFunc(c.genres, func(g string) bool { return c.sameGenre(g, genre) }) {
		c.genres = append(c.genres, genre)
	}
	return nil
}

// SameGenre reports whether a and b name the same genre, ignoring case.
func (c *Client) SameGenre(a, b string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sameGenre(a, b)
}

// sameGenre uses the shared Caser; callers hold mu.
func (c *Client) sameGenre(a, b string) bool {
	return c.fold.String(strings.TrimSpace(a)) == c.fold.String(strings.TrimSpace(b))
}

func (c *Client) injectIfChanged(ctx context.Context, row *movietable.Row, genre string) error {
	if c.SameGenre(row.CurrentGenre, genre) || c.opts.Injector == nil {
		return nil
	}
	target := moveaction.Target{Path: row.Path, BaseFolder: row.BaseFolder, Genre: genre}
	if err := c.opts.Injector.InjectMove(ctx, target); err != nil {
		return fmt.Errorf("inject move for %s: %w", row.Path, err)
	}
	row.Action = "Move to " + genre
	return nil
}
