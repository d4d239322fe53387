package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"movieorg/internal/batch"
	"movieorg/internal/config"
	"movieorg/internal/logging"
	"movieorg/internal/moveaction"
	"movieorg/internal/movietable"
	"movieorg/internal/page"
	"movieorg/internal/queue"
	"movieorg/internal/services"
	"movieorg/internal/suggestion"
	"movieorg/internal/textutil"
)

// ErrNoControl reports a row without a move control.
var ErrNoControl = fmt.Errorf("%w: no move control for movie", services.ErrNotFound)

// Backend is the organizer API a session talks to.
type Backend interface {
	page.Fetcher
	moveaction.Mover
	suggestion.Suggester
	suggestion.GenreAdder
}

// Options wires a session. Config, Backend and Store are required.
type Options struct {
	Config   *config.Config
	Backend  Backend
	Store    *queue.Store
	Alerter  moveaction.Alerter
	Prompter suggestion.Prompter
	Logger   *slog.Logger
}

// Session is one loaded page. It is not safe for concurrent use.
type Session struct {
	cfg     *config.Config
	backend Backend
	store   *queue.Store
	alerter moveaction.Alerter
	base    *slog.Logger
	logger  *slog.Logger

	folder      string
	genres      []string
	table       *movietable.Table
	controls    map[string]*moveaction.Control
	suggestions *suggestion.Client
}

// Open loads the page for folder (the first configured folder when empty),
// restores the saved sort order and rebuilds the move controls from the page
// and from pending moves recorded earlier.
func Open(ctx context.Context, opts Options, folder string) (*Session, error) {
	if opts.Config == nil || opts.Backend == nil || opts.Store == nil {
		return nil, errors.New("session requires config, backend, and store")
	}
	base := opts.Logger
	if base == nil {
		base = logging.NewNop()
	}

	if strings.TrimSpace(folder) == "" {
		folder = opts.Config.DefaultFolder()
	}
	p, err := page.Load(ctx, opts.Backend, folder)
	if err != nil {
		return nil, fmt.Errorf("load movies page: %w", err)
	}

	s := &Session{
		cfg:      opts.Config,
		backend:  opts.Backend,
		store:    opts.Store,
		alerter:  opts.Alerter,
		base:     base,
		logger:   logging.NewComponentLogger(base, "session").With(logging.String(logging.FieldBaseFolder, p.BaseFolder)),
		folder:   p.BaseFolder,
		genres:   p.Genres,
		controls: make(map[string]*moveaction.Control),
	}
	if s.genres == nil {
		s.genres = opts.Config.Library.Genres
	}
	s.table = movietable.New(p.Rows, opts.Store)
	s.suggestions = suggestion.New(suggestion.Options{
		Suggester:  opts.Backend,
		Adder:      opts.Backend,
		Prompter:   opts.Prompter,
		Alerter:    opts.Alerter,
		Injector:   s,
		Logger:     base,
		Genres:     s.genres,
		ErrorDelay: opts.Config.SuggestionErrorDelay(),
	})

	state, err := opts.Store.LoadSortState(ctx)
	if err != nil {
		s.logger.Warn("could not load sort state", logging.Error(err))
	} else {
		s.table.Restore(state)
	}

	if err := s.restoreControls(ctx, p.Moves); err != nil {
		return nil, err
	}
	s.logger.Debug("session opened",
		logging.Int("rows", s.table.Len()),
		logging.Int("controls", len(s.controls)),
		logging.String("sort", s.table.State().String()),
	)
	return s, nil
}

func (s *Session) restoreControls(ctx context.Context, moves []page.Move) error {
	if n, err := s.store.ResetStuck(ctx); err != nil {
		return fmt.Errorf("reset interrupted moves: %w", err)
	} else if n > 0 {
		s.logger.Info("reset interrupted moves", logging.Int("count", int(n)))
	}

	for _, move := range moves {
		existing, err := s.store.Get(ctx, move.BaseFolder, move.Path)
		if err != nil {
			return fmt.Errorf("load pending move: %w", err)
		}
		if existing == nil || !existing.Status.Open() || existing.Genre != move.Genre {
			if _, err := s.store.Enqueue(ctx, move.BaseFolder, move.Path, move.Genre); err != nil {
				return fmt.Errorf("record page move: %w", err)
			}
		}
	}

	// Without a folder the page cannot vouch for any stored move.
	if s.folder == "" {
		return nil
	}
	items, err := s.store.ListOpen(ctx, s.folder)
	if err != nil {
		return fmt.Errorf("list pending moves: %w", err)
	}
	for _, item := range items {
		row, ok := s.table.Find(item.Path)
		if !ok || (row.BaseFolder != "" && row.BaseFolder != item.BaseFolder) {
			// The movie is no longer in this folder.
			if _, err := s.store.Remove(ctx, item.BaseFolder, item.Path); err != nil {
				return fmt.Errorf("drop stale move: %w", err)
			}
			s.logger.Debug("dropped stale pending move", logging.String(logging.FieldPath, item.Path))
			continue
		}
		s.install(moveaction.Target{Path: item.Path, BaseFolder: item.BaseFolder, Genre: item.Genre})
		row.Action = "Move to " + item.Genre
	}
	return nil
}

func (s *Session) install(target moveaction.Target) *moveaction.Control {
	control := moveaction.New(target, moveaction.Deps{
		Mover:   s.backend,
		Remover: s,
		Alerter: s.alerter,
		Tracker: s.store,
		Logger:  s.base,
	})
	s.controls[target.Path] = control
	return control
}

// InjectMove records a pending move for target and replaces the row's move
// control with one for target's genre.
func (s *Session) InjectMove(ctx context.Context, target moveaction.Target) error {
	if _, err := s.store.Enqueue(ctx, target.BaseFolder, target.Path, target.Genre); err != nil {
		return err
	}
	s.install(target)
	return nil
}

// Remove drops a moved row from the table along with its control.
func (s *Session) Remove(path string) bool {
	delete(s.controls, path)
	return s.table.Remove(path)
}

// Close stops pending suggestion timers.
func (s *Session) Close() {
	s.suggestions.Close()
}

// Folder is the base folder of the page.
func (s *Session) Folder() string {
	return s.folder
}

// Genres are the genres offered in suggestion menus.
func (s *Session) Genres() []string {
	return s.suggestions.Genres()
}

// Table is the page's movie table.
func (s *Session) Table() *movietable.Table {
	return s.table
}

// Suggestions is the page's suggestion client.
func (s *Session) Suggestions() *suggestion.Client {
	return s.suggestions
}

// Row finds a movie by path, falling back to its title.
func (s *Session) Row(name string) (*movietable.Row, error) {
	if row, ok := s.table.Find(name); ok {
		return row, nil
	}
	for _, row := range s.table.Rows() {
		if row.Title == name {
			found, _ := s.table.Find(row.Path)
			return found, nil
		}
	}
	titles := make([]string, 0, len(s.table.Rows()))
	for _, row := range s.table.Rows() {
		titles = append(titles, row.Title)
	}
	if guess, _, ok := textutil.Closest(name, titles, textutil.DefaultMinScore); ok {
		return nil, fmt.Errorf("%w: movie %q not in %s (did you mean %q?)", services.ErrNotFound, name, s.folder, guess)
	}
	return nil, fmt.Errorf("%w: movie %q not in %s", services.ErrNotFound, name, s.folder)
}

// Sort sorts the table by col and saves the new state.
func (s *Session) Sort(ctx context.Context, col movietable.Column) (movietable.SortState, error) {
	return s.table.Sort(ctx, col)
}

// Control returns the move control of the named movie.
func (s *Session) Control(name string) (*moveaction.Control, error) {
	row, err := s.Row(name)
	if err != nil {
		return nil, err
	}
	control, ok := s.controls[row.Path]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoControl, row.Path)
	}
	return control, nil
}

// Controls returns the pending move controls in table order.
func (s *Session) Controls() []*moveaction.Control {
	out := make([]*moveaction.Control, 0, len(s.controls))
	for _, row := range s.table.Rows() {
		if control, ok := s.controls[row.Path]; ok && !control.Done() {
			out = append(out, control)
		}
	}
	return out
}

// Suggest fetches a genre suggestion for the named movie.
func (s *Session) Suggest(ctx context.Context, name string) (string, error) {
	row, err := s.Row(name)
	if err != nil {
		return "", err
	}
	return s.suggestions.Fetch(ctx, row)
}

// Select applies a suggestion menu choice to the named movie.
func (s *Session) Select(ctx context.Context, name, genre string, action suggestion.Action) (string, error) {
	row, err := s.Row(name)
	if err != nil {
		return "", err
	}
	return s.suggestions.Select(ctx, row, genre, action)
}

// Move runs the move control of the named movie.
func (s *Session) Move(ctx context.Context, name string) (*moveaction.Control, error) {
	control, err := s.Control(name)
	if err != nil {
		return nil, err
	}
	return control, control.Move(ctx)
}

// Apply moves every pending control in table order.
func (s *Session) Apply(ctx context.Context, onProgress func(batch.Progress)) (batch.Summary, error) {
	controls := s.Controls()
	items := make([]batch.Control, 0, len(controls))
	for _, control := range controls {
		items = append(items, control)
	}
	runner := batch.NewRunner(batch.Options{
		LockPath:   s.cfg.ApplyLockPath(),
		Logger:     s.base,
		OnProgress: onProgress,
	})
	return runner.Run(ctx, items)
}
