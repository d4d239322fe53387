package session_test

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"sync"
	"testing"

	"movieorg/internal/backend"
	"movieorg/internal/batch"
	"movieorg/internal/config"
	"movieorg/internal/moveaction"
	"movieorg/internal/movietable"
	"movieorg/internal/queue"
	"movieorg/internal/services"
	"movieorg/internal/session"
	"movieorg/internal/suggestion"
	"movieorg/internal/testsupport"
)

type alerts struct {
	mu   sync.Mutex
	msgs []string
}

func (a *alerts) Alert(_ context.Context, msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.msgs = append(a.msgs, msg)
}

type fixture struct {
	fake   *testsupport.Backend
	cfg    *config.Config
	store  *queue.Store
	alerts *alerts
}

func newFixture(t *testing.T, movies ...testsupport.Movie) *fixture {
	t.Helper()
	fake := testsupport.NewBackend(t, movies...)
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(fake))
	return &fixture{
		fake:   fake,
		cfg:    cfg,
		store:  testsupport.MustOpenStore(t, cfg),
		alerts: &alerts{},
	}
}

func (f *fixture) open(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.Open(context.Background(), session.Options{
		Config:  f.cfg,
		Backend: backend.NewClient(f.fake.URL),
		Store:   f.store,
		Alerter: f.alerts,
	}, "")
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func titles(rows []movietable.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Title)
	}
	return out
}

func TestOpenRestoresSavedSort(t *testing.T) {
	f := newFixture(t,
		testsupport.Movie{Title: "Brazil", Path: "Brazil"},
		testsupport.Movie{Title: "Alien", Path: "Alien"},
		testsupport.Movie{Title: "Cube", Path: "Cube"},
	)
	first := f.open(t)
	if first.Folder() != testsupport.DefaultFolder {
		t.Fatalf("unexpected folder %q", first.Folder())
	}
	if _, err := first.Sort(context.Background(), movietable.ColumnTitle); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	state, err := first.Sort(context.Background(), movietable.ColumnTitle)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if state.Direction != movietable.Descending {
		t.Fatalf("expected descending, got %s", state)
	}

	second := f.open(t)
	if got := second.Table().State(); got != state {
		t.Fatalf("expected restored state %s, got %s", state, got)
	}
	if got := titles(second.Table().Rows()); !slices.Equal(got, []string{"Cube", "Brazil", "Alien"}) {
		t.Fatalf("unexpected restored order %v", got)
	}
}

func TestSuggestedMoveSurvivesReopenAndApplies(t *testing.T) {
	f := newFixture(t,
		testsupport.Movie{Title: "Heat", Path: "Heat", CurrentGenre: "Crime"},
		testsupport.Movie{Title: "Alien", Path: "Alien", CurrentGenre: "Horror"},
	)
	f.fake.Suggest("Heat", http.StatusOK, map[string]any{"genre": "Action", "status": "success"})
	f.fake.Suggest("Alien", http.StatusOK, map[string]any{"genre": "horror", "status": "success"})

	s := f.open(t)
	if genre, err := s.Suggest(context.Background(), "Heat"); err != nil || genre != "Action" {
		t.Fatalf("Suggest: %q %v", genre, err)
	}
	if _, err := s.Suggest(context.Background(), "Alien"); err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if got := len(s.Controls()); got != 1 {
		t.Fatalf("expected one control, got %d", got)
	}
	if _, err := s.Control("Alien"); !errors.Is(err, session.ErrNoControl) {
		t.Fatalf("expected ErrNoControl, got %v", err)
	}

	reopened := f.open(t)
	controls := reopened.Controls()
	if len(controls) != 1 || controls[0].Target().Genre != "Action" {
		t.Fatalf("expected recorded control after reopen, got %d", len(controls))
	}
	row, _ := reopened.Row("Heat")
	if row.Action != "Move to Action" {
		t.Fatalf("expected action text restored, got %q", row.Action)
	}

	var reports []batch.Progress
	summary, err := reopened.Apply(context.Background(), func(p batch.Progress) { reports = append(reports, p) })
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if summary.Completed != 1 || summary.Failed != 0 || len(reports) != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if _, err := reopened.Row("Heat"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected moved row gone, got %v", err)
	}
	item, _ := f.store.Get(context.Background(), testsupport.DefaultFolder, "Heat")
	if item == nil || item.Status != queue.StatusMoved {
		t.Fatalf("expected moved record, got %+v", item)
	}
}

func TestPageMoveButtonsBecomeControls(t *testing.T) {
	f := newFixture(t,
		testsupport.Movie{Title: "A", Path: "A", MoveGenre: "Drama"},
		testsupport.Movie{Title: "B", Path: "B"},
		testsupport.Movie{Title: "C", Path: "C", MoveGenre: "Comedy"},
	)
	f.fake.FailMove("C", http.StatusInternalServerError)
	s := f.open(t)

	controls := s.Controls()
	if len(controls) != 2 || controls[0].Target().Path != "A" || controls[1].Target().Path != "C" {
		t.Fatalf("unexpected controls %d", len(controls))
	}
	open, err := f.store.ListOpen(context.Background(), testsupport.DefaultFolder)
	if err != nil || len(open) != 2 {
		t.Fatalf("expected page moves recorded, got %d (%v)", len(open), err)
	}

	summary, err := s.Apply(context.Background(), nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if summary.Completed+summary.Failed != summary.Total || summary.Total != 2 || summary.Failed != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(f.fake.Requests("/move_movie")) != 2 {
		t.Fatal("expected one request per control")
	}
	if len(f.alerts.msgs) != 1 || f.alerts.msgs[0] != moveaction.FailureMessage {
		t.Fatalf("unexpected alerts %v", f.alerts.msgs)
	}
	if got := titles(s.Table().Rows()); !slices.Equal(got, []string{"B", "C"}) {
		t.Fatalf("unexpected rows after apply %v", got)
	}
	if c, err := s.Control("C"); err != nil || c.State() != moveaction.StateRetry {
		t.Fatalf("expected C in retry, got %v", err)
	}

	// Reopening keeps the failed move as a pending control.
	reopened := f.open(t)
	if got := reopened.Controls(); len(got) != 1 || got[0].Target().Path != "C" {
		t.Fatalf("expected failed control to persist, got %d", len(got))
	}
}

func TestStalePendingMovesAreDropped(t *testing.T) {
	f := newFixture(t, testsupport.Movie{Title: "Heat", Path: "Heat"})
	testsupport.Enqueue(t, f.store, testsupport.DefaultFolder, "Gone", "Drama")
	testsupport.Enqueue(t, f.store, "/elsewhere", "Other", "Drama")

	s := f.open(t)
	if len(s.Controls()) != 0 {
		t.Fatal("expected no controls")
	}
	if item, _ := f.store.Get(context.Background(), testsupport.DefaultFolder, "Gone"); item != nil {
		t.Fatalf("expected stale move dropped, got %+v", item)
	}
	if item, _ := f.store.Get(context.Background(), "/elsewhere", "Other"); item == nil {
		t.Fatal("moves of other folders must be kept")
	}
}

func TestSelectAndMove(t *testing.T) {
	f := newFixture(t, testsupport.Movie{Title: "Heat (1995)", Path: "heat-1995", CurrentGenre: "Crime"})
	s := f.open(t)

	if _, err := s.Select(context.Background(), "Heat (1995)", "Noir", suggestion.ActionAdd); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !slices.Contains(s.Genres(), "Noir") {
		t.Fatalf("expected Noir in genres, got %v", s.Genres())
	}
	control, err := s.Move(context.Background(), "heat-1995")
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !control.Done() || s.Table().Len() != 0 {
		t.Fatal("expected movie moved and row removed")
	}
	if _, err := s.Move(context.Background(), "heat-1995"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found after move, got %v", err)
	}
}

func TestOpenSurfacesPageError(t *testing.T) {
	f := newFixture(t)
	f.fake.SetPageError("Folder not found")
	_, err := session.Open(context.Background(), session.Options{
		Config:  f.cfg,
		Backend: backend.NewClient(f.fake.URL),
		Store:   f.store,
	}, "/missing")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestOpenUsesConfigGenresWhenPageHasNone(t *testing.T) {
	f := newFixture(t, testsupport.Movie{Title: "Heat", Path: "Heat"})
	f.fake.SetGenres()
	f.cfg.Library.Genres = []string{"Western"}
	s := f.open(t)
	if got := s.Genres(); !slices.Equal(got, []string{"Western"}) {
		t.Fatalf("expected configured genres, got %v", got)
	}
}

func TestRowSuggestsClosestTitle(t *testing.T) {
	f := newFixture(t,
		testsupport.Movie{Title: "Blade Runner (1982)", Path: "Blade Runner (1982)"},
		testsupport.Movie{Title: "Heat (1995)", Path: "Heat (1995)"},
	)
	s := f.open(t)

	_, err := s.Row("blade runner")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), `did you mean "Blade Runner (1982)"?`) {
		t.Fatalf("expected hint in %v", err)
	}

	_, err = s.Row("Alien")
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Fatalf("expected plain not found, got %v", err)
	}
}

// staticPage serves fixed markup in place of the backend's movies page.
type staticPage struct {
	*backend.Client
	markup string
}

func (p staticPage) MoviesPage(context.Context, string) ([]byte, error) {
	return []byte(p.markup), nil
}

func TestOpenWithoutTableFolderKeepsOtherFolders(t *testing.T) {
	f := newFixture(t)
	f.cfg.Library.MovieFolders = nil
	testsupport.Enqueue(t, f.store, "/movies/b", "Alien (1979)", "Horror")
	testsupport.Enqueue(t, f.store, "/movies/a", "Ghost (1990)", "Drama")
	testsupport.Enqueue(t, f.store, "/movies/a", "Heat (1995)", "Action")

	markup := `<table><tbody>
<tr><td>Heat (1995)</td><td class="current-genre">Crime</td>
<td class="suggestion-cell"><button class="suggestion-button" data-path="Heat (1995)" data-base-folder="/movies/a">Suggest</button></td>
<td class="actions-cell"></td></tr>
</tbody></table>`
	s, err := session.Open(context.Background(), session.Options{
		Config:  f.cfg,
		Backend: staticPage{Client: backend.NewClient(f.fake.URL), markup: markup},
		Store:   f.store,
		Alerter: f.alerts,
	}, "")
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	t.Cleanup(s.Close)

	if s.Folder() != "/movies/a" {
		t.Fatalf("expected folder from the row, got %q", s.Folder())
	}
	other, err := f.store.Get(context.Background(), "/movies/b", "Alien (1979)")
	if err != nil || other == nil || !other.Status.Open() {
		t.Fatalf("pending move in another folder must survive, got %+v %v", other, err)
	}
	gone, _ := f.store.Get(context.Background(), "/movies/a", "Ghost (1990)")
	if gone != nil {
		t.Fatalf("expected stale move in the page folder to be dropped, got %+v", gone)
	}
	control, err := s.Control("Heat (1995)")
	if err != nil || control.Target().Genre != "Action" || control.Target().BaseFolder != "/movies/a" {
		t.Fatalf("expected restored control for Heat, got %v", err)
	}
}

func TestOpenEmptyPageWithoutFolderDropsNothing(t *testing.T) {
	f := newFixture(t)
	f.cfg.Library.MovieFolders = nil
	testsupport.Enqueue(t, f.store, "/movies/b", "Alien (1979)", "Horror")

	s, err := session.Open(context.Background(), session.Options{
		Config:  f.cfg,
		Backend: staticPage{Client: backend.NewClient(f.fake.URL), markup: `<table><tbody></tbody></table>`},
		Store:   f.store,
	}, "")
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	t.Cleanup(s.Close)

	if s.Folder() != "" {
		t.Fatalf("expected no folder, got %q", s.Folder())
	}
	item, err := f.store.Get(context.Background(), "/movies/b", "Alien (1979)")
	if err != nil || item == nil || !item.Status.Open() {
		t.Fatalf("pending move must survive an empty page, got %+v %v", item, err)
	}
}
