package suggestion_test

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"testing"
	"time"

	"movieorg/internal/backend"
	"movieorg/internal/moveaction"
	"movieorg/internal/movietable"
	"movieorg/internal/suggestion"
	"movieorg/internal/testsupport"
)

type recorder struct {
	mu        sync.Mutex
	alerts    []string
	targets   []moveaction.Target
	mover     moveaction.Mover
	injectErr error
	controls  []*moveaction.Control
}

func (r *recorder) Alert(_ context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, message)
}

func (r *recorder) InjectMove(_ context.Context, target moveaction.Target) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.injectErr != nil {
		return r.injectErr
	}
	r.targets = append(r.targets, target)
	if r.mover != nil {
		r.controls = append(r.controls, moveaction.New(target, moveaction.Deps{Mover: r.mover}))
	}
	return nil
}

type prompter struct {
	answer string
	ok     bool
	asked  []string
}

func (p *prompter) Prompt(_ context.Context, message string) (string, bool) {
	p.asked = append(p.asked, message)
	return p.answer, p.ok
}

func newClient(fake *testsupport.Backend, rec *recorder, p suggestion.Prompter, delay time.Duration) *suggestion.Client {
	client := backend.NewClient(fake.URL)
	return suggestion.New(suggestion.Options{
		Suggester:  client,
		Adder:      client,
		Prompter:   p,
		Alerter:    rec,
		Injector:   rec,
		Genres:     []string{"Action", "Drama"},
		ErrorDelay: delay,
	})
}

func heatRow() *movietable.Row {
	return &movietable.Row{Title: "Heat", Path: "Heat", BaseFolder: testsupport.DefaultFolder, CurrentGenre: "Crime"}
}

func TestFetchInjectsWorkingMoveControl(t *testing.T) {
	fake := testsupport.NewBackend(t, testsupport.Movie{Title: "Heat", Path: "Heat", CurrentGenre: "Crime"})
	fake.Suggest("Heat", http.StatusOK, map[string]any{"genre": "Action", "status": "success"})
	rec := &recorder{mover: backend.NewClient(fake.URL)}
	client := newClient(fake, rec, nil, 0)
	row := heatRow()

	genre, err := client.Fetch(context.Background(), row)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if genre != "Action" || row.SuggestedGenre != "Action" || row.Action != "Move to Action" {
		t.Fatalf("unexpected row after fetch %+v", row)
	}
	cell := client.Cell(row)
	if cell.State() != suggestion.CellSuggested || cell.Text() != "Action" {
		t.Fatalf("unexpected cell %s %q", cell.State(), cell.Text())
	}
	menu := cell.Menu()
	wantLabels := []string{`Add "Action" as new genre`, "Add custom genre...", "Action", "Drama"}
	var labels []string
	for _, entry := range menu {
		labels = append(labels, entry.Label)
	}
	if !slices.Equal(labels, wantLabels) {
		t.Fatalf("unexpected menu %v", labels)
	}
	if menu[0].Action != suggestion.ActionAdd || menu[1].Action != suggestion.ActionCustom || menu[2].Action != suggestion.ActionSelect {
		t.Fatalf("unexpected menu actions %+v", menu)
	}

	if len(rec.targets) != 1 {
		t.Fatalf("expected one injected control, got %d", len(rec.targets))
	}
	want := moveaction.Target{Path: "Heat", BaseFolder: testsupport.DefaultFolder, Genre: "Action"}
	if rec.targets[0] != want {
		t.Fatalf("unexpected target %+v", rec.targets[0])
	}
	if err := rec.controls[0].Move(context.Background()); err != nil {
		t.Fatalf("injected control Move: %v", err)
	}
	moves := fake.Requests("/move_movie")
	if len(moves) != 1 || moves[0].Body["genre"] != "Action" || moves[0].Body["path"] != "Heat" {
		t.Fatalf("unexpected move requests %+v", moves)
	}
}

func TestFetchSameGenreDoesNotInject(t *testing.T) {
	fake := testsupport.NewBackend(t)
	fake.Suggest("Heat", http.StatusOK, map[string]any{"genre": "CRIME", "status": "success"})
	rec := &recorder{}
	client := newClient(fake, rec, nil, 0)
	row := heatRow()

	if _, err := client.Fetch(context.Background(), row); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(rec.targets) != 0 || row.Action != "" {
		t.Fatalf("expected no control for same genre, got %+v", rec.targets)
	}
	if row.SuggestedGenre != "CRIME" {
		t.Fatalf("unexpected suggestion %q", row.SuggestedGenre)
	}
}

func TestFetchErrorRevertsAfterDelay(t *testing.T) {
	fake := testsupport.NewBackend(t)
	fake.Suggest("Heat", http.StatusInternalServerError, map[string]any{"error": "boom"})
	rec := &recorder{}
	client := newClient(fake, rec, nil, 30*time.Millisecond)
	row := heatRow()
	row.SuggestedGenre = "Thriller"

	if _, err := client.Fetch(context.Background(), row); err == nil {
		t.Fatal("expected error")
	}
	cell := client.Cell(row)
	if cell.State() != suggestion.CellError || cell.Text() != suggestion.ErrorMessage {
		t.Fatalf("expected error cell, got %s %q", cell.State(), cell.Text())
	}
	if row.SuggestedGenre != "Thriller" || len(rec.targets) != 0 {
		t.Fatalf("failed fetch must not change the row: %+v", row)
	}

	deadline := time.Now().Add(5 * time.Second)
	for cell.State() == suggestion.CellError {
		if time.Now().After(deadline) {
			t.Fatal("cell never reverted")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if cell.State() != suggestion.CellIdle || cell.Text() != "Thriller" {
		t.Fatalf("expected prior content, got %s %q", cell.State(), cell.Text())
	}
}

func TestFetchEmptyGenreIsAnError(t *testing.T) {
	fake := testsupport.NewBackend(t)
	fake.Suggest("Heat", http.StatusOK, map[string]any{"genre": "", "status": "success"})
	rec := &recorder{}
	client := newClient(fake, rec, nil, time.Hour)
	defer client.Close()
	row := heatRow()

	if _, err := client.Fetch(context.Background(), row); !errors.Is(err, backend.ErrNoGenre) {
		t.Fatalf("expected ErrNoGenre, got %v", err)
	}
	if client.Cell(row).State() != suggestion.CellError {
		t.Fatal("expected error cell")
	}
}

func TestRefetchAfterErrorCancelsRevert(t *testing.T) {
	fake := testsupport.NewBackend(t)
	fake.Suggest("Heat", http.StatusBadGateway, map[string]any{"error": "down"})
	rec := &recorder{}
	client := newClient(fake, rec, nil, 20*time.Millisecond)
	row := heatRow()

	if _, err := client.Fetch(context.Background(), row); err == nil {
		t.Fatal("expected error")
	}
	fake.Suggest("Heat", http.StatusOK, map[string]any{"genre": "Action"})
	if _, err := client.Fetch(context.Background(), row); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	time.Sleep(60 * time.Millisecond)
	if cell := client.Cell(row); cell.Text() != "Action" {
		t.Fatalf("stale revert overwrote suggestion: %q", cell.Text())
	}
}

func TestSelectExistingGenre(t *testing.T) {
	fake := testsupport.NewBackend(t)
	rec := &recorder{}
	client := newClient(fake, rec, nil, 0)
	row := heatRow()

	genre, err := client.Select(context.Background(), row, "Drama", suggestion.ActionSelect)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if genre != "Drama" || row.SuggestedGenre != "Drama" || client.Cell(row).Text() != "Drama" {
		t.Fatalf("unexpected row %+v", row)
	}
	if len(fake.Requests("/add_genre")) != 0 {
		t.Fatal("select must not add a genre")
	}
	if len(rec.targets) != 1 || rec.targets[0].Genre != "Drama" {
		t.Fatalf("unexpected injected targets %+v", rec.targets)
	}

	if _, err := client.Select(context.Background(), row, " ", suggestion.ActionSelect); !errors.Is(err, suggestion.ErrNoGenre) {
		t.Fatalf("expected ErrNoGenre, got %v", err)
	}
}

func TestSelectAddRegistersGenre(t *testing.T) {
	fake := testsupport.NewBackend(t)
	rec := &recorder{}
	client := newClient(fake, rec, nil, 0)
	row := heatRow()

	if _, err := client.Select(context.Background(), row, "Noir", suggestion.ActionAdd); err != nil {
		t.Fatalf("Select: %v", err)
	}
	adds := fake.Requests("/add_genre")
	if len(adds) != 1 || adds[0].Body["genre"] != "Noir" {
		t.Fatalf("unexpected add requests %+v", adds)
	}
	if !slices.Contains(client.Genres(), "Noir") {
		t.Fatalf("expected Noir in menu genres, got %v", client.Genres())
	}
	if len(rec.targets) != 1 || rec.targets[0].Genre != "Noir" {
		t.Fatalf("unexpected targets %+v", rec.targets)
	}
}

func TestSelectAddFailureAlerts(t *testing.T) {
	fake := testsupport.NewBackend(t)
	fake.FailAddGenre(http.StatusInternalServerError)
	rec := &recorder{}
	client := newClient(fake, rec, nil, 0)
	row := heatRow()

	if _, err := client.Select(context.Background(), row, "Noir", suggestion.ActionAdd); err == nil {
		t.Fatal("expected error")
	}
	if len(rec.alerts) != 1 || rec.alerts[0] != suggestion.GenreUpdateFailure {
		t.Fatalf("unexpected alerts %v", rec.alerts)
	}
	if row.SuggestedGenre != "" || len(rec.targets) != 0 {
		t.Fatalf("failed add must leave row untouched: %+v", row)
	}
}

func TestSelectCustom(t *testing.T) {
	fake := testsupport.NewBackend(t)
	rec := &recorder{}

	cancelled := &prompter{ok: false}
	client := newClient(fake, rec, cancelled, 0)
	row := heatRow()
	if genre, err := client.Select(context.Background(), row, "", suggestion.ActionCustom); err != nil || genre != "" {
		t.Fatalf("cancelled prompt should abort silently, got %q %v", genre, err)
	}
	if len(cancelled.asked) != 1 || cancelled.asked[0] != suggestion.CustomPrompt {
		t.Fatalf("unexpected prompts %v", cancelled.asked)
	}

	blank := &prompter{answer: "   ", ok: true}
	client = newClient(fake, rec, blank, 0)
	if genre, err := client.Select(context.Background(), row, "", suggestion.ActionCustom); err != nil || genre != "" {
		t.Fatalf("blank answer should abort silently, got %q %v", genre, err)
	}
	if len(fake.Requests("/add_genre")) != 0 {
		t.Fatal("aborted custom genre must not reach backend")
	}

	answered := &prompter{answer: "  Space Opera ", ok: true}
	client = newClient(fake, rec, answered, 0)
	genre, err := client.Select(context.Background(), row, "", suggestion.ActionCustom)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if genre != "Space Opera" {
		t.Fatalf("expected trimmed genre, got %q", genre)
	}
	adds := fake.Requests("/add_genre")
	if len(adds) != 1 || adds[0].Body["genre"] != "Space Opera" {
		t.Fatalf("unexpected add requests %+v", adds)
	}
}

func TestSelectInjectFailureAlerts(t *testing.T) {
	fake := testsupport.NewBackend(t)
	rec := &recorder{injectErr: errors.New("store closed")}
	client := newClient(fake, rec, nil, 0)

	if _, err := client.Select(context.Background(), heatRow(), "Drama", suggestion.ActionSelect); err == nil {
		t.Fatal("expected error")
	}
	if len(rec.alerts) != 1 || rec.alerts[0] != suggestion.GenreUpdateFailure {
		t.Fatalf("unexpected alerts %v", rec.alerts)
	}
}

func TestUnknownAction(t *testing.T) {
	fake := testsupport.NewBackend(t)
	client := newClient(fake, &recorder{}, nil, 0)
	if _, err := client.Select(context.Background(), heatRow(), "Drama", suggestion.Action("bogus")); err == nil {
		t.Fatal("expected error")
	}
}
