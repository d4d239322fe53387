package queue_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"movieorg/internal/movietable"
	"movieorg/internal/queue"
	"movieorg/internal/services"
	"movieorg/internal/testsupport"
)

const folder = "/srv/movies"

func TestEnqueueAndListOpen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.Enqueue(t, store, folder, "Heat.mkv", "Action")
	if first.ID == 0 || first.Status != queue.StatusPending {
		t.Fatalf("unexpected item: %#v", first)
	}
	testsupport.Enqueue(t, store, folder, "Alien.mkv", "Horror")
	testsupport.Enqueue(t, store, "/other", "Brazil.mkv", "Comedy")

	items, err := store.ListOpen(ctx, folder)
	if err != nil {
		t.Fatalf("ListOpen failed: %v", err)
	}
	if len(items) != 2 || items[0].Path != "Heat.mkv" || items[1].Path != "Alien.mkv" {
		t.Fatalf("unexpected open items: %#v", items)
	}

	all, err := store.ListOpen(ctx, "")
	if err != nil {
		t.Fatalf("ListOpen failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 open items across folders, got %d", len(all))
	}
}

func TestEnqueueReplacesGenreAndResets(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.Enqueue(t, store, folder, "Heat.mkv", "Action")
	if err := store.MarkMoving(ctx, folder, "Heat.mkv", "run-1"); err != nil {
		t.Fatal(err)
	}
	if err := store.MarkFailed(ctx, folder, "Heat.mkv", "http 500"); err != nil {
		t.Fatal(err)
	}

	item := testsupport.Enqueue(t, store, folder, "Heat.mkv", "Drama")
	if item.Genre != "Drama" || item.Status != queue.StatusPending || item.Attempts != 0 || item.LastError != "" {
		t.Fatalf("expected reset item, got %#v", item)
	}
}

func TestEnqueueRequiresFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, err := store.Enqueue(context.Background(), folder, " ", "Action")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMoveLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.Enqueue(t, store, folder, "Heat.mkv", "Action")
	if err := store.MarkMoving(ctx, folder, "Heat.mkv", "run-1"); err != nil {
		t.Fatal(err)
	}
	if err := store.MarkFailed(ctx, folder, "Heat.mkv", "http 500"); err != nil {
		t.Fatal(err)
	}
	item, err := store.Get(ctx, folder, "Heat.mkv")
	if err != nil {
		t.Fatal(err)
	}
	if item.Status != queue.StatusFailed || item.LastError != "http 500" || item.Attempts != 1 || item.RunID != "run-1" {
		t.Fatalf("unexpected failed item: %#v", item)
	}
	if !item.Status.Open() {
		t.Fatal("failed move should stay open for retry")
	}

	if err := store.MarkMoving(ctx, folder, "Heat.mkv", ""); err != nil {
		t.Fatal(err)
	}
	if err := store.MarkMoved(ctx, folder, "Heat.mkv"); err != nil {
		t.Fatal(err)
	}
	item, _ = store.Get(ctx, folder, "Heat.mkv")
	if item.Status != queue.StatusMoved || item.Attempts != 2 || item.LastError != "" {
		t.Fatalf("unexpected moved item: %#v", item)
	}

	open, err := store.ListOpen(ctx, folder)
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 0 {
		t.Fatalf("expected no open moves, got %d", len(open))
	}

	history, err := store.History(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Status != queue.StatusMoved {
		t.Fatalf("unexpected history: %#v", history)
	}
}

func TestTransitionUnknownMove(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	err := store.MarkMoved(context.Background(), folder, "missing.mkv")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResetStuckAndRemove(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.Enqueue(t, store, folder, "Heat.mkv", "Action")
	if err := store.MarkMoving(ctx, folder, "Heat.mkv", "run-1"); err != nil {
		t.Fatal(err)
	}
	n, err := store.ResetStuck(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 reset, got %d", n)
	}
	item, _ := store.Get(ctx, folder, "Heat.mkv")
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending after reset, got %s", item.Status)
	}

	removed, err := store.Remove(ctx, folder, "Heat.mkv")
	if err != nil || !removed {
		t.Fatalf("expected removal, got %v %v", removed, err)
	}
	if item, _ := store.Get(ctx, folder, "Heat.mkv"); item != nil {
		t.Fatalf("expected no item after removal, got %#v", item)
	}
}

func TestSortStatePersistsAcrossReopen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	state, err := store.LoadSortState(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if state.Active() {
		t.Fatalf("expected unsorted default, got %s", state)
	}
	want := movietable.SortState{Column: movietable.ColumnCurrentGenre, Direction: movietable.Descending}
	if err := store.SaveSortState(ctx, want); err != nil {
		t.Fatal(err)
	}
	raw, ok, err := store.GetPreference(ctx, queue.SortStateKey)
	if err != nil || !ok {
		t.Fatalf("expected stored preference, got %v %v", ok, err)
	}
	if raw != `{"column":"1","direction":"desc"}` {
		t.Fatalf("unexpected stored value: %s", raw)
	}
	store.Close()

	reopened, err := queue.OpenPath(filepath.Join(cfg.Paths.DataDir, "state.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	got, err := reopened.LoadSortState(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("unexpected restored state: %+v", got)
	}
}

func TestCorruptSortStateLoadsUnsorted(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.SetPreference(ctx, queue.SortStateKey, "{not json"); err != nil {
		t.Fatal(err)
	}
	state, err := store.LoadSortState(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if state != movietable.Unsorted {
		t.Fatalf("expected unsorted, got %+v", state)
	}

	if err := store.DeletePreference(ctx, queue.SortStateKey); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.GetPreference(ctx, queue.SortStateKey); ok {
		t.Fatal("expected preference deleted")
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := queue.ParseStatus(" Failed "); !ok || status != queue.StatusFailed {
		t.Fatalf("unexpected parse: %v %v", status, ok)
	}
	if _, ok := queue.ParseStatus("review"); ok {
		t.Fatal("expected unknown status")
	}
}
