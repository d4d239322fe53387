package movietable

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"movieorg/internal/services"
)

var (
	// ErrUnknownColumn reports a column outside the table.
	ErrUnknownColumn = fmt.Errorf("%w: unknown column", services.ErrValidation)
	// ErrStateNotSaved reports that rows were sorted but the state was not persisted.
	ErrStateNotSaved = errors.New("sort state not saved")
)

// Row is one movie in the table.
type Row struct {
	Title          string
	Path           string
	BaseFolder     string
	CurrentGenre   string
	SuggestedGenre string
	// Action is the text of the actions cell, e.g. "Move to Action".
	Action string
}

// Cell returns the raw text of the given column.
func (r Row) Cell(col Column) string {
	switch col {
	case ColumnTitle:
		return r.Title
	case ColumnCurrentGenre:
		return r.CurrentGenre
	case ColumnSuggestedGenre:
		return r.SuggestedGenre
	case ColumnActions:
		return r.Action
	default:
		return ""
	}
}

// StateSaver persists the sort state after each sort.
type StateSaver interface {
	SaveSortState(ctx context.Context, state SortState) error
}

// Table holds the rows of one folder in display order. It is owned by a
// single session and is not safe for concurrent use.
type Table struct {
	rows  []*Row
	state SortState
	saver StateSaver
}

// New builds a table in the given row order.
func New(rows []Row, saver StateSaver) *Table {
	t := &Table{
		rows:  make([]*Row, 0, len(rows)),
		state: Unsorted,
		saver: saver,
	}
	for i := range rows {
		row := rows[i]
		t.rows = append(t.rows, &row)
	}
	return t
}

// Len returns the number of rows in view.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a snapshot of the rows in display order.
func (t *Table) Rows() []Row {
	out := make([]Row, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, *row)
	}
	return out
}

// State returns the active sort state.
func (t *Table) State() SortState {
	return t.state
}

// Find returns the row for path.
func (t *Table) Find(path string) (*Row, bool) {
	for _, row := range t.rows {
		if row.Path == path {
			return row, true
		}
	}
	return nil, false
}

// Remove drops the row for path from view. It reports whether a row was removed.
func (t *Table) Remove(path string) bool {
	for i, row := range t.rows {
		if row.Path == path {
			t.rows = slices.Delete(t.rows, i, i+1)
			return true
		}
	}
	return false
}

// Sort orders the rows by col. Sorting the active column flips its direction;
// any other column sorts ascending. The resulting state is saved; a save
// failure is returned after the rows have been reordered.
func (t *Table) Sort(ctx context.Context, col Column) (SortState, error) {
	if !col.Valid() {
		return t.state, fmt.Errorf("%w: %d", ErrUnknownColumn, int(col))
	}
	direction := Ascending
	if t.state.Column == col {
		direction = t.state.Direction.Flip()
	}
	t.apply(SortState{Column: col, Direction: direction})
	return t.state, t.save(ctx)
}

// Restore applies a previously saved state without changing its direction.
// An inactive state leaves the rows untouched.
func (t *Table) Restore(state SortState) {
	if !state.Active() {
		return
	}
	if state.Direction != Descending {
		state.Direction = Ascending
	}
	t.apply(state)
}

func (t *Table) apply(state SortState) {
	sign := state.Direction.sign()
	slices.SortStableFunc(t.rows, func(a, b *Row) int {
		return sign * cmp.Compare(
			strings.TrimSpace(a.Cell(state.Column)),
			strings.TrimSpace(b.Cell(state.Column)),
		)
	})
	t.state = state
}

func (t *Table) save(ctx context.Context) error {
	if t.saver == nil {
		return nil
	}
	if err := t.saver.SaveSortState(ctx, t.state); err != nil {
		return errors.Join(ErrStateNotSaved, err)
	}
	return nil
}
