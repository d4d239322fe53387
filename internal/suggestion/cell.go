package suggestion

import (
	"sync"
	"time"
)

const (
	// ErrorMessage is shown in the cell when a suggestion cannot be fetched.
	ErrorMessage = "Error getting suggestion. Please try again."
	// LoadingMessage is shown while a suggestion is being fetched.
	LoadingMessage = "Getting suggestion..."
)

// CellState describes what the suggestion cell is showing.
type CellState string

const (
	CellIdle      CellState = "idle"
	CellLoading   CellState = "loading"
	CellSuggested CellState = "suggested"
	CellError     CellState = "error"
)

// Action is what a menu entry does with its genre.
type Action string

const (
	ActionSelect Action = "select"
	ActionAdd    Action = "add"
	ActionCustom Action = "custom"
)

// MenuEntry is one choice in the suggestion menu.
type MenuEntry struct {
	Label  string
	Genre  string
	Action Action
}

// Menu lists the choices offered for a suggested genre: add it, add a custom
// genre, then every configured genre.
func Menu(suggested string, genres []string) []MenuEntry {
	entries := make([]MenuEntry, 0, len(genres)+2)
	entries = append(entries,
		MenuEntry{Label: `Add "` + suggested + `" as new genre`, Genre: suggested, Action: ActionAdd},
		MenuEntry{Label: "Add custom genre...", Action: ActionCustom},
	)
	for _, g := range genres {
		entries = append(entries, MenuEntry{Label: g, Genre: g, Action: ActionSelect})
	}
	return entries
}

type snapshot struct {
	state CellState
	text  string
	menu  []MenuEntry
}

// Cell is the suggestion cell of one row. It is safe for concurrent use; the
// error revert runs on a timer goroutine.
type Cell struct {
	mu      sync.Mutex
	current snapshot
	// settled is the last idle or suggested content; errors revert to it.
	settled snapshot
	timer   *time.Timer
	// gen invalidates pending reverts whenever the cell changes.
	gen uint64
}

func newCell(text string) *Cell {
	initial := snapshot{state: CellIdle, text: text}
	return &Cell{current: initial, settled: initial}
}

// State returns what the cell is showing.
func (c *Cell) State() CellState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.state
}

// Text returns the cell's visible text.
func (c *Cell) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.text
}

// Menu returns the menu shown next to a suggestion, if any.
func (c *Cell) Menu() []MenuEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]MenuEntry(nil), c.current.menu...)
}

func (c *Cell) begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.current = snapshot{state: CellLoading, text: LoadingMessage}
}

func (c *Cell) show(genre string, menu []MenuEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.current = snapshot{state: CellSuggested, text: genre, menu: menu}
	c.settled = c.current
}

// fail shows the error and restores the settled content after delay.
func (c *Cell) fail(delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.current = snapshot{state: CellError, text: ErrorMessage}
	gen := c.gen
	c.timer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen != gen {
			return
		}
		c.current = c.settled
		c.timer = nil
	})
}

func (c *Cell) stopLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Close cancels a pending revert.
func (c *Cell) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}
