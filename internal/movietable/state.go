package movietable

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Direction is the sort order of the active column.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

func (d Direction) sign() int {
	if d == Descending {
		return -1
	}
	return 1
}

// SortState records the single active sort key.
type SortState struct {
	Column    Column
	Direction Direction
}

// Unsorted is the state of a table that has never been sorted.
var Unsorted = SortState{Column: NoColumn, Direction: Ascending}

// Active reports whether a column is currently sorted.
func (s SortState) Active() bool {
	return s.Column.Valid()
}

func (s SortState) String() string {
	if !s.Active() {
		return "unsorted"
	}
	return fmt.Sprintf("%s %s", s.Column, s.Direction)
}

// wireSortState mirrors the stored value: both fields are strings, matching
// the attributes the page keeps on its table body.
type wireSortState struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

// MarshalJSON encodes the state as {"column":"<index>","direction":"asc|desc"}.
func (s SortState) MarshalJSON() ([]byte, error) {
	wire := wireSortState{Direction: string(s.Direction)}
	if s.Active() {
		wire.Column = strconv.Itoa(int(s.Column))
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes a stored state. Unknown columns decode as unsorted and
// unknown directions as ascending.
func (s *SortState) UnmarshalJSON(data []byte) error {
	var wire wireSortState
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*s = Unsorted
	if idx, err := strconv.Atoi(strings.TrimSpace(wire.Column)); err == nil && Column(idx).Valid() {
		s.Column = Column(idx)
	}
	if Direction(strings.TrimSpace(wire.Direction)) == Descending {
		s.Direction = Descending
	}
	return nil
}
