package movietable

import (
	"fmt"
	"strconv"
	"strings"

	"movieorg/internal/services"
)

// Column identifies a table column by its position.
type Column int

const (
	ColumnTitle Column = iota
	ColumnCurrentGenre
	ColumnSuggestedGenre
	ColumnActions

	columnCount = int(ColumnActions) + 1
)

// NoColumn marks a table that has never been sorted.
const NoColumn Column = -1

var columnNames = [columnCount]string{"Title", "Current Genre", "Suggested Genre", "Actions"}

var columnAliases = map[string]Column{
	"title":           ColumnTitle,
	"name":            ColumnTitle,
	"genre":           ColumnCurrentGenre,
	"current":         ColumnCurrentGenre,
	"current genre":   ColumnCurrentGenre,
	"current-genre":   ColumnCurrentGenre,
	"suggested":       ColumnSuggestedGenre,
	"suggestion":      ColumnSuggestedGenre,
	"suggested genre": ColumnSuggestedGenre,
	"suggested-genre": ColumnSuggestedGenre,
	"action":          ColumnActions,
	"actions":         ColumnActions,
}

// Valid reports whether c names a real column.
func (c Column) Valid() bool {
	return c >= 0 && int(c) < columnCount
}

func (c Column) String() string {
	if !c.Valid() {
		return "none"
	}
	return columnNames[c]
}

// Headers returns the column headers in display order.
func Headers() []string {
	return append([]string(nil), columnNames[:]...)
}

// ParseColumn resolves a column index ("0".."3") or a case-insensitive name.
func ParseColumn(value string) (Column, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return NoColumn, services.Wrap(services.ErrValidation, "movietable", "parse column", "column is required", nil)
	}
	if idx, err := strconv.Atoi(trimmed); err == nil {
		col := Column(idx)
		if !col.Valid() {
			return NoColumn, fmt.Errorf("%w: %d", ErrUnknownColumn, idx)
		}
		return col, nil
	}
	if col, ok := columnAliases[trimmed]; ok {
		return col, nil
	}
	return NoColumn, fmt.Errorf("%w: %q", ErrUnknownColumn, value)
}
