package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"movieorg/internal/movietable"
)

// SortStateKey is the preference key holding the table sort state.
const SortStateKey = "tableSortState"

// GetPreference returns the stored value for key; ok is false when unset.
func (s *Store) GetPreference(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ensureContext(ctx), `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference %q: %w", key, err)
	}
	return value, true, nil
}

// SetPreference stores value under key, replacing any previous value.
func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.execWithRetry(ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
         ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.timestamp())
	if err != nil {
		return fmt.Errorf("set preference %q: %w", key, err)
	}
	return nil
}

// DeletePreference removes key.
func (s *Store) DeletePreference(ctx context.Context, key string) error {
	if _, err := s.execWithRetry(ctx, `DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete preference %q: %w", key, err)
	}
	return nil
}

// LoadSortState returns the saved sort state, or movietable.Unsorted when
// nothing usable is stored.
func (s *Store) LoadSortState(ctx context.Context) (movietable.SortState, error) {
	raw, ok, err := s.GetPreference(ctx, SortStateKey)
	if err != nil || !ok {
		return movietable.Unsorted, err
	}
	var state movietable.SortState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return movietable.Unsorted, nil
	}
	return state, nil
}

// SaveSortState stores state under SortStateKey.
func (s *Store) SaveSortState(ctx context.Context, state movietable.SortState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode sort state: %w", err)
	}
	return s.SetPreference(ctx, SortStateKey, string(data))
}
