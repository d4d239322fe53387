package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"movieorg/internal/services"
)

const itemColumns = `id, base_folder, path, genre, status, last_error, attempts, run_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		item      Item
		status    string
		lastError sql.NullString
		runID     sql.NullString
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&item.ID, &item.BaseFolder, &item.Path, &item.Genre, &status,
		&lastError, &item.Attempts, &runID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	item.Status = Status(status)
	item.LastError = lastError.String
	item.RunID = runID.String
	item.CreatedAt = parseTimestamp(createdAt)
	item.UpdatedAt = parseTimestamp(updatedAt)
	return &item, nil
}

// Enqueue records a pending move of path into genre. An existing record for
// the same movie is replaced: its genre changes and it becomes pending again.
func (s *Store) Enqueue(ctx context.Context, baseFolder, path, genre string) (*Item, error) {
	baseFolder = strings.TrimSpace(baseFolder)
	path = strings.TrimSpace(path)
	genre = strings.TrimSpace(genre)
	if baseFolder == "" || path == "" || genre == "" {
		return nil, services.Wrap(services.ErrValidation, "queue", "enqueue", "base folder, path, and genre are required", nil)
	}

	ts := s.timestamp()
	_, err := s.execWithRetry(ctx,
		`INSERT INTO moves (base_folder, path, genre, status, attempts, created_at, updated_at)
         VALUES (?, ?, ?, ?, 0, ?, ?)
         ON CONFLICT (base_folder, path) DO UPDATE SET
            genre = excluded.genre,
            status = excluded.status,
            last_error = NULL,
            attempts = 0,
            run_id = NULL,
            updated_at = excluded.updated_at`,
		baseFolder, path, genre, StatusPending, ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("enqueue move: %w", err)
	}
	return s.Get(ctx, baseFolder, path)
}

// Get returns the move recorded for path, or nil when there is none.
func (s *Store) Get(ctx context.Context, baseFolder, path string) (*Item, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+itemColumns+` FROM moves WHERE base_folder = ? AND path = ?`, baseFolder, path)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get move: %w", err)
	}
	return item, nil
}

// ListOpen returns the moves that still have a control on the page for
// baseFolder, oldest first. An empty baseFolder lists every folder.
func (s *Store) ListOpen(ctx context.Context, baseFolder string) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM moves WHERE status IN (?, ?, ?)`
	args := []any{StatusPending, StatusMoving, StatusFailed}
	if baseFolder != "" {
		query += ` AND base_folder = ?`
		args = append(args, baseFolder)
	}
	query += ` ORDER BY id`
	return s.query(ctx, query, args...)
}

// History returns the most recently updated moves, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]*Item, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.query(ctx, `SELECT `+itemColumns+` FROM moves ORDER BY updated_at DESC, id DESC LIMIT ?`, limit)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]*Item, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query moves: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moves: %w", err)
	}
	return items, nil
}

// MarkMoving records the start of a move attempt.
func (s *Store) MarkMoving(ctx context.Context, baseFolder, path, runID string) error {
	return s.transition(ctx, baseFolder, path,
		`status = ?, attempts = attempts + 1, run_id = ?, updated_at = ?`,
		StatusMoving, nullableString(runID), s.timestamp())
}

// MarkMoved records a successful move.
func (s *Store) MarkMoved(ctx context.Context, baseFolder, path string) error {
	return s.transition(ctx, baseFolder, path,
		`status = ?, last_error = NULL, updated_at = ?`,
		StatusMoved, s.timestamp())
}

// MarkFailed records a failed move; the control stays open for a retry.
func (s *Store) MarkFailed(ctx context.Context, baseFolder, path, message string) error {
	return s.transition(ctx, baseFolder, path,
		`status = ?, last_error = ?, updated_at = ?`,
		StatusFailed, nullableString(message), s.timestamp())
}

// Remove deletes the move recorded for path.
func (s *Store) Remove(ctx context.Context, baseFolder, path string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM moves WHERE base_folder = ? AND path = ?`, baseFolder, path)
	if err != nil {
		return false, fmt.Errorf("remove move: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ResetStuck returns moves left in StatusMoving by an interrupted run to
// StatusPending.
func (s *Store) ResetStuck(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE moves SET status = ?, updated_at = ? WHERE status = ?`,
		StatusPending, s.timestamp(), StatusMoving)
	if err != nil {
		return 0, fmt.Errorf("reset stuck moves: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) transition(ctx context.Context, baseFolder, path, set string, args ...any) error {
	args = append(args, baseFolder, path)
	res, err := s.execWithRetry(ctx, `UPDATE moves SET `+set+` WHERE base_folder = ? AND path = ?`, args...)
	if err != nil {
		return fmt.Errorf("update move: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: no move recorded for %s", services.ErrNotFound, path)
	}
	return nil
}
