package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a pending move.
type Status string

const (
	StatusPending Status = "pending"
	StatusMoving  Status = "moving"
	StatusMoved   Status = "moved"
	StatusFailed  Status = "failed"
)

var allStatuses = []Status{StatusPending, StatusMoving, StatusMoved, StatusFailed}

// ParseStatus normalizes a status string; ok is false for unknown values.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// Open reports whether the move still has a control on the page.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusMoving || s == StatusFailed
}

// Item is one move control recorded for a movie.
type Item struct {
	ID         int64
	BaseFolder string
	Path       string
	Genre      string
	Status     Status
	LastError  string
	Attempts   int
	RunID      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
