package backend

import (
	"errors"
	"fmt"
	"strings"

	"movieorg/internal/services"
)

// StatusError reports a non-2xx reply from the backend.
type StatusError struct {
	Endpoint   string
	StatusCode int
	// Message is the backend's "error" field when the reply carried one.
	Message string
}

func (e *StatusError) Error() string {
	if msg := strings.TrimSpace(e.Message); msg != "" {
		return fmt.Sprintf("%s: http %d: %s", e.Endpoint, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: http %d", e.Endpoint, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return services.ErrBackend
}

// ErrNoGenre reports a suggestion reply that carried no genre.
var ErrNoGenre = fmt.Errorf("%w: suggestion returned no genre", services.ErrBackend)

// StatusCode returns the HTTP status carried by err, or 0 when err did not
// come from a backend reply.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
