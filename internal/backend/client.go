package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"movieorg/internal/config"
	"movieorg/internal/logging"
	"movieorg/internal/services"
)

const (
	defaultHTTPTimeout = 120 * time.Second
	maxReplyBytes      = 4 << 20
)

// HTTPDoer describes the HTTP client used to reach the backend.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to one organizer backend.
type Client struct {
	baseURL string
	http    HTTPDoer
	logger  *slog.Logger
	newID   func() string
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRequestIDs overrides how X-Request-ID values are generated.
func WithRequestIDs(newID func() string) Option {
	return func(c *Client) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// NewClient constructs a client for the backend rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: defaultHTTPTimeout},
		logger:  logging.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "backend")
	return client
}

// NewFromConfig constructs a client from application config.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Client {
	return NewClient(cfg.Backend.URL,
		WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		WithLogger(logger),
	)
}

// BaseURL returns the backend root URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// MoveRequest identifies a movie and the genre folder it should move into.
type MoveRequest struct {
	Path       string
	BaseFolder string
	Genre      string
}

type moveBody struct {
	Path       string `json:"path"`
	MoviePath  string `json:"movie_path"`
	BaseFolder string `json:"base_folder"`
	Genre      string `json:"genre"`
}

// MoveResult is the backend's reply to a successful move.
type MoveResult struct {
	NewPath string `json:"new_path"`
}

// MoveMovie asks the backend to move one movie into its genre folder.
func (c *Client) MoveMovie(ctx context.Context, req MoveRequest) (MoveResult, error) {
	body := moveBody{
		Path:       req.Path,
		MoviePath:  req.Path,
		BaseFolder: req.BaseFolder,
		Genre:      req.Genre,
	}
	var result MoveResult
	if err := c.postJSON(ctx, "/move_movie", body, &result); err != nil {
		return MoveResult{}, err
	}
	return result, nil
}

// AddGenre registers a new genre with the backend.
func (c *Client) AddGenre(ctx context.Context, genre string) error {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return services.Wrap(services.ErrValidation, "backend", "add genre", "genre is required", nil)
	}
	return c.postJSON(ctx, "/add_genre", map[string]string{"genre": genre}, nil)
}

// Suggestion is the backend's genre guess for a movie.
type Suggestion struct {
	Genre   string `json:"genre"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// SuggestGenre requests a genre suggestion. The title is the movie path as
// shown on the page; the backend cleans it up before asking its suggester.
func (c *Client) SuggestGenre(ctx context.Context, title, baseFolder string) (Suggestion, error) {
	var reply Suggestion
	err := c.postJSON(ctx, "/suggest_genre", map[string]string{
		"title":       title,
		"base_folder": baseFolder,
	}, &reply)
	if err != nil {
		return Suggestion{}, err
	}
	if msg := strings.TrimSpace(reply.Error); msg != "" {
		return reply, &StatusError{Endpoint: "/suggest_genre", StatusCode: http.StatusOK, Message: msg}
	}
	reply.Genre = strings.TrimSpace(reply.Genre)
	if reply.Genre == "" {
		if msg := strings.TrimSpace(reply.Message); msg != "" {
			return reply, fmt.Errorf("%w: %s", ErrNoGenre, msg)
		}
		return reply, ErrNoGenre
	}
	return reply, nil
}

// MoviesPage fetches the rendered movies page for folder. An empty folder
// lets the backend pick its first configured folder.
func (c *Client) MoviesPage(ctx context.Context, folder string) ([]byte, error) {
	endpoint := "/movies"
	target := c.baseURL + endpoint
	if folder != "" {
		target += "?selected_folder=" + url.QueryEscape(folder)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build movies request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	resp, err := c.do(ctx, endpoint, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "backend", endpoint, "read reply", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}
	return data, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", endpoint, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(ctx, endpoint, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return services.Wrap(services.ErrTransient, "backend", endpoint, "read reply", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return services.Wrap(services.ErrBackend, "backend", endpoint, "decode reply", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, endpoint string, req *http.Request) (*http.Response, error) {
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = c.newID()
	}
	req.Header.Set("X-Request-ID", requestID)

	logger := logging.WithContext(ctx, c.logger).With(
		logging.String(logging.FieldCorrelationID, requestID),
		logging.String("endpoint", endpoint),
	)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Debug("backend request failed", logging.Error(err))
		return nil, classifyTransportError(endpoint, err)
	}
	logger.Debug("backend request completed",
		logging.Int(logging.FieldStatus, resp.StatusCode),
		logging.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}

func classifyTransportError(endpoint string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return services.Wrap(services.ErrTimeout, "backend", endpoint, "request timed out", err)
	}
	return services.Wrap(services.ErrTransient, "backend", endpoint, "request failed", err)
}

func errorMessage(data []byte) string {
	var reply struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &reply); err == nil && reply.Error != "" {
		return reply.Error
	}
	return ""
}
