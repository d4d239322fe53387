package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"movieorg/internal/config"
)

const userAgent = "movieorg/0.1.0"

// ApplyResult is the outcome of one batch apply run.
type ApplyResult struct {
	Folder    string
	Completed int
	Failed    int
	Skipped   int
	Elapsed   time.Duration
}

// Service defines the notification surface used by the CLI.
type Service interface {
	NotifyApplyCompleted(ctx context.Context, result ApplyResult) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := cfg.NotificationTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyApplyCompleted(ctx context.Context, result ApplyResult) error {
	data := payload{
		title: "movieorg - Moves Complete",
		tags:  []string{"movieorg", "apply", "completed"},
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Moved %d %s", result.Completed, plural(result.Completed, "movie", "movies"))
	if result.Failed > 0 {
		fmt.Fprintf(&b, ", %d failed", result.Failed)
		data.title = "movieorg - Moves Finished With Errors"
		data.tags = []string{"movieorg", "apply", "warning"}
		data.priority = "high"
	}
	if result.Skipped > 0 {
		fmt.Fprintf(&b, ", %d skipped", result.Skipped)
	}
	if folder := strings.TrimSpace(result.Folder); folder != "" {
		fmt.Fprintf(&b, " in %s", folder)
	}
	if result.Elapsed > 0 {
		fmt.Fprintf(&b, " (%s)", result.Elapsed.Round(time.Second))
	}
	data.message = b.String()
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if err == nil {
		return nil
	}
	message := err.Error()
	if label := strings.TrimSpace(contextLabel); label != "" {
		message = fmt.Sprintf("%s: %s", label, message)
	}
	return n.send(ctx, payload{
		title:    "movieorg - Error",
		message:  message,
		tags:     []string{"movieorg", "error"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:   "movieorg - Test",
		message: "Notifications are working.",
		tags:    []string{"movieorg", "test"},
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

type noopService struct{}

func (noopService) NotifyApplyCompleted(context.Context, ApplyResult) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error        { return nil }
func (noopService) TestNotification(context.Context) error                  { return nil }
