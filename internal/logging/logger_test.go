package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"movieorg/internal/config"
	"movieorg/internal/logging"
	"movieorg/internal/services"
)

func newFileLogger(t *testing.T) (string, func() string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "movieorg.log")
	return logPath, func() string {
		content, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		return string(content)
	}
}

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	logPath, read := newFileLogger(t)
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "moveaction").Info("movie moved",
		logging.String(logging.FieldPath, "Drama/The Film.mkv"),
		logging.String(logging.FieldGenre, "Action"),
	)

	content := read()
	if !strings.Contains(content, "INFO moveaction: movie moved") {
		t.Fatalf("expected component prefix, got %q", content)
	}
	if !strings.Contains(content, `path="Drama/The Film.mkv"`) {
		t.Fatalf("expected quoted path, got %q", content)
	}
	if !strings.Contains(content, "genre=Action") {
		t.Fatalf("expected genre field, got %q", content)
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath, read := newFileLogger(t)
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("message with caller")

	if content := read(); !strings.Contains(content, "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerFiltersBelowLevel(t *testing.T) {
	logPath, read := newFileLogger(t)
	logger, err := logging.New(logging.Options{Format: "console", Level: "warn", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", logging.Error(errors.New("boom")))

	content := read()
	if strings.Contains(content, "hidden") {
		t.Fatalf("expected info message filtered, got %q", content)
	}
	if !strings.Contains(content, "WARN shown error=boom") {
		t.Fatalf("expected warn line, got %q", content)
	}
}

func TestJSONLoggerIncludesContextFields(t *testing.T) {
	logPath, read := newFileLogger(t)
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRequestID(context.Background(), "req-1")
	ctx = services.WithRunID(ctx, "run-9")
	logging.WithContext(ctx, logger).Info("batch started")

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(read())), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["msg"] != "batch started" {
		t.Fatalf("unexpected msg: %v", entry["msg"])
	}
	if entry["level"] != "info" {
		t.Fatalf("unexpected level: %v", entry["level"])
	}
	if entry[logging.FieldCorrelationID] != "req-1" || entry[logging.FieldRunID] != "run-9" {
		t.Fatalf("expected context fields, got %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.File = true

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("to file")

	content, err := os.ReadFile(cfg.LogPath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "to file") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}
