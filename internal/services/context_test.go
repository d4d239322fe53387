package services_test

import (
	"context"
	"testing"

	"movieorg/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRequestID(ctx, "req-123")
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithPath(ctx, "Action/Heat.mkv")

	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
	if run, ok := services.RunIDFromContext(ctx); !ok || run != "run-1" {
		t.Fatalf("unexpected run id: %v %v", run, ok)
	}
	if path, ok := services.PathFromContext(ctx); !ok || path != "Action/Heat.mkv" {
		t.Fatalf("unexpected path: %v %v", path, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRequestID(ctx, "")
	ctx = services.WithPath(ctx, "")
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id")
	}
	if _, ok := services.PathFromContext(ctx); ok {
		t.Fatal("expected no path")
	}
}
