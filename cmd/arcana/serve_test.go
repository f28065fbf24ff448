package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matiasleandrokruk/arcana/internal/infra/config"
)

func TestServe_StopsOnCancel(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		HTTPHost:     "127.0.0.1",
		HTTPPort:     0,
		DatabasePath: filepath.Join(t.TempDir(), "arcana.db"),
		LLMTimeout:   time.Second,
		JWTSecret:    "serve-test-secret-0123456789abcdef",
		JWTExpiry:    time.Hour,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, logger) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve() error = %v; want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve() did not return after cancel")
	}
	if _, err := os.Stat(cfg.DatabasePath); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestServe_BadDatabasePath(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		HTTPHost:     "127.0.0.1",
		DatabasePath: filepath.Join(t.TempDir(), "missing", "dir", "arcana.db"),
		JWTSecret:    "serve-test-secret-0123456789abcdef",
		JWTExpiry:    time.Hour,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := serve(context.Background(), cfg, logger); err == nil {
		t.Fatal("serve() error = nil; want database open error")
	}
}
