package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	applog "rehabcenter/internal/log"
)

func TestSetupLoggerFallsBackToInfo(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := SetupLogger("chatty", applog.ComponentApp, &buf)
	if !strings.Contains(buf.String(), "Falling back to info log level") {
		t.Fatalf("output = %q", buf.String())
	}
	logger.Debug("hidden")
	slog.Info("via default")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "via default") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestGracefulShutdownOnParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	logger := applog.New(applog.Config{Output: &bytes.Buffer{}})

	var cleaned atomic.Bool
	ctx, done := GracefulShutdown(parent, logger, time.Second, func(ctx context.Context) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("cleanup context has no deadline")
		}
		cleaned.Store(true)
	})

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not complete")
	}
	WaitForShutdown(ctx, done)
	if !cleaned.Load() {
		t.Fatal("cleanup did not run")
	}
}

func TestGracefulShutdownTimeout(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Output: &buf})

	release := make(chan struct{})
	defer close(release)
	_, done := GracefulShutdown(parent, logger, 20*time.Millisecond, func(context.Context) { <-release })

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout not honoured")
	}
	if !strings.Contains(buf.String(), "Shutdown timeout reached") {
		t.Fatalf("output = %q", buf.String())
	}
}
