package helpers

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLoggerTo(&out, &errOut, false)
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	l.Info("loaded %d rows", 178)
	l.Warn("slow")
	l.Error("boom: %v", errors.New("x"))
	l.Debug("hidden")

	if !strings.Contains(out.String(), "[2026-01-02 03:04:05]") {
		t.Errorf("missing timestamp in %q", out.String())
	}
	if !strings.Contains(out.String(), "loaded 178 rows") {
		t.Errorf("info line missing: %q", out.String())
	}
	if strings.Contains(out.String(), "hidden") {
		t.Errorf("debug line should be suppressed: %q", out.String())
	}
	if !strings.Contains(errOut.String(), "boom: x") {
		t.Errorf("error line should go to stderr writer: %q", errOut.String())
	}
}

func TestLoggerDebugEnabled(t *testing.T) {
	var out bytes.Buffer
	l := NewLoggerTo(&out, &out, true)
	l.Debug("visible %s", "now")
	if !strings.Contains(out.String(), "visible now") {
		t.Errorf("debug line missing: %q", out.String())
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: Discard()}
	calls := 0
	err := r.Do(context.Background(), "op", func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestRetryExhausted(t *testing.T) {
	sentinel := errors.New("down")
	r := &RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond}
	err := r.Do(context.Background(), "ping", func() error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &RetryConfig{MaxAttempts: 5, BaseDelay: time.Hour}
	calls := 0
	err := r.Do(ctx, "ping", func() error { calls++; return errors.New("down") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}
