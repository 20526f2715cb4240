package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/perplexiplay/backend/internal/common/constants"
)

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "auth", "warning")

	log.Info("hidden")
	log.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected info line to be filtered, got %q", out)
	}
	if !strings.Contains(out, "[WARNING] [auth]") || !strings.Contains(out, "visible") {
		t.Errorf("expected warning line with service prefix, got %q", out)
	}
}

func TestLogger_WithFieldsSortsKeysAndAddsTraceID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "", "debug")

	ctx := context.WithValue(context.Background(), constants.TraceIDKey, "abc123")
	log.WithFields(ctx, Fields{"username": "alice", "action": "login_attempt"}).Info("login attempt")

	out := buf.String()
	if !strings.Contains(out, "[trace_id=abc123 action=login_attempt username=alice]") {
		t.Errorf("unexpected field rendering: %q", out)
	}
}

func TestLogger_ShouldLog(t *testing.T) {
	log := NewWithWriter(&bytes.Buffer{}, "test", "error")

	if log.ShouldLog(INFO) {
		t.Error("expected INFO to be disabled at ERROR level")
	}
	if !log.ShouldLog(CRITICAL) {
		t.Error("expected CRITICAL to be enabled at ERROR level")
	}

	log.SetLevel("debug")
	if !log.ShouldLog(DEBUG) {
		t.Error("expected DEBUG to be enabled after SetLevel")
	}
}

func TestNew_WritesRotatedFile(t *testing.T) {
	dir := t.TempDir()

	log, err := New(dir, "auth", "info")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	log.Info("to file")
	if err := log.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, constants.LoggerFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("expected log file to contain message, got %q", string(data))
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":    DEBUG,
		" Info ":   INFO,
		"WARN":     WARNING,
		"error":    ERROR,
		"critical": CRITICAL,
		"bogus":    INFO,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
