package logging_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hairly/internal/platform/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for raw, want := range cases {
		if got := logging.ParseLevel(raw); got != want {
			t.Fatalf("level %q: expected %v, got %v", raw, want, got)
		}
	}
}

func TestNewHonorsLevel(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	logger := logging.New(buf, "warn")
	logger.Info("hidden")
	logger.Warn("shown", "stage", "plan")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "stage=plan") {
		t.Fatalf("expected warn line with attrs, got %s", out)
	}
}

func TestNewFileCreatesDirectory(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "hairly.log")
	logger, closer, err := logging.NewFile(path, "info")
	if err != nil {
		t.Fatalf("new file logger: %v", err)
	}
	logger.Info("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "hello") {
		t.Fatalf("expected log line, got %s", b)
	}
}
