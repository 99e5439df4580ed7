package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriterLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, "Test", WarnLevel)

	logger.Debug("hidden %d", 1)
	logger.Info("hidden %d", 2)
	logger.Warn("shown %d", 3)
	logger.Error("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("low-severity output leaked: %q", out)
	}
	if !strings.Contains(out, "[WARN] [Test] shown 3") {
		t.Fatalf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] [Test] shown 4") {
		t.Fatalf("missing error line: %q", out)
	}
}

func TestOrNop(t *testing.T) {
	logger := OrNop(nil)
	// Must be callable without panicking.
	logger.Debug("x")
	logger.Info("x")
	logger.Warn("x")
	logger.Error("x")
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("MAILFORGE_LOG_LEVEL", "debug")
	if levelFromEnv() != DebugLevel {
		t.Fatal("expected debug level")
	}
	t.Setenv("MAILFORGE_LOG_LEVEL", "nonsense")
	if levelFromEnv() != InfoLevel {
		t.Fatal("expected info fallback")
	}
}
