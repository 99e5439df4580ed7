// Package logging provides the printf-style component logger used across
// the service.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

const levelEnvVar = "MAILFORGE_LOG_LEVEL"

// Level represents the severity of a log message.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Logger defines a minimal, printf-style logging contract so packages can
// depend on an interface rather than a concrete sink.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// OrNop returns logger when non-nil, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if logger == nil {
		return Nop()
	}
	return logger
}

type componentLogger struct {
	mu        sync.Mutex
	out       *log.Logger
	level     Level
	component string
}

// NewComponentLogger returns a logger scoped to a component, writing to
// stderr at the level selected by MAILFORGE_LOG_LEVEL (default info).
func NewComponentLogger(component string) Logger {
	return NewWriterLogger(os.Stderr, component, levelFromEnv())
}

// NewWriterLogger returns a logger writing to w at the given level.
func NewWriterLogger(w io.Writer, component string, level Level) Logger {
	return &componentLogger{
		out:       log.New(w, "", log.LstdFlags),
		level:     level,
		component: component,
	}
}

func levelFromEnv() Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(levelEnvVar))) {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func (l *componentLogger) log(level Level, tag, format string, args ...any) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Printf("[%s] [%s] %s", tag, l.component, fmt.Sprintf(format, args...))
}

func (l *componentLogger) Debug(format string, args ...any) {
	l.log(DebugLevel, "DEBUG", format, args...)
}

func (l *componentLogger) Info(format string, args ...any) {
	l.log(InfoLevel, "INFO", format, args...)
}

func (l *componentLogger) Warn(format string, args ...any) {
	l.log(WarnLevel, "WARN", format, args...)
}

func (l *componentLogger) Error(format string, args ...any) {
	l.log(ErrorLevel, "ERROR", format, args...)
}
