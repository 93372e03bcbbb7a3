// Package logging wraps slog for opskit's operator-facing diagnostics.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Logger wraps slog for structured logging
type Logger struct {
	logger *slog.Logger
}

// Config configures the logger
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output io.Writer
}

// LevelFor maps the CLI toggles onto a level name: --debug wins over
// --verbose, and neither leaves only warnings and errors.
func LevelFor(debug, verbose bool) string {
	switch {
	case debug:
		return "debug"
	case verbose:
		return "info"
	default:
		return "warn"
	}
}

// New creates a new structured logger
func New(config Config) *Logger {
	level := slog.LevelWarn
	switch strings.ToLower(config.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	output := config.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{logger: slog.New(handler)}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// With adds additional fields to the logger
func (l *Logger) With(args ...any) *Logger {
	return &Logger{logger: l.logger.With(args...)}
}

// WithRunID tags every record with a fresh run identifier so the plan and
// apply halves of an expiration can be told apart in collected logs.
func (l *Logger) WithRunID() (*Logger, string) {
	id := uuid.NewString()
	return l.With("run_id", id), id
}

// Debug logs at debug level
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Info logs at info level
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warn logs at warn level
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Error logs at error level
func (l *Logger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}
