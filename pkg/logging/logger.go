// Package logging builds the JSON slog loggers used across cursing. The
// terminal belongs to the UI, so logs go to a file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Logger writes JSON records tagged with a per-run session id.
type Logger struct {
	*slog.Logger
	sessionID string
	out       io.Writer
	file      *os.File
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}

// NewLogger opens path for appending, creating its directory, and returns
// a logger writing to it.
func NewLogger(path, level string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	l := NewWriterLogger(file, lvl)
	l.file = file
	return l, nil
}

// NewWriterLogger returns a logger writing JSON records to w.
func NewWriterLogger(w io.Writer, level slog.Level) *Logger {
	sessionID := uuid.NewString()
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{
		Logger: slog.New(handler).With(
			slog.String("system", "cursing"),
			slog.String("session_id", sessionID),
		),
		sessionID: sessionID,
		out:       w,
	}
}

// Writer returns the destination of the log records, for exporters that
// share the log file.
func (l *Logger) Writer() io.Writer {
	return l.out
}

// SessionID returns the id attached to every record.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// Component returns a logger with the component attribute set.
func (l *Logger) Component(name string) *slog.Logger {
	return l.Logger.With(slog.String("component", name))
}

// Close closes the log file, if the logger owns one.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
