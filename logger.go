package logfilter

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with logfilter-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithPath adds a path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// LogOpen logs an open operation.
func (l *Logger) LogOpen(ctx context.Context, path string, source string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "open completed",
			"path", path,
			"source", source,
		)
	}
}

// LogEnumerate logs a completed enumeration.
func (l *Logger) LogEnumerate(ctx context.Context, mode string, lines, matched int64, err error) {
	if err != nil {
		l.WarnContext(ctx, "enumeration ended early",
			"mode", mode,
			"lines", lines,
			"matched", matched,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "enumeration completed",
			"mode", mode,
			"lines", lines,
			"matched", matched,
		)
	}
}

// LogFailure logs an unrecoverable reader condition.
func (l *Logger) LogFailure(ctx context.Context, msg string, err error) {
	l.ErrorContext(ctx, "reader failure",
		"reason", msg,
		"error", err,
	)
}
