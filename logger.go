package blast

import (
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/blast/core"
)

// Logger wraps slog.Logger with blast-specific helpers and consistent
// field names.
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

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithID adds an id field to the logger.
func (l *Logger) WithID(id core.VectorID) *Logger {
	return &Logger{Logger: l.Logger.With("id", uint32(id))}
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{Logger: l.Logger.With("k", k)}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(id core.VectorID, err error) {
	ll := l.WithID(id)
	if err != nil {
		ll.Error("insert failed", "error", err)
	} else {
		ll.Debug("insert completed")
	}
}

// LogQuery logs a query operation.
func (l *Logger) LogQuery(k, results int, err error) {
	ll := l.WithK(k)
	if err != nil {
		ll.Error("query failed", "error", err)
	} else {
		ll.Debug("query completed", "results", results)
	}
}
