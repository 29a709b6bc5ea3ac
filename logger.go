package recgo

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/hupe1980/recgo/collection"
)

// Logger wraps slog.Logger with recgo-specific context.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithFile adds the file name to the logger.
func (l *Logger) WithFile(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("file", name),
	}
}

// WithCollection adds the collection ID and backend to the logger.
func (l *Logger) WithCollection(s collection.State) *Logger {
	return &Logger{
		Logger: l.Logger.With("collection", s.ID.String(), "kind", s.Kind.String()),
	}
}

// LogOpen logs the creation of a collection.
func (l *Logger) LogOpen(ctx context.Context, position int64, s collection.State, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open collection failed",
			"position", position,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "collection opened",
			"position", position,
			"collection", s.ID.String(),
			"kind", s.Kind.String(),
			"count", s.Count,
			"element_size", s.ElementSize,
			"length", s.Length,
		)
	}
}

// LogGet logs a failed Get. Out-of-range ordinals are caller errors and are
// logged at debug level.
func (l *Logger) LogGet(ctx context.Context, ordinal uint32, err error) {
	switch {
	case err == nil:
	case errors.Is(err, collection.ErrIndexOutOfRange), errors.Is(err, context.Canceled):
		l.DebugContext(ctx, "get failed",
			"ordinal", ordinal,
			"error", err,
		)
	case errors.Is(err, collection.ErrCacheExhausted):
		l.WarnContext(ctx, "get failed",
			"ordinal", ordinal,
			"error", err,
		)
	default:
		l.ErrorContext(ctx, "get failed",
			"ordinal", ordinal,
			"error", err,
		)
	}
}

// LogWarm logs a cache warm-up.
func (l *Logger) LogWarm(ctx context.Context, requested uint64, loaded int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "warm failed",
			"requested", requested,
			"loaded", loaded,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "warm completed",
			"requested", requested,
			"loaded", loaded,
		)
	}
}

// LogClose logs the closing of a collection or file.
func (l *Logger) LogClose(ctx context.Context, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "closed")
	}
}
