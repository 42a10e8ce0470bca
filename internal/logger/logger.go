package logger

import (
	"context"
	"log/slog"
	"os"
)

// ContextKey is the type for context keys used in logging
type ContextKey string

const (
	// CorrelationIDKey is the context key for correlation_id
	CorrelationIDKey ContextKey = "correlation_id"
	// QueueItemIDKey is the context key for queue_item_id
	QueueItemIDKey ContextKey = "queue_item_id"
	// SourceIPKey is the context key for source_ip
	SourceIPKey ContextKey = "source_ip"
)

var defaultLogger *slog.Logger

// Init initializes the global structured logger. Format is "json" or
// "text"; anything else falls back to JSON.
func Init(level, format string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// WithContext creates a logger with context values (correlation_id, queue_item_id, source_ip)
func WithContext(ctx context.Context) *slog.Logger {
	logger := defaultLogger
	if logger == nil {
		logger = slog.Default()
	}

	if correlationID, ok := ctx.Value(CorrelationIDKey).(string); ok {
		logger = logger.With("correlation_id", correlationID)
	}

	if itemID, ok := ctx.Value(QueueItemIDKey).(string); ok {
		logger = logger.With("queue_item_id", itemID)
	}

	if sourceIP, ok := ctx.Value(SourceIPKey).(string); ok {
		logger = logger.With("source_ip", sourceIP)
	}

	return logger
}

// Info logs an info message with context
func Info(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Info(msg, args...)
}

// Error logs an error message with context
func Error(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Error(msg, args...)
}

// Warn logs a warning message with context
func Warn(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Warn(msg, args...)
}

// Debug logs a debug message with context
func Debug(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Debug(msg, args...)
}

// LogError logs an error with the error message attached
func LogError(ctx context.Context, msg string, err error, args ...any) {
	logger := WithContext(ctx)
	allArgs := append([]any{"error", err.Error()}, args...)
	logger.Error(msg, allArgs...)
}
