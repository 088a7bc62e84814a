package art

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with art-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogLearn logs a learning step.
func (l *Logger) LogLearn(ctx context.Context, index int, created bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "learn failed",
			"error", err,
		)
	} else if created {
		l.DebugContext(ctx, "category created",
			"index", index,
		)
	} else {
		l.DebugContext(ctx, "learn resonated",
			"index", index,
		)
	}
}

// LogPredict logs a prediction.
func (l *Logger) LogPredict(ctx context.Context, index int, membership float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "predict failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "predict completed",
			"index", index,
			"membership", membership,
		)
	}
}

// LogOptimize logs a network optimization pass.
func (l *Logger) LogOptimize(ctx context.Context, pruned, merged, remaining int) {
	l.InfoContext(ctx, "optimize completed",
		"pruned", pruned,
		"merged", merged,
		"remaining", remaining,
	)
}

// LogMatchTracking logs one vigilance raise during ARTMAP match
// tracking. Search exhaustion is an observability event, not an error.
func (l *Logger) LogMatchTracking(ctx context.Context, attempt int, rejected int, vigilance float64) {
	l.DebugContext(ctx, "match tracking raised vigilance",
		"attempt", attempt,
		"rejected", rejected,
		"vigilance", vigilance,
	)
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, name string, categories int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot completed",
			"name", name,
			"categories", categories,
		)
	}
}
