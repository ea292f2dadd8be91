package idxset

import (
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/idxset/executor"
	"github.com/hupe1980/idxset/index"
	"github.com/hupe1980/idxset/model"
	"github.com/hupe1980/idxset/predicate"
)

// Logger wraps slog.Logger with idxset-specific helpers.
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

// WithAttribute adds an attribute field to the logger.
func (l *Logger) WithAttribute(attr string) *Logger {
	return &Logger{
		Logger: l.Logger.With("attribute", attr),
	}
}

// LogIndex logs the construction of a single index.
func (l *Logger) LogIndex(ix index.Index, inferred bool, duration time.Duration) {
	l.WithAttribute(ix.Attribute()).Debug("index built",
		"index", ix.String(),
		"inferred", inferred,
		"entries", ix.Len(),
		"keys", ix.Cardinality(),
		"duration", duration,
	)
}

// LogBuild logs the construction of a collection.
func (l *Logger) LogBuild(objects, indexes int, duration time.Duration, err error) {
	if err != nil {
		l.Error("build failed",
			"objects", objects,
			"indexes", indexes,
			"error", err,
		)
	} else {
		l.Info("collection built",
			"objects", objects,
			"indexes", indexes,
			"duration", duration,
		)
	}
}

// LogFilter logs a query.
func (l *Logger) LogFilter(p predicate.Predicate, results int, stats executor.Stats, err error) {
	if err != nil {
		l.Error("filter failed",
			"predicate", p,
			"error", err,
		)
	} else {
		l.Debug("filter completed",
			"predicate", p,
			"results", results,
			"lookups", stats.Lookups,
			"evaluated", stats.Evaluated,
		)
	}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(id model.ID, err error) {
	if err != nil {
		l.Error("insert failed",
			"error", err,
		)
	} else {
		l.Debug("insert completed",
			"id", id,
		)
	}
}

// LogRemove logs a remove operation.
func (l *Logger) LogRemove(id model.ID, err error) {
	if err != nil {
		l.Error("remove failed",
			"id", id,
			"error", err,
		)
	} else {
		l.Debug("remove completed",
			"id", id,
		)
	}
}
