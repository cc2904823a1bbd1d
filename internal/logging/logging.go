// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package logging configures structured logging for the attendance sync.
package logging

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/google/uuid"
	slogotel "github.com/remychantenay/slog-otel"
)

type ctxKey string

// Public constants
const (
	ErrKey   = "error"
	RunIDKey = "run_id"
)

// Private constants
const (
	slogFields      ctxKey = "slog_fields"
	logLevelDefault        = slog.LevelDebug

	// Log levels
	debug = "debug"
	warn  = "warn"
	err   = "error"
	info  = "info"

	// Set on errors that abort a sync run.
	priorityCritical = "critical"
)

type contextHandler struct {
	slog.Handler
}

// Handle adds contextual attributes to the Record before calling the underlying handler
func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(slogFields).([]slog.Attr); ok {
		for _, v := range attrs {
			r.AddAttrs(v)
		}
	}

	return h.Handler.Handle(ctx, r)
}

// AppendCtx adds an slog attribute to the provided context so that it will be
// included in any Record created with such context
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	if v, ok := parent.Value(slogFields).([]slog.Attr); ok {
		// copy so sibling contexts never share a backing array
		next := make([]slog.Attr, len(v), len(v)+1)
		copy(next, v)
		next = append(next, attr)
		return context.WithValue(parent, slogFields, next)
	}

	return context.WithValue(parent, slogFields, []slog.Attr{attr})
}

// WithRunID tags the context with a fresh run identifier and returns both.
func WithRunID(parent context.Context) (context.Context, string) {
	runID := uuid.NewString()
	return AppendCtx(parent, slog.String(RunIDKey, runID)), runID
}

// InitStructureLogConfig sets the structured log behavior. Records are written
// to stderr so stdout stays reserved for the attendance output.
func InitStructureLogConfig() slog.Handler {
	return initStructureLogConfig(os.Stderr)
}

func initStructureLogConfig(w io.Writer) slog.Handler {
	logOptions := &slog.HandlerOptions{}

	// Configure log level
	switch os.Getenv("LOG_LEVEL") {
	case debug:
		logOptions.Level = slog.LevelDebug
	case warn:
		logOptions.Level = slog.LevelWarn
	case err:
		logOptions.Level = slog.LevelError
	case info:
		logOptions.Level = slog.LevelInfo
	default:
		logOptions.Level = logLevelDefault
	}

	// Configure source information
	addSource := os.Getenv("LOG_ADD_SOURCE")
	logOptions.AddSource = addSource == "true" || addSource == "t" || addSource == "1"

	h := slog.NewJSONHandler(w, logOptions)
	log.SetFlags(log.Llongfile)

	// trace_id and span_id are added for records emitted inside a span
	logger := contextHandler{slogotel.OtelHandler{Next: h}}
	slog.SetDefault(slog.New(logger))

	slog.Debug("log config",
		"logLevel", logOptions.Level,
		"addSource", logOptions.AddSource,
	)

	return h
}

// Priority creates a slog.Attr for error priority classification
func Priority(level string) slog.Attr {
	return slog.String("priority", level)
}

// PriorityCritical marks errors that abort the sync run.
func PriorityCritical() slog.Attr {
	return Priority(priorityCritical)
}
