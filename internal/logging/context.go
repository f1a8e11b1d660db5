package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for pipeline run identifiers.
	FieldRunID = "run_id"
	// FieldFolder is the standardized structured logging key for the photo folder being processed.
	FieldFolder = "folder"
	// FieldFile is the standardized structured logging key for a single photo filename.
	FieldFile = "file"
	// FieldEventType tags the kind of event a warning or error describes.
	FieldEventType = "event_type"
	// FieldErrorHint carries a short next-step hint for operators.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldDecisionType tags decision log lines (scene, activity, identity rewrites).
	FieldDecisionType = "decision_type"
	// FieldDecisionResult is the value a decision settled on.
	FieldDecisionResult = "decision_result"
	// FieldDecisionReason names the rule that produced the result.
	FieldDecisionReason = "decision_reason"
)

type runKey struct{}

type folderKey struct{}

// WithRunID stores the pipeline run identifier on the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, runKey{}, runID)
}

// WithFolder stores the photo folder on the context.
func WithFolder(ctx context.Context, folder string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, folderKey{}, folder)
}

func contextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := ctx.Value(runKey{}).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if folder, ok := ctx.Value(folderKey{}).(string); ok && folder != "" {
		fields = append(fields, slog.String(FieldFolder, folder))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := contextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
