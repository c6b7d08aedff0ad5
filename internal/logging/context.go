package logging

import (
	"context"
	"log/slog"
	"strings"

	"bget/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldItemID is the standardized structured logging key for item (aid) identifiers.
	FieldItemID = "item_id"
	// FieldScope carries the scope stack pushed with WithScope.
	FieldScope = "scope"
	// FieldRunID is the standardized structured logging key for sync run identifiers.
	FieldRunID = "run_id"
	// FieldEventType tags a log line with a stable machine-readable event name.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to an operator reading a warning or error.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ScopeSeparator joins scope labels inside the structured scope field.
const ScopeSeparator = " > "

// WithScope pushes label onto the scope stack carried by ctx. Callers keep the
// returned context for the duration of the scope; the parent context is left
// untouched, so the label disappears on every exit path.
func WithScope(ctx context.Context, label string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return services.WithScope(ctx, strings.TrimSpace(label))
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if rid, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, rid))
	}
	if id, ok := services.ItemIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldItemID, id))
	}
	if scope := services.ScopeFromContext(ctx); len(scope) > 0 {
		fields = append(fields, slog.String(FieldScope, strings.Join(scope, ScopeSeparator)))
	}
	return fields
}
