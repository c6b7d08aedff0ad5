package services

import "context"

type contextKey string

const (
	itemIDKey contextKey = "item_id"
	scopeKey  contextKey = "scope"
	runIDKey  contextKey = "run_id"
)

// WithItemID annotates context with the item (aid) being processed.
func WithItemID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, itemIDKey, id)
}

// ItemIDFromContext extracts the item identifier if present.
func ItemIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(itemIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithScope pushes a scope label onto the context's scope stack. The stack is
// copied, so the parent context keeps its own labels and the push is undone as
// soon as the caller stops using the derived context.
func WithScope(ctx context.Context, label string) context.Context {
	if label == "" {
		return ctx
	}
	parent := ScopeFromContext(ctx)
	stack := make([]string, len(parent), len(parent)+1)
	copy(stack, parent)
	stack = append(stack, label)
	return context.WithValue(ctx, scopeKey, stack)
}

// ScopeFromContext returns the scope labels in push order. The returned slice
// must not be modified.
func ScopeFromContext(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	stack, _ := ctx.Value(scopeKey).([]string)
	return stack
}

// WithRunID annotates context with the sync run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
