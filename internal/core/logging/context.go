package logging

import "context"

type contextKey string

const (
	operationKey contextKey = "op"
	itemIDKey    contextKey = "item_id"
)

// WithOperation tags the context with the user-facing operation being run,
// e.g. "journal.end-day".
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey, op)
}

// WithItemID tags the context with the item being acted on.
func WithItemID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, itemIDKey, id)
}

// GetOperation returns the operation name, or "" if unset.
func GetOperation(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey).(string); ok {
		return op
	}
	return ""
}

// GetItemID returns the item id, or "" if unset.
func GetItemID(ctx context.Context) string {
	if id, ok := ctx.Value(itemIDKey).(string); ok {
		return id
	}
	return ""
}
