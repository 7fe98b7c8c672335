// Package trace provides trace ID generation and context propagation for
// request correlation across handler → sub-operation boundaries.
package trace

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// traceKey is the unexported context key used to store the trace ID.
type traceKey struct{}

// GenerateID generates a unique trace ID — "t_" followed by a v4 UUID, so instance/request
// IDs minted through this package satisfy spec property #7 (two IDs never
// collide, statistically equivalent to a v4 UUID) without this package
// having to roll its own random-ID scheme.
func GenerateID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		// Fallback to timestamp-based ID if the OS random source fails
		// (should never happen).
		return fmt.Sprintf("trace_%d", time.Now().UnixNano())
	}
	return "t_" + id.String()
}

// WithTraceID returns a child context carrying the given trace ID.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

// FromContext extracts the trace ID from ctx, returning "" if absent.
func FromContext(ctx context.Context) string {
	if v, ok := ctx.Value(traceKey{}).(string); ok {
		return v
	}
	return ""
}
