package graph

import (
	"context"

	"github.com/google/uuid"
)

type runIDKey struct{}

// WithRunID attaches an invocation run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the invocation run ID, if one is set.
func RunIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(runIDKey{}).(string); ok {
		return v
	}
	return ""
}

func generateRunID() string {
	return uuid.NewString()
}
