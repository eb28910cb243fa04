package infrastructure

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const (
	traceIDKey contextKey = iota
	runIDKey
)

// WithTraceID stores the ID that ties a request's log lines and error
// responses together
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID returns the trace ID of ctx, or ""
func GetTraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

// WithRunID stores the ID of one analysis run
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// GetRunID returns the run ID of ctx, or ""
func GetRunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// NewRunContext starts a run: ctx gets a fresh run ID, which doubles as the
// trace ID when ctx has none yet
func NewRunContext(ctx context.Context) (context.Context, string) {
	runID := uuid.NewString()
	ctx = WithRunID(ctx, runID)
	if GetTraceID(ctx) == "" {
		ctx = WithTraceID(ctx, runID)
	}
	return ctx, runID
}
