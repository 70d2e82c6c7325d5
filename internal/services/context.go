package services

import "context"

type contextKey string

const (
	frameKey contextKey = "frame"
	stageKey contextKey = "stage"
	runIDKey contextKey = "run_id"
)

// WithFrame annotates context with the exposure frame number.
func WithFrame(ctx context.Context, frame int) context.Context {
	return context.WithValue(ctx, frameKey, frame)
}

// FrameFromContext extracts the exposure frame number if present.
func FrameFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(frameKey)
	if v == nil {
		return 0, false
	}
	if frame, ok := v.(int); ok {
		return frame, true
	}
	return 0, false
}

// WithStage annotates context with the correction stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(stageKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRunID annotates context with the run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run correlation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
