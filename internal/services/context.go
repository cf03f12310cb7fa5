package services

import "context"

type contextKey string

const (
	jobIDKey   contextKey = "job_id"
	commandKey contextKey = "command"
	matchIDKey contextKey = "match_id"
)

// WithJobID annotates context with the queue message identifier.
func WithJobID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, jobIDKey, id)
}

// JobIDFromContext extracts the queue message identifier if present.
func JobIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(jobIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithCommand annotates context with the job command name.
func WithCommand(ctx context.Context, command string) context.Context {
	if command == "" {
		return ctx
	}
	return context.WithValue(ctx, commandKey, command)
}

// CommandFromContext returns the job command name if present.
func CommandFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(commandKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithMatchID annotates context with the match record identifier.
func WithMatchID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, matchIDKey, id)
}

// MatchIDFromContext returns the match record identifier if present.
func MatchIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(matchIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
