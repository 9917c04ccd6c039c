package core

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	ctxKeySession contextKey = "grid_session"
	ctxKeyLogger  contextKey = "grid_logger"
)

// ContextWithSession tags ctx with the grid session a request belongs to.
// Each session has its own run generation.
func ContextWithSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, ctxKeySession, session)
}

// SessionFromContext extracts the session id from context.
func SessionFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySession).(string); ok {
		return v
	}
	return ""
}

// ContextWithLogger attaches a logger used by validation runs.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, logger)
}

// LoggerFromContext returns the attached logger or slog.Default.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if v, ok := ctx.Value(ctxKeyLogger).(*slog.Logger); ok && v != nil {
		return v
	}
	return slog.Default()
}
