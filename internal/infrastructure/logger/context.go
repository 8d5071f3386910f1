package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
)

// Field names shared by every update-scoped log entry
const (
	FieldRequestID = "request_id"
	FieldUpdateID  = "update_id"
	FieldUserID    = "user_id"
	FieldChatID    = "chat_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// UpdateScope identifies the Telegram update a log entry belongs to
type UpdateScope struct {
	RequestID string
	UpdateID  int64
	UserID    int64
	ChatID    int64
}

// WithUpdate attaches a logger enriched with the update's identifiers
func WithUpdate(ctx context.Context, logger *zap.Logger, scope UpdateScope) (context.Context, *zap.Logger) {
	enriched := logger.With(
		zap.String(FieldRequestID, scope.RequestID),
		zap.Int64(FieldUpdateID, scope.UpdateID),
		zap.Int64(FieldUserID, scope.UserID),
		zap.Int64(FieldChatID, scope.ChatID),
	)
	ctx = context.WithValue(ctx, requestIDKey, scope.RequestID)
	return WithContext(ctx, enriched), enriched
}

// WithRequestID adds a request ID to context and returns the enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	enriched := logger.With(zap.String(FieldRequestID, requestID))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}
