package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	appIDKey
	userIDKey
)

// WithContext stores a logger in the context
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in the context, or a nop logger
// when none was stored. Callers can always log without nil checks.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores the request id and returns a logger tagged with it
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	return ctx, logger.With(zap.String("request_id", requestID))
}

// WithAppID tags the context and logger with the calling app's identity
func WithAppID(ctx context.Context, logger *zap.Logger, appID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, appIDKey, appID)
	return ctx, logger.With(zap.String("app_id", appID))
}

// WithUserID tags the context and logger with the calling user's identity
func WithUserID(ctx context.Context, logger *zap.Logger, userID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return ctx, logger.With(zap.String("user_id", userID))
}

// GetRequestID returns the request id stored in the context, if any
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetAppID returns the app id stored in the context, if any
func GetAppID(ctx context.Context) string {
	if id, ok := ctx.Value(appIDKey).(string); ok {
		return id
	}
	return ""
}

// GetUserID returns the user id stored in the context, if any
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// WithTraceContext tags the logger with the active span's trace and span
// ids so log lines can be joined with traces. Without a recording span the
// logger comes back unchanged.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}
