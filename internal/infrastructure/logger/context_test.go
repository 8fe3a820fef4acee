package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newBufferedLogger(buf *bytes.Buffer) *zap.Logger {
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(buf), zapcore.DebugLevel)
	return zap.New(core)
}

func TestWithContextAndFromContext(t *testing.T) {
	log := zap.NewNop()
	ctx := WithContext(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))
}

func TestFromContext_MissingLoggerIsNop(t *testing.T) {
	log := FromContext(context.Background())
	require.NotNil(t, log)
	log.Info("must not panic")
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	ctx, log := WithRequestID(context.Background(), newBufferedLogger(&buf), "req-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	log.Info("tagged")
	assert.Contains(t, buf.String(), "req-1")
}

func TestWithAppIDAndUserID(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferedLogger(&buf)

	ctx, log := WithAppID(context.Background(), log, "app-7")
	ctx, log = WithUserID(ctx, log, "user-9")

	assert.Equal(t, "app-7", GetAppID(ctx))
	assert.Equal(t, "user-9", GetUserID(ctx))

	log.Info("caller identity")
	out := buf.String()
	assert.Contains(t, out, "app-7")
	assert.Contains(t, out, "user-9")
}

func TestGetIdentifiers_Unset(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetAppID(ctx))
	assert.Empty(t, GetUserID(ctx))
}

func TestWithTraceContext(t *testing.T) {
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x01},
		SpanID:  trace.SpanID{0x02},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	var buf bytes.Buffer
	log := WithTraceContext(ctx, newBufferedLogger(&buf))
	log.Info("traced")

	out := buf.String()
	assert.Contains(t, out, "trace_id")
	assert.Contains(t, out, spanCtx.TraceID().String())
	assert.Contains(t, out, spanCtx.SpanID().String())
}

func TestWithTraceContext_NoSpanIsUnchanged(t *testing.T) {
	log := zap.NewNop()
	assert.Same(t, log, WithTraceContext(context.Background(), log))
}
