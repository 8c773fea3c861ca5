package logger

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestWithContextAndFromContext(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithContext(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
}

func TestFromContext_MissingReturnsNop(t *testing.T) {
	logger := FromContext(context.Background())
	assert.NotNil(t, logger)
}

func TestWithRequestID(t *testing.T) {
	ctx, logger := WithRequestID(context.Background(), zap.NewNop(), "req-123")

	assert.NotNil(t, logger)
	assert.Equal(t, "req-123", GetRequestID(ctx))
}

func TestWithUserID(t *testing.T) {
	ctx, _ := WithUserID(context.Background(), zap.NewNop(), "user-42")

	assert.Equal(t, "user-42", GetUserID(ctx))
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestContextLogger_InjectsContextFields(t *testing.T) {
	var buf strings.Builder
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&syncWriter{&buf}), zapcore.DebugLevel)
	base := zap.New(core)

	ctx := WithContext(context.Background(), base)
	ctx, _ = WithRequestID(ctx, base, "req-abc")
	ctx, _ = WithUserID(ctx, base, "user-7")

	L(ctx).Info("hello")

	output := buf.String()
	assert.Contains(t, output, `"request_id":"req-abc"`)
	assert.Contains(t, output, `"user_id":"user-7"`)
	assert.NotContains(t, output, `"trace_id"`)
}

func TestContextLogger_NilLoggerIsSafe(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}
	assert.NotPanics(t, func() {
		cl.Info("no logger attached")
	})
}

type syncWriter struct {
	b *strings.Builder
}

func (w *syncWriter) Write(p []byte) (int, error) { return w.b.Write(p) }
func (w *syncWriter) Sync() error                 { return nil }
