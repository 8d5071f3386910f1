package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	t.Run("returns nop logger when absent", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("returns attached logger", func(t *testing.T) {
		l := zap.NewExample()
		ctx := WithContext(context.Background(), l)
		assert.Same(t, l, FromContext(ctx))
	})
}

func TestWithUpdate(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, l := WithUpdate(context.Background(), zap.New(core), UpdateScope{
		RequestID: "req-1",
		UpdateID:  77,
		UserID:    1001,
		ChatID:    2002,
	})
	l.Info("handled")
	FromContext(ctx).Info("from context")

	assert.Equal(t, "req-1", GetRequestID(ctx))

	entries := recorded.All()
	assert.Len(t, entries, 2)
	for _, e := range entries {
		fields := e.ContextMap()
		assert.Equal(t, "req-1", fields[FieldRequestID])
		assert.Equal(t, int64(77), fields[FieldUpdateID])
		assert.Equal(t, int64(1001), fields[FieldUserID])
		assert.Equal(t, int64(2002), fields[FieldChatID])
	}
}

func TestWithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, l := WithRequestID(context.Background(), zap.New(core), "abc")
	l.Info("x")

	assert.Equal(t, "abc", GetRequestID(ctx))
	assert.Equal(t, "abc", recorded.All()[0].ContextMap()[FieldRequestID])
	assert.Empty(t, GetRequestID(context.Background()))
}
