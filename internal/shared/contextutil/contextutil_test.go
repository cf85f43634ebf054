package contextutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "", GetRequestID(context.Background()))
}

func TestGetLogger_Precedence(t *testing.T) {
	ctxLogger := zap.NewNop().Named("from-context")
	defLogger := zap.NewNop().Named("fallback")

	ctx := WithLogger(context.Background(), ctxLogger)
	assert.Same(t, ctxLogger, GetLogger(ctx, defLogger))

	// no context logger falls back to the default
	assert.Same(t, defLogger, GetLogger(context.Background(), defLogger))

	// never nil, even with nothing set
	assert.NotNil(t, GetLogger(context.Background(), nil))
}
