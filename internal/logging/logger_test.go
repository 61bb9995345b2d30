package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	require.NotNil(t, NewLogger(true))
	require.NotNil(t, NewLogger(false))
}

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	logger1 := DefaultLogger()
	require.NotNil(t, logger1)
	assert.Same(t, logger1, DefaultLogger())
}

func TestContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Same(t, DefaultLogger(), FromContext(ctx))

	logger := NewLogger(true).Named("test")
	ctx = WithLogger(ctx, logger)
	assert.Same(t, logger, FromContext(ctx))
}
