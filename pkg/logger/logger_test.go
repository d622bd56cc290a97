package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerDefaultsToJSONEncoding(t *testing.T) {
	log, err := newLogger(Config{Level: "info"})
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestNewLoggerConsoleEncoding(t *testing.T) {
	log, err := newLogger(Config{Level: "debug", Encoding: "console", Development: true})
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, err := newLogger(Config{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestWithContextFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := globalLogger
	globalLogger = zap.New(core)
	t.Cleanup(func() { globalLogger = prev })

	ctx := context.WithValue(context.Background(), SessionIDKey, "run-1")
	ctx = context.WithValue(ctx, WorldKey, "demo")

	WithContext(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "run-1", fields["session_id"])
	assert.Equal(t, "demo", fields["world"])
}
