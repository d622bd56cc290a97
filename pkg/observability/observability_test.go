package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "prefab", cfg.ServiceName)
	assert.Equal(t, "stdout", cfg.ExporterType)
	assert.InDelta(t, 0.1, cfg.SamplingRate, 1e-9)
	assert.Positive(t, cfg.MaxQueueSize)
}

func TestInitializeAndShutdown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SamplingRate = 0 // keep test output clean

	require.NoError(t, Initialize(cfg))
	assert.NotNil(t, GetTracer())

	// Initialize is once-guarded; a second call is a no-op.
	require.NoError(t, Initialize(cfg))

	require.NoError(t, Shutdown(context.Background()))
}

func TestSpanAttributes(t *testing.T) {
	require.NoError(t, Initialize(DefaultConfig()))

	_, span := NewSpan(context.Background(), "test-op")
	span.SetAttribute("pool.id", "bullet")
	span.SetAttribute("count", 3)
	span.SetAttribute("rate", 0.5)
	span.SetAttribute("ok", true)
	span.SetAttribute("anything", struct{ X int }{1})
	span.End()

	assert.Len(t, span.attributes, 5)
}

func TestRegistryTracerReturnsCallbackError(t *testing.T) {
	require.NoError(t, Initialize(DefaultConfig()))
	rt := NewRegistryTracer("world")

	boom := errors.New("exhausted")
	err := rt.TracePoolOp(context.Background(), "bullet", "acquire", func() error { return boom })
	assert.ErrorIs(t, err, boom)

	err = rt.TracePoolOp(context.Background(), "bullet", "release", func() error { return nil })
	assert.NoError(t, err)
}
