package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestSampler(t *testing.T) {
	assert.Contains(t, Config{}.sampler().Description(), "AlwaysOnSampler")
	assert.Contains(t, Config{SampleRatio: 1}.sampler().Description(), "AlwaysOnSampler")
	assert.Contains(t, Config{SampleRatio: 0.25}.sampler().Description(), "TraceIDRatioBased{0.25}")
}

func TestShutdownIgnoresForeignProviders(t *testing.T) {
	assert.NoError(t, Shutdown(context.Background(), noop.NewTracerProvider()))
	assert.NoError(t, Shutdown(context.Background(), sdktrace.NewTracerProvider()))
}
