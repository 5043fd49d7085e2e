package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("mediops-test", false, &buf)
	t.Cleanup(func() { Logger = zerolog.Logger{} })

	ctx := ContextWithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestID(ctx))

	Info(ctx).Str("entity", "consumer").Msg("created")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-42", line["request_id"])
	assert.Equal(t, "mediops-test", line["service"])
	assert.Equal(t, "consumer", line["entity"])
	assert.NotContains(t, line, "trace_id")
}

func TestZeroLoggerDiscards(t *testing.T) {
	Logger = zerolog.Logger{}
	assert.NotPanics(t, func() {
		Error(context.Background()).Msg("dropped")
	})
	assert.Empty(t, RequestID(context.Background()))
}
