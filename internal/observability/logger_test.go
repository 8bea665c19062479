package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "debug", Format: "json", Output: &buf, ServiceName: "pdf2cad"})

	log.WithOperation("convert").Info().
		Str("output", "a.dxf").
		Int("lines", 3).
		Err(errors.New("boom")).
		Msg("done")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "info", e["level"])
	assert.Equal(t, "pdf2cad", e["service"])
	assert.Equal(t, "convert", e["operation"])
	assert.Equal(t, "a.dxf", e["output"])
	assert.Equal(t, float64(3), e["lines"])
	assert.Equal(t, "boom", e["error"])
	assert.Equal(t, "done", e["message"])
	assert.Contains(t, e, "time")
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "warn", Format: "json", Output: &buf})

	log.Debug().Msg("hidden")
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	log.Error().Msg("shown")

	assert.Len(t, decodeLines(t, &buf), 2)
}

func TestLogger_Reporter(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "debug", Format: "json", Output: &buf})
	r := log.WithFile("in.pdf").Reporter()

	r.Debug("  Added line from (%.2f,%.2f)", 1.0, 2.0)
	r.Warn("Skipped %d", 2)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "debug", entries[0]["level"])
	assert.Equal(t, "Added line from (1.00,2.00)", entries[0]["message"])
	assert.Equal(t, "in.pdf", entries[0]["file"])
	assert.Equal(t, "warn", entries[1]["level"])
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "info", Format: "json", Output: &buf})

	assert.Same(t, log, log.WithContext(context.Background()))

	ctx := ContextWithRunID(context.Background(), "run-1")
	assert.Equal(t, "run-1", RunIDFromContext(ctx))
	log.WithContext(ctx).Info().Msg("hi")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "run-1", entries[0]["run_id"])
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Reporter().Error("ignored %s", "x")
		Nop().Info().Msg("ignored")
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}
