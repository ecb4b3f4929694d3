package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"debug level", "debug", "console"},
		{"info level", "info", "console"},
		{"warn level", "warn", "console"},
		{"error level", "error", "console"},
		{"json format", "info", "json"},
		{"uppercase level", "DEBUG", "console"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Setup(tt.level, tt.format)
			require.NotNil(t, Log)
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("WARNING"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("Error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestNewWritesJSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug")

	l.Warn("fluency unavailable", "metric", "fluency", "error", errors.New("sequence too long"), "tokens", 2048)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "fluency unavailable", entry["message"])
	assert.Equal(t, "fluency", entry["metric"])
	assert.Equal(t, "sequence too long", entry["error"])
	assert.EqualValues(t, 2048, entry["tokens"])
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn")

	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info").With("component", "resource")

	l.Info("loaded")
	assert.Contains(t, buf.String(), `"component":"resource"`)
}

func TestLoggerWithOddArgs(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info")

	l.Info("odd args", "key1", "value1", "orphan")
	assert.Contains(t, buf.String(), `"key1":"value1"`)
	assert.NotContains(t, buf.String(), "orphan")
}
