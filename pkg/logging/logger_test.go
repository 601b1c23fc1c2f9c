package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: "warn", Output: &buf})

	logger.Info("dropped")
	logger.Warn("kept", "industry", "travel")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "travel", entry["industry"])
}

func TestNewLoggerPretty(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(Config{Level: "debug", Pretty: true, Output: &buf}).Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "k=v")
}
