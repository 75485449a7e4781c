package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseLevel(tc.input))
		})
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelWarn, Format: "text", Output: &buf})

	ctx := context.Background()
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, nil, "warn message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "warn message")
}

func TestLoggerJSONFieldsAndComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Format: "json", Output: &buf})

	child := logger.WithComponent("server").With("session", "abc")
	child.Error(context.Background(), errors.New("broken pipe"), "send failed", "pages", 3)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "send failed", record["msg"])
	assert.Equal(t, "server", record["component"])
	assert.Equal(t, "abc", record["session"])
	assert.Equal(t, "broken pipe", record["error"])
	assert.Equal(t, float64(3), record["pages"])
}

func TestRotatingFileOutput(t *testing.T) {
	var buf bytes.Buffer
	path := t.TempDir() + "/folio.log"
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Output: &buf, File: path})

	logger.Info(context.Background(), "hello from file logger")

	assert.Contains(t, buf.String(), "hello from file logger")
	assert.FileExists(t, path)
}
