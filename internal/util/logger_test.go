package util

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLogLevel(tt.input))
		})
	}
}

func TestLogger_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LoggerOptions{Level: "info"})
	require.NoError(t, err)
	logger.AddOutput(NewConsoleOutput(&buf, FormatText))

	logger.Debug("hidden")
	logger.With(F("file", "a.json")).Info("loaded", F("count", 3))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[INFO] loaded count=3 file=a.json")
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LoggerOptions{Level: "debug"})
	require.NoError(t, err)
	logger.AddOutput(NewConsoleOutput(&buf, FormatJSON))

	logger.Warnf("dropped %d readings", 2)

	var entry LogEntry
	require.NoError(t, sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "WARN", entry.Level)
	assert.Equal(t, "dropped 2 readings", entry.Message)
}

func TestLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "actograph.log")

	logger, err := NewLogger(LoggerOptions{Level: "debug", File: path})
	require.NoError(t, err)
	logger.Debug("first")
	logger.Error("second")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[DEBUG] first")
	assert.Contains(t, lines[1], "[ERROR] second")
}

func TestLogger_NoOutputsDiscards(t *testing.T) {
	logger, err := NewLogger(LoggerOptions{})
	require.NoError(t, err)
	assert.NotPanics(t, func() { logger.Error("nowhere") })
}

func TestGlobalLogger(t *testing.T) {
	require.NoError(t, CloseLogger())
	assert.NotPanics(t, func() { LogInfo("before init") })

	path := filepath.Join(t.TempDir(), "global.log")
	require.NoError(t, InitLogger(LoggerOptions{Level: "info", File: path}))
	LogInfof("hello %s", "world")
	LogDebug("filtered")
	require.NoError(t, CloseLogger())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello world")
	assert.NotContains(t, string(data), "filtered")
}
