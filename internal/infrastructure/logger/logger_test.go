package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.NotEmpty(t, cfg.TimeFormat)
}

func TestTerminalConfig(t *testing.T) {
	cfg := TerminalConfig("/var/log/pos/terminal.log")

	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "/var/log/pos/terminal.log", cfg.Output)
	assert.Positive(t, cfg.MaxSizeMB)
	assert.True(t, cfg.Compress)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestCreateWriter_FileUsesRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terminal.log")
	cfg := TerminalConfig(path)

	w := newRotatingWriter(cfg)
	lj, ok := w.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, path, lj.Filename)
	assert.Equal(t, 50, lj.MaxSize)
	assert.Equal(t, 5, lj.MaxBackups)
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terminal.log")
	cfg := TerminalConfig(path)

	log, err := New(cfg)
	require.NoError(t, err)
	log.Info("sale completed")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.Contains(t, line, `"msg":"sale completed"`)
	assert.Contains(t, line, `"level":"info"`)
}

func TestNew_RespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terminal.log")
	cfg := TerminalConfig(path)
	cfg.Level = "warn"

	log, err := New(cfg)
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNew_Console(t *testing.T) {
	log, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.NotNil(t, log)
	assert.NotNil(t, Named(log, "checkout"))
}
