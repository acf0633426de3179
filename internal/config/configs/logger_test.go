package configs

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"err":     slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, Logger{Level: in}.SlogLevel(), in)
	}
}

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	Logger{Level: "info", Format: "json"}.New(&buf).Info("hello", slog.Int("n", 1))
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	Logger{Level: "error", Format: "text"}.New(&buf).Info("dropped")
	assert.Empty(t, buf.String())
}
