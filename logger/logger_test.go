package logger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/chatstream/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zap.InfoLevel},
		{"info", zap.InfoLevel},
		{"DEBUG", zap.DebugLevel},
		{" warn ", zap.WarnLevel},
		{"warning", zap.WarnLevel},
		{"error", zap.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := logger.ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := logger.ParseLevel("loud")
	assert.ErrorContains(t, err, `unknown log level "loud"`)
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("writes json records to file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "logs", "chatstream.log")
		l, flush, err := logger.New(logger.Options{Level: "debug", Path: path})
		require.NoError(t, err)

		l.Debug("stream start", zap.String("chat_id", "c1"))
		l.Info("filtered?", zap.Int("n", 2))
		flush()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 2)

		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
		assert.Equal(t, "debug", rec["level"])
		assert.Equal(t, "stream start", rec["message"])
		assert.Equal(t, "c1", rec["chat_id"])
		assert.Contains(t, rec, "time")
		assert.Contains(t, rec, "caller")
	})

	t.Run("level filters records", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "out.log")
		l, flush, err := logger.New(logger.Options{Level: "warn", Path: path})
		require.NoError(t, err)

		l.Info("hidden")
		l.Warn("shown")
		flush()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "hidden")
		assert.Contains(t, string(data), "shown")
	})

	t.Run("no outputs yields nop logger", func(t *testing.T) {
		t.Parallel()
		l, flush, err := logger.New(logger.Options{})
		require.NoError(t, err)
		l.Error("nowhere")
		flush()
		assert.False(t, l.Core().Enabled(zap.ErrorLevel))
	})

	t.Run("bad level", func(t *testing.T) {
		t.Parallel()
		_, _, err := logger.New(logger.Options{Level: "verbose"})
		assert.Error(t, err)
	})
}
