package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/bist-swing/pkg/config"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(buf, &config.Config{Env: "development", LogLevel: level, LogFormat: "json"})
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := jsonLogger(&buf, "debug")

	tests := []struct {
		name    string
		logFunc func()
		level   string
		msg     string
	}{
		{"debug", func() { log.Debug("frame built") }, "debug", "frame built"},
		{"info", func() { log.Info("scan started") }, "info", "scan started"},
		{"warn", func() { log.Warn("ticker skipped") }, "warn", "ticker skipped"},
		{"error", func() { log.Error("store failed") }, "error", "store failed"},
		{"infof", func() { log.Infof("scored %d of %d", 3, 30) }, "info", "scored 3 of 30"},
		{"warnf", func() { log.Warnf("retry %d", 2) }, "warn", "retry 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()

			entry := decode(t, &buf)
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, tt.msg, entry["message"])
			assert.Equal(t, "development", entry["env"])
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := jsonLogger(&buf, "warn")

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := jsonLogger(&buf, "info")

	log.WithFields(map[string]interface{}{
		"kind":  "FETCH_FAILED",
		"score": 72,
	}).WithTicker("THYAO.IS").WithComponent("scanner").Info("skip")

	entry := decode(t, &buf)
	assert.Equal(t, "FETCH_FAILED", entry["kind"])
	assert.Equal(t, float64(72), entry["score"])
	assert.Equal(t, "THYAO.IS", entry["ticker"])
	assert.Equal(t, "scanner", entry["component"])
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := jsonLogger(&buf, "info")

	log.WithError(errors.New("connection refused")).Error("fetch failed")

	entry := decode(t, &buf)
	assert.Equal(t, "connection refused", entry["error"])
	assert.Equal(t, "fetch failed", entry["message"])
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, &config.Config{Env: "development", LogLevel: "info", LogFormat: "console"})

	log.Info("human readable")

	out := buf.String()
	assert.True(t, strings.Contains(out, "human readable"))
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	assert.NotPanics(t, func() {
		log.WithTicker("X").Info("discarded")
	})
}
