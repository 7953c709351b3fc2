package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBasicLogger_SplitsLinesAndPrefixes(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&buf, false)

	l.Info("first\nsecond")
	l.Warn("careful")
	l.Error("broken")
	l.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "first\n")
	assert.Contains(t, out, "second\n")
	assert.Contains(t, out, "Warning: careful")
	assert.Contains(t, out, "Error: broken")
	assert.NotContains(t, out, "hidden")
}

func TestBasicLogger_VerboseDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&buf, true)

	l.Debug("nonce %d", 3)
	assert.Contains(t, buf.String(), "Debug: nonce 3")
}

func TestZapLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLoggerWithCore(core)

	l.Info("AetherNet deployed to: %s", "0x01")
	l.Warn("\n")
	l.Error("failed: %v", "boom")
	l.Debug("raw")

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "AetherNet deployed to: 0x01", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "failed: boom", entries[1].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
}
