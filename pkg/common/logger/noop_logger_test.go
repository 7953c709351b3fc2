package logger

import (
	"sync"
	"testing"

	"github.com/AetherQuanta/aethernet-cli/pkg/common/iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopLogger_Interface(t *testing.T) {
	var _ iface.Logger = &NoopLogger{}
	var _ iface.ProgressTracker = &NoopProgressTracker{}
}

func TestNoopLogger_LoggingMethods(t *testing.T) {
	logger := NewNoopLogger()

	logger.Title("Deploying %s", "AetherNet")
	logger.Info("AetherNet deployed to: %s", "0xabc")
	logger.Warn("gas estimate %d", 21000)
	logger.Error("setter %s failed", "setPhiScore")
	logger.Debug("nonce %d", 7)

	entries := logger.GetEntries()
	require.Len(t, entries, 5)

	assert.Equal(t, "TITLE", entries[0].Level)
	assert.Contains(t, entries[0].Message, "Deploying AetherNet")
	assert.Equal(t, LogEntry{Level: "INFO", Message: "AetherNet deployed to: 0xabc"}, entries[1])
	assert.Equal(t, LogEntry{Level: "WARN", Message: "gas estimate 21000"}, entries[2])
	assert.Equal(t, LogEntry{Level: "ERROR", Message: "setter setPhiScore failed"}, entries[3])
	assert.Equal(t, LogEntry{Level: "DEBUG", Message: "nonce 7"}, entries[4])
}

func TestNoopLogger_EmptyMessagesAreDropped(t *testing.T) {
	logger := NewNoopLogger()

	logger.Info("")
	logger.Info("\n\n")
	logger.Warn("")
	logger.Error("")
	logger.Debug("")
	logger.Title("")

	require.Equal(t, 1, logger.Len())
	assert.Equal(t, "TITLE", logger.GetEntries()[0].Level)
}

func TestNoopLogger_Queries(t *testing.T) {
	logger := NewNoopLogger()
	logger.Info("PhiScore set to: 1")
	logger.Error("deploy failed")
	logger.Info("done")

	assert.True(t, logger.Contains("PhiScore"))
	assert.True(t, logger.ContainsLevel("ERROR", "deploy"))
	assert.False(t, logger.ContainsLevel("INFO", "deploy"))
	assert.Equal(t, []string{"PhiScore set to: 1", "done"}, logger.GetMessagesByLevel("INFO"))

	logger.Clear()
	assert.Equal(t, 0, logger.Len())
}

func TestNoopLogger_Concurrent(t *testing.T) {
	logger := NewNoopLogger()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.Info("message %d", i)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, logger.Len())
}
