package journalFactory

import (
	"testing"

	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/persistence/badger"
	"github.com/filswan/swan-tx-runner/pkg/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewJournal(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("nil config is memory", func(t *testing.T) {
		j, err := NewJournal(nil, logger)
		require.NoError(t, err)
		defer func() { _ = j.Close() }()
		assert.IsType(t, &memory.MemoryPersistence{}, j)
	})

	t.Run("badger", func(t *testing.T) {
		j, err := NewJournal(&config.JournalConfig{Type: config.JournalType_Badger, Path: t.TempDir()}, logger)
		require.NoError(t, err)
		defer func() { _ = j.Close() }()
		assert.IsType(t, &badger.BadgerPersistence{}, j)
		assert.NoError(t, j.HealthCheck())
	})

	t.Run("redis without address", func(t *testing.T) {
		_, err := NewJournal(&config.JournalConfig{Type: config.JournalType_Redis}, logger)
		assert.Error(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewJournal(&config.JournalConfig{Type: "sqlite"}, logger)
		assert.Error(t, err)
	})
}
