package journalFactory

import (
	"fmt"

	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/persistence"
	"github.com/filswan/swan-tx-runner/pkg/persistence/badger"
	"github.com/filswan/swan-tx-runner/pkg/persistence/memory"
	"github.com/filswan/swan-tx-runner/pkg/persistence/redis"
	"go.uber.org/zap"
)

// NewJournal opens the submission journal backend named by cfg. A nil config
// selects the in-memory journal.
func NewJournal(cfg *config.JournalConfig, logger *zap.Logger) (persistence.ISubmissionJournal, error) {
	if cfg == nil {
		return memory.NewMemoryPersistence(logger), nil
	}

	switch cfg.Type {
	case "", config.JournalType_Memory:
		return memory.NewMemoryPersistence(logger), nil
	case config.JournalType_Badger:
		path := cfg.Path
		if path == "" {
			path = config.DefaultJournalPath
		}
		bp, err := badger.NewBadgerPersistence(path, logger)
		if err != nil {
			return nil, err
		}
		return bp, nil
	case config.JournalType_Redis:
		rp, err := redis.NewRedisPersistence(&redis.RedisConfig{
			Address: cfg.RedisAddress,
			DB:      cfg.RedisDB,
		}, logger)
		if err != nil {
			return nil, err
		}
		return rp, nil
	default:
		return nil, fmt.Errorf("unsupported journal type %q", cfg.Type)
	}
}
