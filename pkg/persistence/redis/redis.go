package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/filswan/swan-tx-runner/pkg/persistence"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Key layout in Redis
const (
	keyPrefixSubmission  = "swan:submission:"
	keyPrefixRun         = "swan:run:"
	keySchemaVersion     = "swan:metadata:schema_version"
	currentSchemaVersion = "v1"

	// set of every recorded hash, Redis has no prefix iteration
	keySetSubmissions = "swan:submissions:index"

	operationTimeout = 5 * time.Second
)

// RedisPersistence stores the submission journal in Redis so several hosts
// running scripts against the same contracts share one history. Each run is a
// sorted set of hashes scored by step sequence.
type RedisPersistence struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string
	mu        sync.RWMutex
	closed    bool
}

type RedisConfig struct {
	// Address is host:port
	Address  string
	Password string
	DB       int
	// KeyPrefix is prepended to every key, e.g. "staging:"
	KeyPrefix string
}

func NewRedisPersistence(cfg *RedisConfig, logger *zap.Logger) (*RedisPersistence, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	rp := &RedisPersistence{
		client:    client,
		logger:    logger,
		keyPrefix: cfg.KeyPrefix,
	}

	if err := rp.initSchema(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Infow("Redis submission journal initialized", "address", cfg.Address, "db", cfg.DB, "key_prefix", cfg.KeyPrefix)
	return rp, nil
}

func (r *RedisPersistence) prefixKey(key string) string {
	return r.keyPrefix + key
}

func (r *RedisPersistence) submissionKey(txHash string) string {
	return r.prefixKey(keyPrefixSubmission + persistence.NormalizeTxHash(txHash))
}

func (r *RedisPersistence) runKey(runId string) string {
	return r.prefixKey(keyPrefixRun + runId)
}

func (r *RedisPersistence) initSchema(ctx context.Context) error {
	schemaKey := r.prefixKey(keySchemaVersion)

	existingVersion, err := r.client.Get(ctx, schemaKey).Result()
	if errors.Is(err, redis.Nil) {
		return r.client.Set(ctx, schemaKey, currentSchemaVersion, 0).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if existingVersion != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
	}
	return nil
}

func (r *RedisPersistence) RecordSubmission(record *persistence.SubmissionRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("cannot record submission: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	data, err := persistence.MarshalSubmissionRecord(record)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	hash := persistence.NormalizeTxHash(record.TxHash)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.submissionKey(hash), data, 0)
	pipe.SAdd(ctx, r.prefixKey(keySetSubmissions), hash)
	pipe.ZAdd(ctx, r.runKey(record.RunId), redis.Z{Score: float64(record.Sequence), Member: hash})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record submission %s: %w", record.TxHash, err)
	}
	return nil
}

func (r *RedisPersistence) UpdateSubmission(record *persistence.SubmissionRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("cannot update submission: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	data, err := persistence.MarshalSubmissionRecord(record)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	// XX only overwrites an existing key
	ok, err := r.client.SetXX(ctx, r.submissionKey(record.TxHash), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to update submission %s: %w", record.TxHash, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", persistence.ErrSubmissionNotFound, record.TxHash)
	}
	return nil
}

func (r *RedisPersistence) LoadSubmission(txHash string) (*persistence.SubmissionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	data, err := r.client.Get(ctx, r.submissionKey(txHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load submission %s: %w", txHash, err)
	}
	return persistence.UnmarshalSubmissionRecord(data)
}

func (r *RedisPersistence) ListSubmissions() ([]*persistence.SubmissionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	hashes, err := r.client.SMembers(ctx, r.prefixKey(keySetSubmissions)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list submission hashes: %w", err)
	}

	records, err := r.fetch(ctx, hashes)
	if err != nil {
		return nil, err
	}
	persistence.SortBySubmission(records)
	return records, nil
}

func (r *RedisPersistence) ListRunSubmissions(runId string) ([]*persistence.SubmissionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	hashes, err := r.client.ZRange(ctx, r.runKey(runId), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions of run %s: %w", runId, err)
	}

	records, err := r.fetch(ctx, hashes)
	if err != nil {
		return nil, err
	}
	persistence.SortBySequence(records)
	return records, nil
}

// fetch loads the records for hashes with a single MGET, skipping entries that
// have disappeared or cannot be decoded.
func (r *RedisPersistence) fetch(ctx context.Context, hashes []string) ([]*persistence.SubmissionRecord, error) {
	records := make([]*persistence.SubmissionRecord, 0, len(hashes))
	if len(hashes) == 0 {
		return records, nil
	}

	keys := make([]string, len(hashes))
	for i, h := range hashes {
		keys[i] = r.submissionKey(h)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	for i, val := range values {
		if val == nil {
			r.logger.Sugar().Warnw("Indexed submission is missing", "key", keys[i])
			continue
		}
		data, ok := val.(string)
		if !ok {
			r.logger.Sugar().Warnw("Unexpected value type for SubmissionRecord", "key", keys[i])
			continue
		}
		record, err := persistence.UnmarshalSubmissionRecord([]byte(data))
		if err != nil {
			r.logger.Sugar().Warnw("Failed to unmarshal SubmissionRecord, skipping", "key", keys[i], "error", err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *RedisPersistence) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}

	r.logger.Sugar().Debug("Redis submission journal closed")
	return nil
}

func (r *RedisPersistence) HealthCheck() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	_, err := r.client.Get(ctx, r.prefixKey(keySchemaVersion)).Result()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("schema version not found - database may not be properly initialized")
	}
	if err != nil {
		return fmt.Errorf("failed to verify schema version: %w", err)
	}
	return nil
}
