package memory

import (
	"fmt"
	"sync"

	"github.com/filswan/swan-tx-runner/pkg/persistence"
	"go.uber.org/zap"
)

// MemoryPersistence keeps the journal in process memory. Records are lost when
// the process exits, which is fine for one-shot scripts that only log.
type MemoryPersistence struct {
	mu sync.RWMutex

	// txHash -> record
	submissions map[string]*persistence.SubmissionRecord

	closed bool
}

func NewMemoryPersistence(logger *zap.Logger) *MemoryPersistence {
	logger.Sugar().Debugw("Using in-memory submission journal, records will not survive the process")

	return &MemoryPersistence{
		submissions: make(map[string]*persistence.SubmissionRecord),
	}
}

func (m *MemoryPersistence) RecordSubmission(record *persistence.SubmissionRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("cannot record submission: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	m.submissions[persistence.NormalizeTxHash(record.TxHash)] = record.Copy()
	return nil
}

func (m *MemoryPersistence) UpdateSubmission(record *persistence.SubmissionRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("cannot update submission: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	key := persistence.NormalizeTxHash(record.TxHash)
	if _, ok := m.submissions[key]; !ok {
		return fmt.Errorf("%w: %s", persistence.ErrSubmissionNotFound, record.TxHash)
	}
	m.submissions[key] = record.Copy()
	return nil
}

func (m *MemoryPersistence) LoadSubmission(txHash string) (*persistence.SubmissionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	record, ok := m.submissions[persistence.NormalizeTxHash(txHash)]
	if !ok {
		return nil, nil
	}
	return record.Copy(), nil
}

func (m *MemoryPersistence) ListSubmissions() ([]*persistence.SubmissionRecord, error) {
	return m.list(func(*persistence.SubmissionRecord) bool { return true }, persistence.SortBySubmission)
}

func (m *MemoryPersistence) ListRunSubmissions(runId string) ([]*persistence.SubmissionRecord, error) {
	return m.list(func(r *persistence.SubmissionRecord) bool { return r.RunId == runId }, persistence.SortBySequence)
}

func (m *MemoryPersistence) list(keep func(*persistence.SubmissionRecord) bool, sortFn func([]*persistence.SubmissionRecord)) ([]*persistence.SubmissionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	records := make([]*persistence.SubmissionRecord, 0, len(m.submissions))
	for _, r := range m.submissions {
		if keep(r) {
			records = append(records, r.Copy())
		}
	}
	sortFn(records)
	return records, nil
}

func (m *MemoryPersistence) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.submissions = nil
	return nil
}

func (m *MemoryPersistence) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return persistence.ErrClosed
	}
	return nil
}
