package persistence

import "errors"

var (
	ErrClosed             = errors.New("persistence layer is closed")
	ErrSubmissionNotFound = errors.New("submission not found")
)

// ISubmissionJournal records every transaction a run submits together with its
// final outcome. It is an audit trail only: nothing reads it back to decide
// whether a step should be submitted again.
//
// All implementations must be safe for concurrent use.
type ISubmissionJournal interface {
	// RecordSubmission stores a new record keyed by its transaction hash.
	// Recording the same hash twice overwrites the earlier record.
	RecordSubmission(record *SubmissionRecord) error

	// UpdateSubmission replaces an existing record. Returns
	// ErrSubmissionNotFound if the hash was never recorded.
	UpdateSubmission(record *SubmissionRecord) error

	// LoadSubmission returns nil if the hash is unknown, error only on storage failure.
	LoadSubmission(txHash string) (*SubmissionRecord, error)

	// ListSubmissions returns every record, oldest submission first.
	ListSubmissions() ([]*SubmissionRecord, error)

	// ListRunSubmissions returns the records of one run in step order.
	ListRunSubmissions(runId string) ([]*SubmissionRecord, error)

	// Close is idempotent. After Close all other operations return ErrClosed.
	Close() error

	HealthCheck() error
}
