package persistence

import (
	"fmt"
	"strings"
	"time"
)

type SubmissionStatus string

const (
	// SubmissionStatus_Submitted means the transaction was accepted by the node
	// and no receipt has been observed yet
	SubmissionStatus_Submitted SubmissionStatus = "submitted"
	SubmissionStatus_Confirmed SubmissionStatus = "confirmed"
	SubmissionStatus_Reverted  SubmissionStatus = "reverted"

	// SubmissionStatus_Unknown means the wait for a receipt ended (timeout,
	// cancellation, transport failure) without an outcome. The transaction may
	// still be mined later.
	SubmissionStatus_Unknown SubmissionStatus = "unknown"
)

// SubmissionRecord is the journal entry for one submitted transaction.
type SubmissionRecord struct {
	RunId    string `json:"runId"`
	Sequence int    `json:"sequence"`
	Step     string `json:"step"`
	Method   string `json:"method"`
	Contract string `json:"contract"`
	TxHash   string `json:"txHash"`
	Nonce    uint64 `json:"nonce"`
	From     string `json:"from"`

	SubmittedAt time.Time        `json:"submittedAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	Status      SubmissionStatus `json:"status"`
	BlockNumber uint64           `json:"blockNumber,omitempty"`
	GasUsed     uint64           `json:"gasUsed,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// IsFinal reports whether the record has an on-chain outcome
func (r *SubmissionRecord) IsFinal() bool {
	return r.Status == SubmissionStatus_Confirmed || r.Status == SubmissionStatus_Reverted
}

func (r *SubmissionRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("submission record is nil")
	}
	if r.RunId == "" {
		return fmt.Errorf("submission record has no run id")
	}
	if r.TxHash == "" {
		return fmt.Errorf("submission record has no transaction hash")
	}
	switch r.Status {
	case SubmissionStatus_Submitted, SubmissionStatus_Confirmed, SubmissionStatus_Reverted, SubmissionStatus_Unknown:
	default:
		return fmt.Errorf("submission record has invalid status %q", r.Status)
	}
	return nil
}

// Copy returns a copy of the record so stored values cannot be mutated by callers
func (r *SubmissionRecord) Copy() *SubmissionRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// NormalizeTxHash lowercases a hash so lookups do not depend on the caller's casing
func NormalizeTxHash(txHash string) string {
	return strings.ToLower(txHash)
}
