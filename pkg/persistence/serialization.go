package persistence

import (
	"encoding/json"
	"fmt"
	"sort"
)

func MarshalSubmissionRecord(r *SubmissionRecord) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("cannot marshal nil SubmissionRecord")
	}

	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal SubmissionRecord to JSON: %w", err)
	}
	return data, nil
}

func UnmarshalSubmissionRecord(data []byte) (*SubmissionRecord, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var r SubmissionRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to SubmissionRecord: %w", err)
	}
	return &r, nil
}

// SortBySubmission orders records by submission time, then by run and step
// sequence for records submitted in the same instant.
func SortBySubmission(records []*SubmissionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.SubmittedAt.Before(b.SubmittedAt)
		}
		if a.RunId != b.RunId {
			return a.RunId < b.RunId
		}
		return a.Sequence < b.Sequence
	})
}

// SortBySequence orders the records of a single run by step
func SortBySequence(records []*SubmissionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Sequence < records[j].Sequence
	})
}
