package commands

import (
	"fmt"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/google/uuid"
)

// ItemResult reports the outcome for one task of a best-effort batch.
type ItemResult struct {
	TaskID uuid.UUID
	Task   *domain.Task
	Err    error
}

// OK reports whether the item was applied.
func (r ItemResult) OK() bool { return r.Err == nil }

// Failed returns the items that were not applied.
func Failed(results []ItemResult) []ItemResult {
	var out []ItemResult
	for _, r := range results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// PartialCommitError is returned when a multi-write operation fails part way.
// Created lists the records written before the failure; when compensation
// succeeded they no longer exist.
type PartialCommitError struct {
	Op              string
	Created         []uuid.UUID
	Err             error
	CompensationErr error
}

func (e *PartialCommitError) Error() string {
	msg := fmt.Sprintf("%s: failed after %d writes: %v", e.Op, len(e.Created), e.Err)
	if e.CompensationErr != nil {
		msg += fmt.Sprintf("; rollback failed: %v", e.CompensationErr)
	}
	return msg
}

func (e *PartialCommitError) Unwrap() error { return e.Err }

// Compensated reports whether every created record was removed again.
func (e *PartialCommitError) Compensated() bool { return e.CompensationErr == nil }
