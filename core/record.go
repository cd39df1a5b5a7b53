package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/huangsam/testpulse/internal/contract"
	"github.com/huangsam/testpulse/schema"
)

// Validation errors returned by RecordTestExecution.
var (
	ErrMissingTestCaseID = errors.New("test case id is required")
	ErrUnknownResult     = errors.New("unknown execution result")
)

// RecordTestExecution validates and normalizes one execution and appends it to the store.
// It is the only write path into execution history.
func (e *Engine) RecordTestExecution(store contract.HistoryStore, in schema.ExecutionInput) (schema.ExecutionRecord, error) {
	testCaseID := strings.TrimSpace(in.TestCaseID)
	if testCaseID == "" {
		return schema.ExecutionRecord{}, ErrMissingTestCaseID
	}
	if _, ok := schema.ValidResults[in.Result]; !ok {
		return schema.ExecutionRecord{}, fmt.Errorf("%w: %q", ErrUnknownResult, in.Result)
	}

	rec := schema.ExecutionRecord{
		ID:                 uuid.NewString(),
		TestCaseID:         testCaseID,
		TestName:           strings.TrimSpace(in.TestName),
		ExecutionDate:      in.ExecutionDate,
		Result:             in.Result,
		Duration:           max(0, in.Duration),
		ErrorType:          strings.TrimSpace(in.ErrorType),
		CodeChangesTouched: slices.Clone(in.CodeChangesTouched),
		BranchName:         strings.TrimSpace(in.BranchName),
	}
	if rec.TestName == "" {
		rec.TestName = testCaseID
	}
	if rec.ExecutionDate.IsZero() {
		rec.ExecutionDate = e.now()
	}

	if err := store.Record(rec); err != nil {
		return schema.ExecutionRecord{}, fmt.Errorf("failed to record execution for %s: %w", testCaseID, err)
	}
	return rec, nil
}
