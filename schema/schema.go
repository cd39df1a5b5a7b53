// Package schema has configs, models and global variables for all parts of testpulse.
package schema

import "time"

// TestCase is the static metadata of a single test, owned by the test catalog.
// It is read-only for every scoring operation.
type TestCase struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description"`
	Type        TestType `json:"type" yaml:"type"`
	Priority    Priority `json:"priority" yaml:"priority"`
}

// ExecutionRecord is one immutable observation of a completed test run.
type ExecutionRecord struct {
	ID                 string    `json:"id"`                             // Unique execution identifier (uuid)
	TestCaseID         string    `json:"test_case_id"`                   // Owning test case
	TestName           string    `json:"test_name"`                      // Test name at execution time
	ExecutionDate      time.Time `json:"execution_date"`                 // When the run completed
	Result             Result    `json:"result"`                         // passed, failed or skipped
	Duration           int64     `json:"duration_ms"`                    // Wall time in milliseconds
	ErrorType          string    `json:"error_type,omitempty"`           // Error class of a failed run
	CodeChangesTouched []string  `json:"code_changes_touched,omitempty"` // Files changed for this run
	BranchName         string    `json:"branch_name,omitempty"`          // VCS branch of the run
}

// ExecutionInput holds the caller-supplied fields of a new execution.
// The identifier is assigned when the record is stored.
type ExecutionInput struct {
	TestCaseID         string
	TestName           string
	Result             Result
	Duration           int64
	ErrorType          string
	CodeChangesTouched []string
	BranchName         string
	ExecutionDate      time.Time // Zero means "now"
}

// IsFailure reports whether the record represents a failed run.
func (r ExecutionRecord) IsFailure() bool {
	return r.Result == FailedResult
}
