package schema

import "time"

// HistoryStatus represents the status of the execution history store.
type HistoryStatus struct {
	Backend             string           `json:"backend"`
	Connected           bool             `json:"connected"`
	TotalRecords        int              `json:"total_records"`
	TotalTestCases      int              `json:"total_test_cases"`
	FailedRecords       int              `json:"failed_records"`
	LastExecutionTime   time.Time        `json:"last_execution_time"`
	OldestExecutionTime time.Time        `json:"oldest_execution_time"`
	TableSizes          map[string]int64 `json:"table_sizes,omitempty"`
}
