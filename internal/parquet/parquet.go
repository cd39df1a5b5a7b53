// Package parquet exports execution history and risk scores to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/huangsam/testpulse/schema"
	"github.com/parquet-go/parquet-go"
)

// ExecutionRow is one retained test execution.
// This struct maps to the execution_records database table.
type ExecutionRow struct {
	// ExecutionID is the unique identifier of the execution
	ExecutionID string `parquet:"execution_id,snappy"`

	// TestCaseID references the catalog test case
	TestCaseID string `parquet:"test_case_id,snappy,dict"`

	// TestName is the display name at the time of execution
	TestName string `parquet:"test_name,snappy,dict"`

	// ExecutionDate is when the test ran (stored as TIMESTAMP with nanosecond precision)
	ExecutionDate time.Time `parquet:"execution_date,snappy"`

	// Result is passed, failed or skipped
	Result string `parquet:"result,snappy,dict"`

	// DurationMs is the run duration in milliseconds
	DurationMs int64 `parquet:"duration_ms,snappy"`

	// ErrorType classifies the failure (nullable)
	ErrorType *string `parquet:"error_type,optional,snappy"`

	// CodeChanges is the comma-separated list of touched files (nullable)
	CodeChanges *string `parquet:"code_changes,optional,snappy"`

	// BranchName is the branch under test (nullable)
	BranchName *string `parquet:"branch_name,optional,snappy"`
}

// RiskScoreRow is one risk assessment of a test case.
type RiskScoreRow struct {
	// EvaluatedAt is the instant the score was computed for
	EvaluatedAt time.Time `parquet:"evaluated_at,snappy"`

	TestCaseID     string  `parquet:"test_case_id,snappy,dict"`
	TestName       string  `parquet:"test_name,snappy,dict"`
	RiskLevel      string  `parquet:"risk_level,snappy,dict"`
	Score          int32   `parquet:"score,snappy"`
	FailureRate    float64 `parquet:"historical_failure_rate,snappy"`
	RecentChanges  float64 `parquet:"recent_changes_impact,snappy"`
	Complexity     float64 `parquet:"complexity,snappy"`
	Dependency     float64 `parquet:"dependency_weight,snappy"`
	FailureRecency float64 `parquet:"last_failure_recency,snappy"`
	Recommendation string  `parquet:"recommendation,snappy"`
}

// ConvertExecutionRecords converts schema.ExecutionRecord to ExecutionRow for Parquet export.
func ConvertExecutionRecords(records []schema.ExecutionRecord) []ExecutionRow {
	result := make([]ExecutionRow, len(records))
	for i, record := range records {
		result[i] = ExecutionRow{
			ExecutionID:   record.ID,
			TestCaseID:    record.TestCaseID,
			TestName:      record.TestName,
			ExecutionDate: record.ExecutionDate,
			Result:        string(record.Result),
			DurationMs:    record.Duration,
			ErrorType:     optionalString(record.ErrorType),
			CodeChanges:   optionalString(strings.Join(record.CodeChangesTouched, ",")),
			BranchName:    optionalString(record.BranchName),
		}
	}
	return result
}

// ConvertRiskScores converts schema.RiskScore to RiskScoreRow for Parquet export.
func ConvertRiskScores(scores []schema.RiskScore, evaluatedAt time.Time) []RiskScoreRow {
	result := make([]RiskScoreRow, len(scores))
	for i, score := range scores {
		result[i] = RiskScoreRow{
			EvaluatedAt:    evaluatedAt,
			TestCaseID:     score.TestCaseID,
			TestName:       score.TestName,
			RiskLevel:      string(score.RiskLevel),
			Score:          int32(score.Score),
			FailureRate:    score.Factors.HistoricalFailureRate,
			RecentChanges:  score.Factors.RecentChangesImpact,
			Complexity:     score.Factors.Complexity,
			Dependency:     score.Factors.DependencyWeight,
			FailureRecency: score.Factors.LastFailureRecency,
			Recommendation: score.Recommendation,
		}
	}
	return result
}

// WriteExecutionsParquet writes execution rows to a Parquet file.
func WriteExecutionsParquet(data []ExecutionRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRiskScoresParquet writes risk score rows to a Parquet file.
func WriteRiskScoresParquet(data []RiskScoreRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows using a schema inferred from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	// Close flushes the footer, so its error matters
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
