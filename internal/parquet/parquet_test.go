package parquet

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/testpulse/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var evaluatedAt = time.Date(2025, time.March, 12, 12, 0, 0, 0, time.UTC)

func sampleRecords() []schema.ExecutionRecord {
	return []schema.ExecutionRecord{
		{
			ID:                 "exec-1",
			TestCaseID:         "tc-1",
			TestName:           "Login works",
			ExecutionDate:      evaluatedAt.Add(-48 * time.Hour),
			Result:             schema.FailedResult,
			Duration:           4200,
			ErrorType:          "timeout",
			CodeChangesTouched: []string{"server/api/users.ts", "client/login.tsx"},
			BranchName:         "main",
		},
		{
			ID:            "exec-2",
			TestCaseID:    "tc-1",
			TestName:      "Login works",
			ExecutionDate: evaluatedAt.Add(-24 * time.Hour),
			Result:        schema.PassedResult,
			Duration:      3900,
		},
	}
}

func TestExecutionRowStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(ExecutionRow))
	require.NotNil(t, s)

	expectedColumns := []string{
		"execution_id",
		"test_case_id",
		"test_name",
		"execution_date",
		"result",
		"duration_ms",
		"error_type",
		"code_changes",
		"branch_name",
	}
	for _, colName := range expectedColumns {
		_, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestRiskScoreRowStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(RiskScoreRow))
	for _, colName := range []string{"evaluated_at", "test_case_id", "risk_level", "score", "historical_failure_rate", "recommendation"} {
		_, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestConvertExecutionRecords(t *testing.T) {
	rows := ConvertExecutionRecords(sampleRecords())
	require.Len(t, rows, 2)

	require.NotNil(t, rows[0].ErrorType)
	assert.Equal(t, "timeout", *rows[0].ErrorType)
	require.NotNil(t, rows[0].CodeChanges)
	assert.Equal(t, "server/api/users.ts,client/login.tsx", *rows[0].CodeChanges)
	assert.Equal(t, "failed", rows[0].Result)

	assert.Nil(t, rows[1].ErrorType)
	assert.Nil(t, rows[1].CodeChanges)
	assert.Nil(t, rows[1].BranchName)
}

func TestWriteExecutionsParquet_RoundTrip(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "executions.parquet")
	rows := ConvertExecutionRecords(sampleRecords())
	require.NoError(t, WriteExecutionsParquet(rows, outputPath))

	read, err := parquet.ReadFile[ExecutionRow](outputPath)
	require.NoError(t, err)
	require.Len(t, read, 2)
	assert.Equal(t, "exec-1", read[0].ExecutionID)
	assert.Equal(t, int64(4200), read[0].DurationMs)
	assert.True(t, rows[0].ExecutionDate.Equal(read[0].ExecutionDate))
	assert.Nil(t, read[1].ErrorType)
}

func TestWriteRiskScoresParquet(t *testing.T) {
	scores := []schema.RiskScore{{
		TestCaseID:     "tc-1",
		TestName:       "Login works",
		RiskLevel:      schema.HighRisk,
		Score:          52,
		Factors:        schema.RiskFactors{HistoricalFailureRate: 60, Complexity: 20},
		Recommendation: "Run in pre-merge suite",
	}}
	outputPath := filepath.Join(t.TempDir(), "risk.parquet")
	require.NoError(t, WriteRiskScoresParquet(ConvertRiskScores(scores, evaluatedAt), outputPath))

	read, err := parquet.ReadFile[RiskScoreRow](outputPath)
	require.NoError(t, err)
	require.Len(t, read, 1)
	assert.Equal(t, int32(52), read[0].Score)
	assert.Equal(t, "high", read[0].RiskLevel)
	assert.InDelta(t, 60.0, read[0].FailureRate, 1e-9)
	assert.True(t, evaluatedAt.Equal(read[0].EvaluatedAt))
}

func TestWriteParquet_BadPath(t *testing.T) {
	err := WriteExecutionsParquet(nil, filepath.Join(t.TempDir(), "missing", "out.parquet"))
	assert.Error(t, err)
}
