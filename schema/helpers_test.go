package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult(t *testing.T) {
	tests := []struct {
		input   string
		want    Result
		wantErr bool
	}{
		{"passed", PassedResult, false},
		{"PASS", PassedResult, false},
		{" failed ", FailedResult, false},
		{"fail", FailedResult, false},
		{"error", FailedResult, false},
		{"Skipped", SkippedResult, false},
		{"skip", SkippedResult, false},
		{"", "", true},
		{"flaky", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseResult(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTestType(t *testing.T) {
	assert.Equal(t, E2ETest, NormalizeTestType(" E2E "))
	assert.Equal(t, IntegrationTest, NormalizeTestType("Integration"))
	assert.Equal(t, TestType("smoke"), NormalizeTestType("Smoke"))
}

func TestNormalizePriority(t *testing.T) {
	assert.Equal(t, HighPriority, NormalizePriority("HIGH"))
	assert.Equal(t, Priority(""), NormalizePriority("  "))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a.go", "b/c.ts"}, SplitList("a.go, ,b/c.ts,"))
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList(" , "))
}

func TestEnrichRiskScores(t *testing.T) {
	scores := []RiskScore{{TestCaseID: "a", Score: 80}, {TestCaseID: "b", Score: 20}}
	enriched := EnrichRiskScores(scores)
	require.Len(t, enriched, 2)
	assert.Equal(t, 1, enriched[0].Rank)
	assert.Equal(t, "a", enriched[0].TestCaseID)
	assert.Equal(t, 2, enriched[1].Rank)
}

func TestRiskFactorsAsMap(t *testing.T) {
	f := RiskFactors{HistoricalFailureRate: 40, LastFailureRecency: 100, Complexity: 55, DependencyWeight: 60}
	m := f.AsMap()
	assert.Len(t, m, len(AllBreakdownKeys))
	assert.InDelta(t, 40.0, m[BreakdownFailureRate], 1e-9)
	assert.InDelta(t, 0.0, m[BreakdownChanges], 1e-9)
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, k := range AllBreakdownKeys {
		sum += GetDefaultWeights()[k]
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}
