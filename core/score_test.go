package core

import (
	"strings"
	"testing"

	"github.com/huangsam/testpulse/internal/history"
	"github.com/huangsam/testpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCalculateRiskScores_IntegrationScenario checks a fully worked example:
// 10 runs, 4 failures, the last one 3 days ago, no recent code changes.
func TestCalculateRiskScores_IntegrationScenario(t *testing.T) {
	tc := schema.TestCase{
		ID:          "tc-orders",
		Name:        "Order Integration",
		Description: strings.Repeat("x", 50),
		Type:        schema.IntegrationTest,
		Priority:    schema.MediumPriority,
	}
	var recs []schema.ExecutionRecord
	for i := 10; i >= 1; i-- {
		result := schema.PassedResult
		if i == 3 || i == 5 || i == 8 || i == 9 {
			result = schema.FailedResult
		}
		recs = append(recs, rec(tc.ID, 11-i, result, daysAgo(wednesday, float64(i))))
	}

	scores := newTestEngine(wednesday).CalculateRiskScores([]schema.TestCase{tc}, snapshotOf(recs...))
	require.Len(t, scores, 1)
	got := scores[0]

	assert.InDelta(t, 40, got.Factors.HistoricalFailureRate, 1e-9)
	assert.InDelta(t, 0, got.Factors.RecentChangesImpact, 1e-9)
	assert.InDelta(t, 55, got.Factors.Complexity, 1e-9)
	assert.InDelta(t, 60, got.Factors.DependencyWeight, 1e-9)
	assert.InDelta(t, 100, got.Factors.LastFailureRecency, 1e-9)
	// 0.30*40 + 0.20*100 + 0.20*55 + 0.15*60 + 0.15*0 = 52
	assert.Equal(t, 52, got.Score)
	assert.Equal(t, schema.HighRisk, got.RiskLevel)
	assert.Equal(t, "run on every change-set/PR", got.Recommendation)
}

func TestLastFailureRecency(t *testing.T) {
	tests := []struct {
		name     string
		recs     []schema.ExecutionRecord
		expected float64
	}{
		{"no history", nil, 0},
		{"only passes", []schema.ExecutionRecord{rec("a", 1, schema.PassedResult, daysAgo(wednesday, 1))}, 0},
		{"failed two days ago", []schema.ExecutionRecord{rec("a", 1, schema.FailedResult, daysAgo(wednesday, 2))}, 100},
		{"just under a week", []schema.ExecutionRecord{rec("a", 1, schema.FailedResult, daysAgo(wednesday, 6.9))}, 100},
		{"ten days ago", []schema.ExecutionRecord{rec("a", 1, schema.FailedResult, daysAgo(wednesday, 10))}, 50},
		{"forty days ago", []schema.ExecutionRecord{rec("a", 1, schema.FailedResult, daysAgo(wednesday, 40))}, 0},
		{
			"most recent failure wins regardless of order",
			[]schema.ExecutionRecord{
				rec("a", 1, schema.FailedResult, daysAgo(wednesday, 1)),
				rec("a", 2, schema.FailedResult, daysAgo(wednesday, 40)),
			},
			100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, lastFailureRecency(tt.recs, wednesday), 1e-9)
		})
	}
}

func TestComplexity(t *testing.T) {
	tests := []struct {
		name     string
		tc       schema.TestCase
		expected float64
	}{
		{"unit without description", schema.TestCase{Type: schema.UnitTest}, 20},
		{"upper-case type", schema.TestCase{Type: "Integration"}, 50},
		{"performance", schema.TestCase{Type: schema.PerformanceTest}, 70},
		{"security", schema.TestCase{Type: schema.SecurityTest}, 75},
		{"unknown type uses default", schema.TestCase{Type: "smoke"}, 40},
		{"description bonus rounds", schema.TestCase{Type: "smoke", Description: strings.Repeat("d", 15)}, 42},
		{"description bonus is capped", schema.TestCase{Type: schema.E2ETest, Description: strings.Repeat("d", 300)}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, complexity(tt.tc), 1e-9)
		})
	}
}

func TestDependencyWeight(t *testing.T) {
	assert.InDelta(t, 10, dependencyWeight(schema.UnitTest), 1e-9)
	assert.InDelta(t, 85, dependencyWeight(schema.E2ETest), 1e-9)
	assert.InDelta(t, 30, dependencyWeight("contract"), 1e-9)
	assert.InDelta(t, 30, dependencyWeight(""), 1e-9)
}

func TestRecentChangesImpact(t *testing.T) {
	withChanges := func(n int, days float64, files ...string) schema.ExecutionRecord {
		r := rec("a", n, schema.PassedResult, daysAgo(wednesday, days))
		r.CodeChangesTouched = files
		return r
	}

	t.Run("averages recent runs that touched files", func(t *testing.T) {
		recs := []schema.ExecutionRecord{
			withChanges(1, 10, "a", "b", "c", "d", "e", "f", "g", "h", "i", "j"),
			withChanges(2, 3, "a", "b"),
			withChanges(3, 2),
			withChanges(4, 1, "a", "b", "c", "d"),
		}
		assert.InDelta(t, 60, recentChangesImpact(recs, wednesday), 1e-9)
	})

	t.Run("caps at one hundred", func(t *testing.T) {
		recs := []schema.ExecutionRecord{withChanges(1, 1, "a", "b", "c", "d", "e", "f")}
		assert.InDelta(t, 100, recentChangesImpact(recs, wednesday), 1e-9)
	})

	t.Run("zero without recent changes", func(t *testing.T) {
		recs := []schema.ExecutionRecord{withChanges(1, 8, "a")}
		assert.InDelta(t, 0, recentChangesImpact(recs, wednesday), 1e-9)
	})
}

func TestRiskLevelFor(t *testing.T) {
	tests := []struct {
		score    int
		expected schema.RiskLevel
	}{
		{100, schema.CriticalRisk},
		{70, schema.CriticalRisk},
		{69, schema.HighRisk},
		{50, schema.HighRisk},
		{49, schema.MediumRisk},
		{30, schema.MediumRisk},
		{29, schema.LowRisk},
		{0, schema.LowRisk},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, RiskLevelFor(tt.score), "score %d", tt.score)
	}
	assert.Equal(t, "run every build", RecommendationFor(schema.CriticalRisk))
	assert.Equal(t, "run in periodic regression sweeps", RecommendationFor("bogus"))
}

func TestCalculateRiskScores_NoHistory(t *testing.T) {
	tcs := []schema.TestCase{{ID: "u", Name: "Unit", Type: schema.UnitTest}}
	scores := newTestEngine(wednesday).CalculateRiskScores(tcs, history.Snapshot{})
	require.Len(t, scores, 1)
	// 0.20*20 + 0.15*10 = 5.5
	assert.Equal(t, 6, scores[0].Score)
	assert.Equal(t, schema.LowRisk, scores[0].RiskLevel)
}

func TestCalculateRiskScores_SortedAndStable(t *testing.T) {
	tcs := []schema.TestCase{
		{ID: "u1", Name: "Unit one", Type: schema.UnitTest},
		{ID: "e", Name: "Journey", Type: schema.E2ETest},
		{ID: "u2", Name: "Unit two", Type: schema.UnitTest},
	}
	scores := newTestEngine(wednesday).CalculateRiskScores(tcs, history.Snapshot{})
	require.Len(t, scores, 3)
	assert.Equal(t, []string{"e", "u1", "u2"}, []string{scores[0].TestCaseID, scores[1].TestCaseID, scores[2].TestCaseID})
}

func TestCalculateRiskScores_CustomWeights(t *testing.T) {
	engine := newTestEngine(wednesday, WithWeights(map[schema.BreakdownKey]float64{
		schema.BreakdownFailureRate: 0,
		schema.BreakdownRecency:     0,
		schema.BreakdownComplexity:  1,
		schema.BreakdownDependency:  0,
		schema.BreakdownChanges:     0,
	}))
	tcs := []schema.TestCase{{ID: "s", Name: "Sec", Type: schema.SecurityTest}}
	scores := engine.CalculateRiskScores(tcs, history.Snapshot{})
	assert.Equal(t, 75, scores[0].Score)
	assert.InDelta(t, 1.0, engine.Weights()[schema.BreakdownComplexity], 1e-9)
}

func TestCalculateRiskScores_Properties(t *testing.T) {
	engine := newTestEngine(wednesday)
	types := []schema.TestType{schema.UnitTest, schema.IntegrationTest, schema.E2ETest, schema.PerformanceTest, schema.SecurityTest, "other"}

	for _, typ := range types {
		for failures := 0; failures <= 12; failures += 3 {
			tc := schema.TestCase{ID: "t", Name: "T", Type: typ, Description: strings.Repeat("z", failures*20)}
			var recs []schema.ExecutionRecord
			for i := range 12 {
				result := schema.PassedResult
				if i < failures {
					result = schema.FailedResult
				}
				r := rec("t", i, result, daysAgo(wednesday, float64(12-i)))
				r.CodeChangesTouched = make([]string, i)
				recs = append(recs, r)
			}
			snap := snapshotOf(recs...)

			first := engine.CalculateRiskScores([]schema.TestCase{tc}, snap)
			second := engine.CalculateRiskScores([]schema.TestCase{tc}, snap)
			require.Equal(t, first, second, "scoring must be idempotent")

			s := first[0]
			assert.GreaterOrEqual(t, s.Score, 0)
			assert.LessOrEqual(t, s.Score, 100)
			assert.Equal(t, RiskLevelFor(s.Score), s.RiskLevel)

			// One more failure never lowers the failure rate or the score.
			more := append(recs, rec("t", 99, schema.FailedResult, daysAgo(wednesday, 0.5)))
			after := engine.CalculateRiskScores([]schema.TestCase{tc}, snapshotOf(more...))[0]
			assert.GreaterOrEqual(t, after.Factors.HistoricalFailureRate, s.Factors.HistoricalFailureRate)
			assert.GreaterOrEqual(t, after.Score, s.Score)
		}
	}
}
