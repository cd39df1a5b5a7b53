package algo

import (
	"testing"

	"github.com/huangsam/testpulse/schema"
	"github.com/stretchr/testify/assert"
)

func TestRankRiskScores(t *testing.T) {
	scores := []schema.RiskScore{
		{TestCaseID: "a", Score: 10},
		{TestCaseID: "b", Score: 90},
		{TestCaseID: "c", Score: 10},
		{TestCaseID: "d", Score: 50},
	}
	ranked := RankRiskScores(scores, 3)
	assert.Equal(t, []string{"b", "d", "a"}, ids(ranked))

	all := RankRiskScores([]schema.RiskScore{{TestCaseID: "x", Score: 1}}, 10)
	assert.Len(t, all, 1)
}

func TestSortImpactedTests(t *testing.T) {
	tests := []schema.ImpactedTest{
		{TestCaseID: "a", Confidence: 40},
		{TestCaseID: "b", Confidence: 100},
		{TestCaseID: "c", Confidence: 40},
	}
	SortImpactedTests(tests)
	assert.Equal(t, "b", tests[0].TestCaseID)
	assert.Equal(t, "a", tests[1].TestCaseID)
	assert.Equal(t, "c", tests[2].TestCaseID)
}

func TestFailuresFirst(t *testing.T) {
	preds := []schema.TestPrediction{
		{TestCaseID: "p1", PredictedOutcome: schema.PassOutcome},
		{TestCaseID: "f1", PredictedOutcome: schema.FailOutcome},
		{TestCaseID: "p2", PredictedOutcome: schema.PassOutcome},
		{TestCaseID: "f2", PredictedOutcome: schema.FailOutcome},
	}
	out := FailuresFirst(preds)
	got := make([]string, len(out))
	for i, p := range out {
		got[i] = p.TestCaseID
	}
	assert.Equal(t, []string{"f1", "f2", "p1", "p2"}, got)
	assert.Equal(t, "p1", preds[0].TestCaseID, "input must not be reordered")
}

func TestLimit(t *testing.T) {
	assert.Equal(t, []int{1, 2}, Limit([]int{1, 2, 3}, 2))
	assert.Equal(t, []int{1}, Limit([]int{1}, 5))
	assert.Equal(t, []int{1, 2}, Limit([]int{1, 2}, -1))
}

func ids(scores []schema.RiskScore) []string {
	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = s.TestCaseID
	}
	return out
}
