// Package algo has the ranking helpers shared by the engine and its callers.
package algo

import (
	"slices"

	"github.com/huangsam/testpulse/schema"
)

// SortRiskScores sorts scores by descending score. Ties keep their input order.
func SortRiskScores(scores []schema.RiskScore) {
	slices.SortStableFunc(scores, func(a, b schema.RiskScore) int {
		return b.Score - a.Score
	})
}

// RankRiskScores sorts scores by descending score and returns the top 'limit' entries.
// If limit is greater than the number of scores, all scores are returned in sorted order.
func RankRiskScores(scores []schema.RiskScore, limit int) []schema.RiskScore {
	SortRiskScores(scores)
	if len(scores) > limit {
		return scores[:limit]
	}
	return scores
}

// SortImpactedTests sorts impacted tests by descending confidence. Ties keep their input order.
func SortImpactedTests(tests []schema.ImpactedTest) {
	slices.SortStableFunc(tests, func(a, b schema.ImpactedTest) int {
		return b.Confidence - a.Confidence
	})
}

// FailuresFirst returns predictions with predicted failures ahead of passes.
// Each group keeps its input order.
func FailuresFirst(preds []schema.TestPrediction) []schema.TestPrediction {
	out := slices.Clone(preds)
	slices.SortStableFunc(out, func(a, b schema.TestPrediction) int {
		return outcomeRank(a.PredictedOutcome) - outcomeRank(b.PredictedOutcome)
	})
	return out
}

func outcomeRank(o schema.Outcome) int {
	if o == schema.FailOutcome {
		return 0
	}
	return 1
}

// Limit truncates a slice to at most n elements.
func Limit[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
