package core

import (
	"math"
	"time"
	"unicode/utf8"

	"github.com/huangsam/testpulse/core/algo"
	"github.com/huangsam/testpulse/internal/contract"
	"github.com/huangsam/testpulse/schema"
)

// Tunable constants of the risk model.
const (
	noFailureDays         = 999                // days assumed when a test never failed
	recentChangesWindow   = 7 * 24 * time.Hour // lookback for recentChangesImpact
	changeImpactPerFile   = 20.0               // points per touched file
	maxDescriptionBonus   = 20.0               // complexity bonus cap for long descriptions
	descriptionCharsPoint = 10.0               // description characters per bonus point
)

// Risk level thresholds, inclusive lower bounds.
const (
	CriticalThreshold = 70
	HighThreshold     = 50
	MediumThreshold   = 30
)

var complexityBase = map[schema.TestType]float64{
	schema.UnitTest:        20,
	schema.IntegrationTest: 50,
	schema.E2ETest:         80,
	schema.PerformanceTest: 70,
	schema.SecurityTest:    75,
}

const defaultComplexityBase = 40.0

var dependencyWeights = map[schema.TestType]float64{
	schema.UnitTest:        10,
	schema.IntegrationTest: 60,
	schema.E2ETest:         85,
	schema.PerformanceTest: 40,
	schema.SecurityTest:    50,
}

const defaultDependencyWeight = 30.0

var recommendations = map[schema.RiskLevel]string{
	schema.CriticalRisk: "run every build",
	schema.HighRisk:     "run on every change-set/PR",
	schema.MediumRisk:   "run nightly and pre-release",
	schema.LowRisk:      "run in periodic regression sweeps",
}

// CalculateRiskScores scores every test case against its history and returns
// the results ranked by descending score. Ties keep catalog order.
func (e *Engine) CalculateRiskScores(testCases []schema.TestCase, hist contract.HistoryReader) []schema.RiskScore {
	now := e.now()
	scores := make([]schema.RiskScore, 0, len(testCases))
	for _, tc := range testCases {
		scores = append(scores, e.scoreTestCase(tc, hist.History(tc.ID), now))
	}
	algo.SortRiskScores(scores)
	return scores
}

// scoreTestCase derives the risk score of one test case.
func (e *Engine) scoreTestCase(tc schema.TestCase, recs []schema.ExecutionRecord, now time.Time) schema.RiskScore {
	factors := computeFactors(tc, recs, now)

	values := factors.AsMap()
	raw := 0.0
	for _, key := range schema.AllBreakdownKeys {
		raw += e.weights[key] * values[key]
	}
	score := int(math.Round(clamp(raw, 0, 100)))
	level := RiskLevelFor(score)

	return schema.RiskScore{
		TestCaseID:     tc.ID,
		TestName:       tc.Name,
		RiskLevel:      level,
		Score:          score,
		Factors:        factors,
		Recommendation: RecommendationFor(level),
	}
}

func computeFactors(tc schema.TestCase, recs []schema.ExecutionRecord, now time.Time) schema.RiskFactors {
	return schema.RiskFactors{
		HistoricalFailureRate: historicalFailureRate(recs),
		RecentChangesImpact:   recentChangesImpact(recs, now),
		Complexity:            complexity(tc),
		DependencyWeight:      dependencyWeight(tc.Type),
		LastFailureRecency:    lastFailureRecency(recs, now),
	}
}

func historicalFailureRate(recs []schema.ExecutionRecord) float64 {
	return 100 * float64(countFailures(recs)) / float64(max(1, len(recs)))
}

// lastFailureRecency scores how recently the test last failed.
func lastFailureRecency(recs []schema.ExecutionRecord, now time.Time) float64 {
	days := daysSinceLastFailure(recs, now)
	switch {
	case days < 7:
		return 100
	case days < 30:
		return 50
	default:
		return 0
	}
}

// daysSinceLastFailure returns whole days since the most recent failure, or noFailureDays.
func daysSinceLastFailure(recs []schema.ExecutionRecord, now time.Time) int {
	var last time.Time
	found := false
	for _, rec := range recs {
		if rec.IsFailure() && (!found || rec.ExecutionDate.After(last)) {
			last = rec.ExecutionDate
			found = true
		}
	}
	if !found {
		return noFailureDays
	}
	return int(math.Floor(now.Sub(last).Hours() / 24))
}

func complexity(tc schema.TestCase) float64 {
	base, ok := complexityBase[schema.NormalizeTestType(tc.Type)]
	if !ok {
		base = defaultComplexityBase
	}
	bonus := math.Min(maxDescriptionBonus, float64(utf8.RuneCountInString(tc.Description))/descriptionCharsPoint)
	return math.Round(base + bonus)
}

func dependencyWeight(t schema.TestType) float64 {
	if w, ok := dependencyWeights[schema.NormalizeTestType(t)]; ok {
		return w
	}
	return defaultDependencyWeight
}

// recentChangesImpact averages the number of touched files over recent runs that touched any.
func recentChangesImpact(recs []schema.ExecutionRecord, now time.Time) float64 {
	cutoff := now.Add(-recentChangesWindow)
	total, runs := 0, 0
	for _, rec := range recs {
		if len(rec.CodeChangesTouched) == 0 || rec.ExecutionDate.Before(cutoff) {
			continue
		}
		total += len(rec.CodeChangesTouched)
		runs++
	}
	if runs == 0 {
		return 0
	}
	return math.Min(100, float64(total)/float64(runs)*changeImpactPerFile)
}

// RiskLevelFor maps a score to its risk level.
func RiskLevelFor(score int) schema.RiskLevel {
	switch {
	case score >= CriticalThreshold:
		return schema.CriticalRisk
	case score >= HighThreshold:
		return schema.HighRisk
	case score >= MediumThreshold:
		return schema.MediumRisk
	default:
		return schema.LowRisk
	}
}

// RecommendationFor returns the run policy advised for a risk level.
func RecommendationFor(level schema.RiskLevel) string {
	if r, ok := recommendations[level]; ok {
		return r
	}
	return recommendations[schema.LowRisk]
}

func countFailures(recs []schema.ExecutionRecord) int {
	n := 0
	for _, rec := range recs {
		if rec.IsFailure() {
			n++
		}
	}
	return n
}
