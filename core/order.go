package core

import (
	"math"
	"slices"
	"strings"

	"github.com/huangsam/testpulse/internal/contract"
	"github.com/huangsam/testpulse/schema"
)

// Ordering model constants.
const (
	defaultAvgDuration     = 3000.0  // ms, used when a test has no history
	durationScale          = 10000.0 // ms at which the duration term reaches zero
	fastExecutionThreshold = 2000.0  // ms
	detectionThreshold     = 50      // failure probability percent, exclusive
)

// orderCandidate carries everything the ordering needs about one test case.
type orderCandidate struct {
	testCase    schema.TestCase
	failureProb float64 // [0, 1]
	avgDuration float64 // ms
	riskScore   int
	riskLevel   schema.RiskLevel
}

// OptimizeTestExecutionOrder orders test cases so likely failures and cheap tests run first.
// When ids is non-empty only those test cases are ordered; unknown ids are ignored.
func (e *Engine) OptimizeTestExecutionOrder(testCases []schema.TestCase, hist contract.HistoryReader, ids []string) schema.OptimalOrder {
	now := e.now()
	candidates := make([]orderCandidate, 0, len(testCases))
	for _, tc := range testCases {
		if len(ids) > 0 && !slices.Contains(ids, tc.ID) {
			continue
		}
		recs := hist.History(tc.ID)
		score := e.scoreTestCase(tc, recs, now)
		pred := e.predict(RuleInput{TestCase: tc, Recent: recentWindow(recs), Now: now})

		fp := float64(score.Score) / 100
		if pred.PredictedOutcome == schema.FailOutcome {
			fp = float64(pred.Confidence) / 100
		}
		candidates = append(candidates, orderCandidate{
			testCase:    tc,
			failureProb: fp,
			avgDuration: averageDuration(recs),
			riskScore:   score.Score,
			riskLevel:   score.RiskLevel,
		})
	}
	return buildOrder(candidates)
}

// buildOrder ranks candidates by priority and projects run timings.
func buildOrder(candidates []orderCandidate) schema.OptimalOrder {
	ordered := make([]schema.OrderedTest, len(candidates))
	for i, c := range candidates {
		ordered[i] = schema.OrderedTest{
			TestCaseID:         c.testCase.ID,
			TestName:           c.testCase.Name,
			Priority:           priority(c),
			EstimatedDuration:  int64(math.Round(c.avgDuration)),
			FailureProbability: int(math.Round(c.failureProb * 100)),
			Reason:             orderReason(c),
		}
	}
	slices.SortStableFunc(ordered, func(a, b schema.OrderedTest) int {
		return b.Priority - a.Priority
	})

	result := schema.OptimalOrder{OrderedTests: ordered}
	detected := false
	for _, t := range ordered {
		result.EstimatedTotalTime += t.EstimatedDuration
		if !detected && t.FailureProbability > detectionThreshold {
			result.ExpectedFailureDetectionTime = result.EstimatedTotalTime
			detected = true
		}
	}
	return result
}

// priority favors likely failures and fast tests. The duration term is not
// clamped, so very slow tests can go negative.
func priority(c orderCandidate) int {
	p := 40*c.failureProb +
		30*(1-c.avgDuration/durationScale) +
		20*float64(c.riskScore)/100
	if schema.NormalizePriority(c.testCase.Priority) == schema.HighPriority {
		p += 10
	}
	return int(math.Round(p))
}

func orderReason(c orderCandidate) string {
	var reasons []string
	if c.failureProb*100 > detectionThreshold {
		reasons = append(reasons, "High failure probability")
	}
	if c.avgDuration < fastExecutionThreshold {
		reasons = append(reasons, "Fast execution")
	}
	if c.riskLevel == schema.CriticalRisk {
		reasons = append(reasons, "Critical risk")
	}
	if schema.NormalizePriority(c.testCase.Priority) == schema.HighPriority {
		reasons = append(reasons, "High priority test")
	}
	if len(reasons) == 0 {
		return "Standard priority"
	}
	return strings.Join(reasons, ", ")
}

func averageDuration(recs []schema.ExecutionRecord) float64 {
	if len(recs) == 0 {
		return defaultAvgDuration
	}
	var total int64
	for _, rec := range recs {
		total += rec.Duration
	}
	return float64(total) / float64(len(recs))
}
