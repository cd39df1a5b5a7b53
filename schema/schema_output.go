package schema

import "time"

// RiskFactors is the per-factor breakdown of a risk score. Each factor is in [0, 100].
type RiskFactors struct {
	HistoricalFailureRate float64 `json:"historical_failure_rate"`
	RecentChangesImpact   float64 `json:"recent_changes_impact"`
	Complexity            float64 `json:"complexity"`
	DependencyWeight      float64 `json:"dependency_weight"`
	LastFailureRecency    float64 `json:"last_failure_recency"`
}

// AsMap returns the factors keyed by breakdown key.
func (f RiskFactors) AsMap() map[BreakdownKey]float64 {
	return map[BreakdownKey]float64{
		BreakdownFailureRate: f.HistoricalFailureRate,
		BreakdownRecency:     f.LastFailureRecency,
		BreakdownComplexity:  f.Complexity,
		BreakdownDependency:  f.DependencyWeight,
		BreakdownChanges:     f.RecentChangesImpact,
	}
}

// RiskScore is the derived risk assessment of one test case.
type RiskScore struct {
	TestCaseID     string      `json:"test_case_id"`
	TestName       string      `json:"test_name"`
	RiskLevel      RiskLevel   `json:"risk_level"`
	Score          int         `json:"score"`
	Factors        RiskFactors `json:"factors"`
	Recommendation string      `json:"recommendation"`
}

// ImpactedTest is a test case selected by a set of code changes.
type ImpactedTest struct {
	TestCaseID string `json:"test_case_id"`
	TestName   string `json:"test_name"`
	Confidence int    `json:"confidence"`
	Reason     string `json:"reason"`
}

// CodeChangeImpact maps a set of changed files to the tests they likely affect.
type CodeChangeImpact struct {
	FilesChanged       []string       `json:"files_changed"`
	AffectedComponents []string       `json:"affected_components"`
	ImpactedTests      []ImpactedTest `json:"impacted_tests"`
	RiskLevel          RiskLevel      `json:"risk_level"`
}

// SimilarFailure points at a past failure that shares a recurring pattern.
type SimilarFailure struct {
	TestName string    `json:"test_name"`
	Date     time.Time `json:"date"`
	Pattern  string    `json:"pattern"`
}

// TestPrediction is the forecast of a test case's next run.
type TestPrediction struct {
	TestCaseID       string           `json:"test_case_id"`
	TestName         string           `json:"test_name"`
	PredictedOutcome Outcome          `json:"predicted_outcome"`
	Confidence       int              `json:"confidence"`
	RiskFactors      []string         `json:"risk_factors"`
	SimilarFailures  []SimilarFailure `json:"similar_failures"`
}

// OrderedTest is one entry of an optimal execution order.
type OrderedTest struct {
	TestCaseID         string `json:"test_case_id"`
	TestName           string `json:"test_name"`
	Priority           int    `json:"priority"`
	EstimatedDuration  int64  `json:"estimated_duration_ms"`
	FailureProbability int    `json:"failure_probability"` // Percent, 0-100
	Reason             string `json:"reason"`
}

// OptimalOrder is a run sequence with its timing projections.
type OptimalOrder struct {
	OrderedTests                 []OrderedTest `json:"ordered_tests"`
	EstimatedTotalTime           int64         `json:"estimated_total_time_ms"`
	ExpectedFailureDetectionTime int64         `json:"expected_failure_detection_time_ms"`
}

// EnrichedRiskScore adds presentation data to a RiskScore.
type EnrichedRiskScore struct {
	Rank int `json:"rank"`
	RiskScore
}

// EnrichRiskScores adds rank to a list of risk scores.
func EnrichRiskScores(scores []RiskScore) []EnrichedRiskScore {
	output := make([]EnrichedRiskScore, len(scores))
	for i, s := range scores {
		output[i] = EnrichedRiskScore{
			Rank:      i + 1,
			RiskScore: s,
		}
	}
	return output
}
