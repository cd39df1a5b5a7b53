package core

import (
	"math"

	"github.com/huangsam/testpulse/internal/contract"
	"github.com/huangsam/testpulse/schema"
)

// Prediction model constants.
const (
	recentWindowSize     = 10
	failRateThreshold    = 0.30 // exclusive
	maxFactorsBeforeFail = 2    // more than this predicts failure
)

// PredictTestFailures forecasts the next run of each test case, in input order.
func (e *Engine) PredictTestFailures(testCases []schema.TestCase, hist contract.HistoryReader) []schema.TestPrediction {
	now := e.now()
	predictions := make([]schema.TestPrediction, 0, len(testCases))
	for _, tc := range testCases {
		predictions = append(predictions, e.predict(RuleInput{
			TestCase: tc,
			Recent:   recentWindow(hist.History(tc.ID)),
			Now:      now,
		}))
	}
	return predictions
}

func (e *Engine) predict(in RuleInput) schema.TestPrediction {
	pred := schema.TestPrediction{
		TestCaseID:       in.TestCase.ID,
		TestName:         in.TestCase.Name,
		PredictedOutcome: schema.PassOutcome,
		RiskFactors:      []string{},
		SimilarFailures:  []schema.SimilarFailure{},
	}
	for _, rule := range e.rules {
		if rule.Evaluate == nil {
			continue
		}
		findings := rule.Evaluate(in)
		pred.RiskFactors = append(pred.RiskFactors, findings.RiskFactors...)
		pred.SimilarFailures = append(pred.SimilarFailures, findings.SimilarFailures...)
	}

	rate := float64(countFailures(in.Recent)) / float64(max(1, len(in.Recent)))
	if rate > failRateThreshold || len(pred.RiskFactors) > maxFactorsBeforeFail {
		pred.PredictedOutcome = schema.FailOutcome
	}
	raw := 50*rate + 15*float64(len(pred.RiskFactors)) + 10*float64(len(pred.SimilarFailures))
	pred.Confidence = int(math.Round(clamp(raw, 0, 100)))
	return pred
}

// recentWindow returns the last recentWindowSize records.
func recentWindow(recs []schema.ExecutionRecord) []schema.ExecutionRecord {
	if len(recs) <= recentWindowSize {
		return recs
	}
	return recs[len(recs)-recentWindowSize:]
}
