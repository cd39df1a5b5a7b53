package core

import (
	"fmt"
	"time"

	"github.com/huangsam/testpulse/schema"
)

// RuleInput is what a prediction rule sees for one test case.
type RuleInput struct {
	TestCase schema.TestCase
	Recent   []schema.ExecutionRecord // recent window, oldest-first
	Now      time.Time
}

// Failures returns the failed records of the recent window.
func (in RuleInput) Failures() []schema.ExecutionRecord {
	var out []schema.ExecutionRecord
	for _, rec := range in.Recent {
		if rec.IsFailure() {
			out = append(out, rec)
		}
	}
	return out
}

// RuleFindings is what a rule contributes to a prediction.
type RuleFindings struct {
	RiskFactors     []string
	SimilarFailures []schema.SimilarFailure
}

// PredictionRule is a named, explainable heuristic. Rules are fixed and
// hand-written, not learned.
type PredictionRule struct {
	Name        string
	Description string
	Evaluate    func(in RuleInput) RuleFindings
}

// unknownErrorType buckets failures that carry no error type.
const unknownErrorType = "unknown"

// WeekdayClusterRule flags weekdays with more than two recent failures.
var WeekdayClusterRule = PredictionRule{
	Name:        "weekday-cluster",
	Description: "more than 2 recent failures on the same weekday",
	Evaluate: func(in RuleInput) RuleFindings {
		var counts [7]int
		for _, rec := range in.Failures() {
			counts[rec.ExecutionDate.Weekday()]++
		}
		var findings RuleFindings
		for day, n := range counts {
			if n > 2 {
				findings.RiskFactors = append(findings.RiskFactors, fmt.Sprintf("Fails frequently on %ss", time.Weekday(day)))
			}
		}
		return findings
	},
}

// RecurringErrorRule flags error types seen in more than one recent failure.
var RecurringErrorRule = PredictionRule{
	Name:        "recurring-error",
	Description: "the same error type in more than 1 recent failure",
	Evaluate: func(in RuleInput) RuleFindings {
		type group struct {
			count  int
			latest schema.ExecutionRecord
		}
		var order []string
		groups := make(map[string]*group)
		for _, rec := range in.Failures() {
			errType := rec.ErrorType
			if errType == "" {
				errType = unknownErrorType
			}
			g, ok := groups[errType]
			if !ok {
				g = &group{latest: rec}
				groups[errType] = g
				order = append(order, errType)
			}
			g.count++
			if !rec.ExecutionDate.Before(g.latest.ExecutionDate) {
				g.latest = rec
			}
		}

		var findings RuleFindings
		for _, errType := range order {
			g := groups[errType]
			if g.count <= 1 {
				continue
			}
			name := g.latest.TestName
			if name == "" {
				name = in.TestCase.Name
			}
			findings.RiskFactors = append(findings.RiskFactors, fmt.Sprintf("Recurring %s errors", errType))
			findings.SimilarFailures = append(findings.SimilarFailures, schema.SimilarFailure{
				TestName: name,
				Date:     g.latest.ExecutionDate,
				Pattern:  errType,
			})
		}
		return findings
	},
}

// MondayE2ERule flags end-to-end tests evaluated on a Monday.
// It depends only on the evaluation day, so it fires even when the test has no history.
var MondayE2ERule = PredictionRule{
	Name:        "monday-e2e",
	Description: "e2e tests evaluated on a Monday",
	Evaluate: func(in RuleInput) RuleFindings {
		if schema.NormalizeTestType(in.TestCase.Type) == schema.E2ETest && in.Now.Weekday() == time.Monday {
			return RuleFindings{RiskFactors: []string{"E2E tests have higher failure rate on Mondays"}}
		}
		return RuleFindings{}
	},
}

// DefaultRules returns the built-in rule set in evaluation order.
func DefaultRules() []PredictionRule {
	return []PredictionRule{WeekdayClusterRule, RecurringErrorRule, MondayE2ERule}
}
