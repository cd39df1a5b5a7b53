package core

import (
	"testing"
	"time"

	"github.com/huangsam/testpulse/internal/history"
	"github.com/huangsam/testpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tuesdays before the test clock.
var (
	tue1 = time.Date(2025, time.February, 18, 9, 0, 0, 0, time.UTC)
	tue2 = time.Date(2025, time.February, 25, 9, 0, 0, 0, time.UTC)
	tue3 = time.Date(2025, time.March, 4, 9, 0, 0, 0, time.UTC)
)

func failedWith(id string, n int, date time.Time, errType string) schema.ExecutionRecord {
	r := rec(id, n, schema.FailedResult, date)
	r.ErrorType = errType
	return r
}

func passes(id string, from, count int) []schema.ExecutionRecord {
	out := make([]schema.ExecutionRecord, 0, count)
	for i := range count {
		out = append(out, rec(id, from+i, schema.PassedResult, tue3.Add(time.Duration(i+1)*time.Hour)))
	}
	return out
}

func TestPredictTestFailures_EmptyHistory(t *testing.T) {
	tcs := []schema.TestCase{{ID: "u", Name: "Unit", Type: schema.UnitTest}}
	preds := newTestEngine(wednesday).PredictTestFailures(tcs, history.Snapshot{})
	require.Len(t, preds, 1)
	assert.Equal(t, schema.PassOutcome, preds[0].PredictedOutcome)
	assert.Equal(t, 0, preds[0].Confidence)
	assert.NotNil(t, preds[0].RiskFactors)
	assert.Empty(t, preds[0].RiskFactors)
	assert.NotNil(t, preds[0].SimilarFailures)
	assert.Empty(t, preds[0].SimilarFailures)
}

func TestPredictTestFailures_WeekdayCluster(t *testing.T) {
	recs := []schema.ExecutionRecord{
		failedWith("w", 1, tue1, "a"),
		failedWith("w", 2, tue2, "b"),
		failedWith("w", 3, tue3, "c"),
	}
	recs = append(recs, passes("w", 4, 7)...)
	tcs := []schema.TestCase{{ID: "w", Name: "Weekly", Type: schema.UnitTest}}

	pred := newTestEngine(wednesday).PredictTestFailures(tcs, snapshotOf(recs...))[0]
	assert.Equal(t, []string{"Fails frequently on Tuesdays"}, pred.RiskFactors)
	// rate 0.3 is not above the threshold and one factor is not enough
	assert.Equal(t, schema.PassOutcome, pred.PredictedOutcome)
	assert.Equal(t, 30, pred.Confidence)
}

func TestPredictTestFailures_RecurringErrors(t *testing.T) {
	sat := time.Date(2025, time.March, 8, 9, 0, 0, 0, time.UTC)
	recs := []schema.ExecutionRecord{
		failedWith("r", 1, tue2, "timeout"),
		failedWith("r", 2, sat, ""),
		failedWith("r", 3, tue3, "timeout"),
		failedWith("r", 4, sat.Add(time.Hour), ""),
		failedWith("r", 5, time.Date(2025, time.March, 6, 9, 0, 0, 0, time.UTC), "assertion"),
	}
	tcs := []schema.TestCase{{ID: "r", Name: "Flaky", Type: schema.UnitTest}}

	pred := newTestEngine(wednesday).PredictTestFailures(tcs, snapshotOf(recs...))[0]
	assert.Equal(t, []string{"Recurring timeout errors", "Recurring unknown errors"}, pred.RiskFactors)
	require.Len(t, pred.SimilarFailures, 2)
	assert.Equal(t, "timeout", pred.SimilarFailures[0].Pattern)
	assert.Equal(t, tue3, pred.SimilarFailures[0].Date)
	assert.Equal(t, "unknown", pred.SimilarFailures[1].Pattern)
	assert.Equal(t, sat.Add(time.Hour), pred.SimilarFailures[1].Date)
	assert.Equal(t, schema.FailOutcome, pred.PredictedOutcome)
	// 50*1.0 + 15*2 + 10*2 = 100
	assert.Equal(t, 100, pred.Confidence)
}

func TestPredictTestFailures_MondayE2E(t *testing.T) {
	tcs := []schema.TestCase{
		{ID: "e", Name: "Journey", Type: schema.E2ETest},
		{ID: "u", Name: "Unit", Type: schema.UnitTest},
	}
	preds := newTestEngine(monday).PredictTestFailures(tcs, history.Snapshot{})
	require.Len(t, preds, 2)
	assert.Equal(t, []string{"E2E tests have higher failure rate on Mondays"}, preds[0].RiskFactors)
	assert.Equal(t, 15, preds[0].Confidence)
	assert.Equal(t, schema.PassOutcome, preds[0].PredictedOutcome)
	assert.Empty(t, preds[1].RiskFactors)

	wed := newTestEngine(wednesday).PredictTestFailures(tcs[:1], history.Snapshot{})
	assert.Empty(t, wed[0].RiskFactors)
}

func TestPredictTestFailures_ManyFactorsPredictFailure(t *testing.T) {
	recs := []schema.ExecutionRecord{
		failedWith("e", 1, tue1, "timeout"),
		failedWith("e", 2, tue2, "timeout"),
		failedWith("e", 3, tue3, "timeout"),
	}
	recs = append(recs, passes("e", 4, 7)...)
	tcs := []schema.TestCase{{ID: "e", Name: "Journey", Type: schema.E2ETest}}

	pred := newTestEngine(monday).PredictTestFailures(tcs, snapshotOf(recs...))[0]
	assert.Len(t, pred.RiskFactors, 3)
	assert.Equal(t, schema.FailOutcome, pred.PredictedOutcome)
	// 50*0.3 + 15*3 + 10*1 = 70
	assert.Equal(t, 70, pred.Confidence)
}

func TestPredictTestFailures_OnlyRecentWindowCounts(t *testing.T) {
	var recs []schema.ExecutionRecord
	for i := range 5 {
		recs = append(recs, failedWith("old", i, tue1.Add(time.Duration(i)*time.Minute), "timeout"))
	}
	recs = append(recs, passes("old", 10, 10)...)
	tcs := []schema.TestCase{{ID: "old", Name: "Old", Type: schema.UnitTest}}

	pred := newTestEngine(wednesday).PredictTestFailures(tcs, snapshotOf(recs...))[0]
	assert.Equal(t, schema.PassOutcome, pred.PredictedOutcome)
	assert.Equal(t, 0, pred.Confidence)
	assert.Empty(t, pred.RiskFactors)
}

func TestPredictTestFailures_CustomRules(t *testing.T) {
	always := PredictionRule{
		Name: "always",
		Evaluate: func(in RuleInput) RuleFindings {
			return RuleFindings{RiskFactors: []string{"flagged " + in.TestCase.ID}}
		},
	}
	tcs := []schema.TestCase{{ID: "e", Name: "Journey", Type: schema.E2ETest}}

	custom := newTestEngine(monday, WithRules(always))
	pred := custom.PredictTestFailures(tcs, history.Snapshot{})[0]
	assert.Equal(t, []string{"flagged e"}, pred.RiskFactors)
	require.Len(t, custom.Rules(), 1)
	assert.Equal(t, "always", custom.Rules()[0].Name)

	none := newTestEngine(monday, WithRules())
	assert.Empty(t, none.PredictTestFailures(tcs, history.Snapshot{})[0].RiskFactors)
}

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
		assert.NotEmpty(t, r.Description)
	}
	assert.Equal(t, []string{"weekday-cluster", "recurring-error", "monday-e2e"}, names)
}
