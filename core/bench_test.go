package core

import (
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/testpulse/internal/history"
	"github.com/huangsam/testpulse/schema"
)

func benchmarkFixture(tests int) ([]schema.TestCase, history.Snapshot) {
	types := []schema.TestType{schema.UnitTest, schema.IntegrationTest, schema.E2ETest, schema.PerformanceTest, schema.SecurityTest}
	tcs := make([]schema.TestCase, tests)
	var recs []schema.ExecutionRecord
	for i := range tests {
		id := fmt.Sprintf("tc-%d", i)
		tcs[i] = schema.TestCase{ID: id, Name: fmt.Sprintf("Service %d API", i), Type: types[i%len(types)]}
		for j := range history.MaxRecordsPerTest {
			result := schema.PassedResult
			if (i+j)%7 == 0 {
				result = schema.FailedResult
			}
			r := rec(id, j, result, wednesday.Add(-time.Duration(j)*6*time.Hour))
			r.ErrorType = []string{"timeout", "assertion", ""}[j%3]
			r.CodeChangesTouched = []string{"src/api/handler.go"}
			recs = append(recs, r)
		}
	}
	return tcs, history.FromRecords(recs)
}

func BenchmarkCalculateRiskScores(b *testing.B) {
	tcs, snap := benchmarkFixture(200)
	engine := newTestEngine(wednesday)
	for b.Loop() {
		engine.CalculateRiskScores(tcs, snap)
	}
}

func BenchmarkPredictTestFailures(b *testing.B) {
	tcs, snap := benchmarkFixture(200)
	engine := newTestEngine(monday)
	for b.Loop() {
		engine.PredictTestFailures(tcs, snap)
	}
}

func BenchmarkOptimizeTestExecutionOrder(b *testing.B) {
	tcs, snap := benchmarkFixture(200)
	engine := newTestEngine(wednesday)
	for b.Loop() {
		engine.OptimizeTestExecutionOrder(tcs, snap, nil)
	}
}

func BenchmarkSelectTestsForCodeChanges(b *testing.B) {
	tcs, _ := benchmarkFixture(200)
	engine := newTestEngine(wednesday)
	files := []string{"src/api/users.go", "src/services/auth.service.ts", "web/components/Nav.tsx"}
	for b.Loop() {
		engine.SelectTestsForCodeChanges(tcs, files)
	}
}
