package core

import (
	"fmt"
	"time"

	"github.com/huangsam/testpulse/internal/history"
	"github.com/huangsam/testpulse/schema"
)

var (
	// wednesday is the default evaluation instant in tests.
	wednesday = time.Date(2025, time.March, 12, 12, 0, 0, 0, time.UTC)
	// monday triggers the Monday e2e rule.
	monday = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestEngine(now time.Time, opts ...Option) *Engine {
	return NewEngine(append([]Option{WithClock(fixedClock(now))}, opts...)...)
}

func daysAgo(now time.Time, days float64) time.Time {
	return now.Add(-time.Duration(days * float64(24*time.Hour)))
}

func rec(id string, n int, result schema.Result, date time.Time) schema.ExecutionRecord {
	return schema.ExecutionRecord{
		ID:            fmt.Sprintf("%s-%d", id, n),
		TestCaseID:    id,
		TestName:      id,
		ExecutionDate: date,
		Result:        result,
		Duration:      1000,
	}
}

func snapshotOf(recs ...schema.ExecutionRecord) history.Snapshot {
	return history.FromRecords(recs)
}
