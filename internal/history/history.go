// Package history keeps bounded per-test execution histories in memory.
package history

import (
	"slices"

	"github.com/huangsam/testpulse/schema"
)

// MaxRecordsPerTest is the number of executions retained per test case.
// Older records are evicted first once the limit is reached.
const MaxRecordsPerTest = 100

// Snapshot is an immutable view of execution history keyed by test case ID.
// It is what the scoring engine reads from.
type Snapshot map[string][]schema.ExecutionRecord

// History returns the records of a test case, oldest-first.
func (s Snapshot) History(testCaseID string) []schema.ExecutionRecord {
	return s[testCaseID]
}

// FromRecords groups records by test case while keeping their relative order.
// Each group is trimmed to MaxRecordsPerTest, keeping the newest.
func FromRecords(records []schema.ExecutionRecord) Snapshot {
	snap := make(Snapshot)
	for _, rec := range records {
		snap[rec.TestCaseID] = append(snap[rec.TestCaseID], rec)
	}
	for id, recs := range snap {
		snap[id] = trim(recs)
	}
	return snap
}

// Flatten returns every record in the snapshot, grouped by test case in ID order.
func (s Snapshot) Flatten() []schema.ExecutionRecord {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var out []schema.ExecutionRecord
	for _, id := range ids {
		out = append(out, s[id]...)
	}
	return out
}

// appendBounded returns a new slice holding recs plus rec, never sharing
// backing storage with recs, trimmed to MaxRecordsPerTest.
func appendBounded(recs []schema.ExecutionRecord, rec schema.ExecutionRecord) []schema.ExecutionRecord {
	start := 0
	if len(recs) >= MaxRecordsPerTest {
		start = len(recs) - MaxRecordsPerTest + 1
	}
	kept := len(recs) - start
	next := make([]schema.ExecutionRecord, kept, kept+1)
	copy(next, recs[start:])
	return append(next, rec)
}

func trim(recs []schema.ExecutionRecord) []schema.ExecutionRecord {
	if len(recs) <= MaxRecordsPerTest {
		return recs
	}
	return recs[len(recs)-MaxRecordsPerTest:]
}
