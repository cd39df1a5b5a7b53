package history

import (
	"slices"

	"github.com/huangsam/testpulse/internal/contract"
	"github.com/huangsam/testpulse/schema"
	"github.com/puzpuzpuz/xsync/v3"
)

// MemoryStore is a process-local HistoryStore. Appends to the same test case are
// serialized by the map's per-key compute, and readers always see a fully
// published slice because every append allocates a fresh one.
type MemoryStore struct {
	records *xsync.MapOf[string, []schema.ExecutionRecord]
}

var (
	_ contract.HistoryStore  = &MemoryStore{} // Compile-time check
	_ contract.HistoryReader = &MemoryStore{} // Compile-time check
)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: xsync.NewMapOf[string, []schema.ExecutionRecord]()}
}

// Record appends rec to its test case's history, evicting the oldest record
// when the history is full.
func (s *MemoryStore) Record(rec schema.ExecutionRecord) error {
	s.records.Compute(rec.TestCaseID, func(old []schema.ExecutionRecord, _ bool) ([]schema.ExecutionRecord, bool) {
		return appendBounded(old, rec), false
	})
	return nil
}

// History returns the retained records of a test case, oldest-first.
func (s *MemoryStore) History(testCaseID string) []schema.ExecutionRecord {
	recs, _ := s.records.Load(testCaseID)
	return recs
}

// Load implements contract.HistoryStore.
func (s *MemoryStore) Load(testCaseID string) ([]schema.ExecutionRecord, error) {
	return slices.Clone(s.History(testCaseID)), nil
}

// LoadAll implements contract.HistoryStore.
func (s *MemoryStore) LoadAll() ([]schema.ExecutionRecord, error) {
	return s.Snapshot().Flatten(), nil
}

// Snapshot captures the current history of every test case.
func (s *MemoryStore) Snapshot() Snapshot {
	snap := make(Snapshot, s.records.Size())
	s.records.Range(func(id string, recs []schema.ExecutionRecord) bool {
		snap[id] = recs
		return true
	})
	return snap
}

// GetStatus implements contract.HistoryStore.
func (s *MemoryStore) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:   string(schema.MemoryBackend),
		Connected: true,
	}
	s.records.Range(func(_ string, recs []schema.ExecutionRecord) bool {
		status.TotalTestCases++
		for _, rec := range recs {
			status.TotalRecords++
			if rec.IsFailure() {
				status.FailedRecords++
			}
			if rec.ExecutionDate.After(status.LastExecutionTime) {
				status.LastExecutionTime = rec.ExecutionDate
			}
			if status.OldestExecutionTime.IsZero() || rec.ExecutionDate.Before(status.OldestExecutionTime) {
				status.OldestExecutionTime = rec.ExecutionDate
			}
		}
		return true
	})
	return status, nil
}

// Clear drops every record.
func (s *MemoryStore) Clear() {
	s.records.Clear()
}

// Close implements contract.HistoryStore.
func (s *MemoryStore) Close() error {
	return nil
}
