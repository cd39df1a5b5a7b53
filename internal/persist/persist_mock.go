package persist

import (
	"github.com/huangsam/testpulse/internal/contract"
	"github.com/huangsam/testpulse/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetHistoryStore implements the StoreManager interface.
func (m *MockStoreManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// Record implements the HistoryStore interface.
func (m *MockHistoryStore) Record(rec schema.ExecutionRecord) error {
	args := m.Called(rec)
	return args.Error(0)
}

// Load implements the HistoryStore interface.
func (m *MockHistoryStore) Load(testCaseID string) ([]schema.ExecutionRecord, error) {
	args := m.Called(testCaseID)
	records, _ := args.Get(0).([]schema.ExecutionRecord)
	return records, args.Error(1)
}

// LoadAll implements the HistoryStore interface.
func (m *MockHistoryStore) LoadAll() ([]schema.ExecutionRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.ExecutionRecord)
	return records, args.Error(1)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
