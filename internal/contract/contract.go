// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/testpulse/schema"
)

// GitClient defines the Git operations needed to derive change sets.
// This allows impact selection to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command and returns the combined output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetChangedFilesBetweenRefs returns the paths changed between two references.
	GetChangedFilesBetweenRefs(ctx context.Context, repoPath string, baseRef string, targetRef string) ([]string, error)
}

// HistoryReader provides snapshot reads of per-test-case execution history.
// Returned slices are oldest-first and must not be mutated by callers.
type HistoryReader interface {
	History(testCaseID string) []schema.ExecutionRecord
}

// HistoryStore is the persistence boundary for execution records.
// Record must keep at most the most recent records per test case, evicting oldest first.
type HistoryStore interface {
	// Record appends one execution to its test case's history.
	Record(rec schema.ExecutionRecord) error

	// Load returns the retained history of a test case, oldest-first.
	Load(testCaseID string) ([]schema.ExecutionRecord, error)

	// LoadAll returns every retained record, grouped by test case and oldest-first within a group.
	LoadAll() ([]schema.ExecutionRecord, error)

	// GetStatus returns status information about the store.
	GetStatus() (schema.HistoryStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// StoreManager defines the interface for managing the history store.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetHistoryStore() HistoryStore
}
