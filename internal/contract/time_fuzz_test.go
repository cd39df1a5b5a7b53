package contract

import (
	"testing"
	"time"
)

// FuzzParseTimeInput checks that arbitrary time input never panics.
func FuzzParseTimeInput(f *testing.F) {
	seeds := []string{
		"1 year ago",
		"2 months ago",
		"3 weeks ago",
		"6 minutes ago",
		"0 days ago",
		"2025-01-15",
		"2025-01-15T08:30:00Z",
		"99999999999999999999 days ago",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(_ *testing.T, input string) {
		_, _ = ParseTimeInput(input, time.Now())
	})
}
