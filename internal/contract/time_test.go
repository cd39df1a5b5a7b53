package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.November, 3, 10, 0, 0, 0, time.UTC)

func TestParseRelativeTime(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{name: "plural months mixed case", input: "3 MoNtHs AgO", expected: fixedNow.AddDate(0, -3, 0)},
		{name: "singular week", input: "1 Week Ago", expected: fixedNow.Add(-7 * 24 * time.Hour)},
		{name: "days upper case", input: "10 DAYS AGO", expected: fixedNow.Add(-10 * 24 * time.Hour)},
		{name: "hours", input: "5 hours ago", expected: fixedNow.Add(-5 * time.Hour)},
		{name: "minutes with padding", input: "  30 minutes ago ", expected: fixedNow.Add(-30 * time.Minute)},
		{name: "years", input: "2 years ago", expected: fixedNow.AddDate(-2, 0, 0)},
		{name: "missing ago", input: "2 years", expectError: true},
		{name: "unsupported unit", input: "4 decades ago", expectError: true},
		{name: "negative value", input: "-1 days ago", expectError: true},
		{name: "empty", input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelativeTime(tt.input, fixedNow)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "expected %v, got %v", tt.expected, got)
		})
	}
}

func TestParseTimeInput(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{name: "rfc3339", input: "2025-01-15T08:30:00Z", expected: time.Date(2025, time.January, 15, 8, 30, 0, 0, time.UTC)},
		{name: "rfc3339 with offset", input: "2025-01-15T08:30:00+02:00", expected: time.Date(2025, time.January, 15, 6, 30, 0, 0, time.UTC)},
		{name: "date only", input: "2025-01-15", expected: time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)},
		{name: "relative", input: "2 days ago", expected: fixedNow.Add(-48 * time.Hour)},
		{name: "garbage", input: "next tuesday", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeInput(tt.input, fixedNow)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "Expected absolute ISO8601")
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "expected %v, got %v", tt.expected, got)
		})
	}
}
