package schema

import (
	"fmt"
	"strings"
)

// ParseResult converts user input into a Result. Matching is case-insensitive
// and accepts the common "pass"/"fail"/"skip" shorthands.
func ParseResult(s string) (Result, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "passed", "pass", "success":
		return PassedResult, nil
	case "failed", "fail", "failure", "error":
		return FailedResult, nil
	case "skipped", "skip":
		return SkippedResult, nil
	default:
		return "", fmt.Errorf("invalid result '%s'. must be passed, failed, skipped", s)
	}
}

// NormalizeTestType lower-cases and trims a test type. Unknown types are kept as-is.
func NormalizeTestType(t TestType) TestType {
	return TestType(strings.ToLower(strings.TrimSpace(string(t))))
}

// NormalizePriority lower-cases and trims a declared priority.
func NormalizePriority(p Priority) Priority {
	return Priority(strings.ToLower(strings.TrimSpace(string(p))))
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
