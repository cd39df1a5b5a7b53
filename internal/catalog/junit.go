package catalog

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/testpulse/schema"
	"github.com/jstemmer/go-junit-report/v2/junit"
)

// junitTimestampLayouts are tried in order; many reporters omit the zone.
var junitTimestampLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

// ParseJUnitFile reads a JUnit XML report from disk.
func ParseJUnitFile(path string) (*junit.Testsuites, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	suites, err := ParseJUnit(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JUnit XML %s: %w", path, err)
	}
	return suites, nil
}

// ParseJUnit accepts either a <testsuites> document or a single <testsuite>.
func ParseJUnit(data []byte) (*junit.Testsuites, error) {
	var suites junit.Testsuites
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&suites); err == nil {
		return &suites, nil
	}
	var suite junit.Testsuite
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&suite); err != nil {
		return nil, err
	}
	suites.Suites = []junit.Testsuite{suite}
	return &suites, nil
}

// ExecutionsFromJUnit converts every testcase of a report into an execution input.
// Test cases are matched to the catalog by id, qualified name or plain name; unmatched
// cases use their qualified name as id. The date falls back to the suite timestamp.
func ExecutionsFromJUnit(suites *junit.Testsuites, idx *Index) []schema.ExecutionInput {
	var out []schema.ExecutionInput
	for _, suite := range suites.Suites {
		suiteTime := parseJUnitTimestamp(suite.Timestamp)
		for _, tc := range suite.Testcases {
			qualified := tc.Name
			if tc.Classname != "" {
				qualified = tc.Classname + "." + tc.Name
			}
			id := qualified
			if idx != nil {
				if resolved, ok := idx.Resolve(qualified, tc.Name); ok {
					id = resolved
				}
			}
			result, errType := junitOutcome(tc)
			out = append(out, schema.ExecutionInput{
				TestCaseID:    id,
				TestName:      tc.Name,
				Result:        result,
				Duration:      secondsToMillis(tc.Time),
				ErrorType:     errType,
				ExecutionDate: suiteTime,
			})
		}
	}
	return out
}

func junitOutcome(tc junit.Testcase) (schema.Result, string) {
	switch {
	case tc.Skipped != nil:
		return schema.SkippedResult, ""
	case tc.Failure != nil:
		return schema.FailedResult, errorTypeOf(tc.Failure, "failure")
	case tc.Error != nil:
		return schema.FailedResult, errorTypeOf(tc.Error, "error")
	default:
		return schema.PassedResult, ""
	}
}

func errorTypeOf(r *junit.Result, fallback string) string {
	if t := strings.TrimSpace(r.Type); t != "" {
		return t
	}
	return fallback
}

func secondsToMillis(s string) int64 {
	secs, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0
	}
	return int64(math.Round(secs * 1000))
}

func parseJUnitTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range junitTimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
