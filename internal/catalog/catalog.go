// Package catalog loads test case metadata and parses JUnit reports into executions.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/testpulse/schema"
	"gopkg.in/yaml.v3"
)

// ErrEmptyCatalog is returned when a catalog defines no test cases.
var ErrEmptyCatalog = errors.New("catalog has no test cases")

// File is the on-disk layout of a test catalog.
type File struct {
	TestCases []schema.TestCase `yaml:"testCases"`
}

// Load reads and validates the catalog at path.
func Load(path string) ([]schema.TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	testCases, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return testCases, nil
}

// Parse decodes a YAML catalog, normalizes type and priority, and rejects
// empty or duplicate ids.
func Parse(r io.Reader) ([]schema.TestCase, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, err
	}
	if len(file.TestCases) == 0 {
		return nil, ErrEmptyCatalog
	}

	seen := make(map[string]int, len(file.TestCases))
	out := make([]schema.TestCase, 0, len(file.TestCases))
	for i, tc := range file.TestCases {
		tc.ID = strings.TrimSpace(tc.ID)
		if tc.ID == "" {
			return nil, fmt.Errorf("test case #%d has an empty id", i+1)
		}
		if prev, dup := seen[tc.ID]; dup {
			return nil, fmt.Errorf("duplicate test case id %q (entries #%d and #%d)", tc.ID, prev+1, i+1)
		}
		seen[tc.ID] = i

		tc.Name = strings.TrimSpace(tc.Name)
		if tc.Name == "" {
			tc.Name = tc.ID
		}
		tc.Type = schema.NormalizeTestType(tc.Type)
		tc.Priority = schema.NormalizePriority(tc.Priority)
		out = append(out, tc)
	}
	return out, nil
}

// Index maps test case ids and names to the owning test case id.
type Index struct {
	byKey map[string]string
}

// NewIndex builds a lookup over ids and names. Ids take precedence over names.
func NewIndex(testCases []schema.TestCase) *Index {
	idx := &Index{byKey: make(map[string]string, 2*len(testCases))}
	for _, tc := range testCases {
		if _, ok := idx.byKey[tc.Name]; !ok && tc.Name != "" {
			idx.byKey[tc.Name] = tc.ID
		}
	}
	for _, tc := range testCases {
		idx.byKey[tc.ID] = tc.ID
	}
	return idx
}

// Resolve returns the test case id for any of the candidate keys, in order.
func (idx *Index) Resolve(keys ...string) (string, bool) {
	for _, k := range keys {
		if id, ok := idx.byKey[k]; ok {
			return id, true
		}
	}
	return "", false
}
