package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/testpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
testCases:
  - id: tc-auth-login
    name: User Authentication Test
    description: Logs a user in through the auth service
    type: Integration
    priority: HIGH
  - id: tc-cart
    type: unit
    priority: low
  - id: tc-smoke
    name: Smoke
    type: smoke
`

func TestParse(t *testing.T) {
	tcs, err := Parse(strings.NewReader(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, tcs, 3)

	assert.Equal(t, schema.TestCase{
		ID:          "tc-auth-login",
		Name:        "User Authentication Test",
		Description: "Logs a user in through the auth service",
		Type:        schema.IntegrationTest,
		Priority:    schema.HighPriority,
	}, tcs[0])
	assert.Equal(t, "tc-cart", tcs[1].Name, "missing names fall back to the id")
	assert.Equal(t, schema.TestType("smoke"), tcs[2].Type, "unknown types are kept")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError string
	}{
		{"empty document", "", "no test cases"},
		{"empty list", "testCases: []\n", "no test cases"},
		{"empty id", "testCases:\n  - name: nameless\n", "empty id"},
		{"duplicate id", "testCases:\n  - id: a\n  - id: a\n", `duplicate test case id "a"`},
		{"unknown field", "testCases:\n  - id: a\n    owner: me\n", "owner"},
		{"malformed yaml", "testCases: [", "yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "testcases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o644))

	tcs, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, tcs, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read catalog")
}

func TestIndex_Resolve(t *testing.T) {
	idx := NewIndex([]schema.TestCase{
		{ID: "tc-1", Name: "Login"},
		{ID: "Login", Name: "Something else"},
		{ID: "tc-3", Name: "Checkout"},
	})

	id, ok := idx.Resolve("Login")
	assert.True(t, ok)
	assert.Equal(t, "Login", id, "ids win over names")

	id, ok = idx.Resolve("pkg.Checkout", "Checkout")
	assert.True(t, ok)
	assert.Equal(t, "tc-3", id)

	_, ok = idx.Resolve("nope")
	assert.False(t, ok)
}
