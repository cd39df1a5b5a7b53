package core

import (
	"fmt"
	"testing"

	"github.com/huangsam/testpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectTestsForCodeChanges_AuthServiceChange(t *testing.T) {
	tcs := []schema.TestCase{
		{ID: "tc-auth", Name: "User Authentication Test", Type: schema.IntegrationTest},
		{ID: "tc-cart", Name: "Cart totals", Type: schema.UnitTest},
	}
	impact := newTestEngine(wednesday).SelectTestsForCodeChanges(tcs, []string{"server/services/auth.service.ts"})

	assert.Contains(t, impact.AffectedComponents, ComponentAuthentication)
	assert.Contains(t, impact.AffectedComponents, ComponentBusinessLogic)
	require.Len(t, impact.ImpactedTests, 1)
	got := impact.ImpactedTests[0]
	assert.Equal(t, "tc-auth", got.TestCaseID)
	assert.GreaterOrEqual(t, got.Confidence, 90)
	assert.Equal(t, 100, got.Confidence)
	assert.Contains(t, got.Reason, "Direct file match")
	assert.Contains(t, got.Reason, "Tests Authentication")
}

func TestSelectTestsForCodeChanges_EmptyChanges(t *testing.T) {
	tcs := []schema.TestCase{{ID: "a", Name: "Anything", Type: schema.E2ETest}}
	for _, files := range [][]string{nil, {}} {
		impact := newTestEngine(wednesday).SelectTestsForCodeChanges(tcs, files)
		assert.NotNil(t, impact.FilesChanged)
		assert.NotNil(t, impact.AffectedComponents)
		assert.NotNil(t, impact.ImpactedTests)
		assert.Empty(t, impact.AffectedComponents)
		assert.Empty(t, impact.ImpactedTests)
		assert.Equal(t, schema.LowRisk, impact.RiskLevel)
	}
}

func TestAffectedComponents(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		expected []string
	}{
		{"dedup data layer", []string{"src/db/model.go", "src/api/routes.ts"}, []string{ComponentDataLayer, ComponentAPILayer, ComponentRouting}},
		{"case insensitive", []string{"web/Components/NavBar.tsx"}, []string{ComponentUI}},
		{"nothing matches", []string{"README.md"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, affectedComponents(tt.files))
		})
	}
}

func TestSelectTestsForCodeChanges_TypeHeuristics(t *testing.T) {
	engine := newTestEngine(wednesday)

	t.Run("integration test on API change", func(t *testing.T) {
		tcs := []schema.TestCase{{ID: "i", Name: "Orders flow", Type: schema.IntegrationTest}}
		impact := engine.SelectTestsForCodeChanges(tcs, []string{"api/users.go"})
		require.Len(t, impact.ImpactedTests, 1)
		assert.Equal(t, 40, impact.ImpactedTests[0].Confidence)
		assert.Equal(t, "Integration test for API changes", impact.ImpactedTests[0].Reason)
	})

	t.Run("e2e bonus alone stays at the threshold", func(t *testing.T) {
		tcs := []schema.TestCase{{ID: "e", Name: "Checkout journey", Type: schema.E2ETest}}
		impact := engine.SelectTestsForCodeChanges(tcs, []string{"src/components/Button.tsx"})
		assert.Empty(t, impact.ImpactedTests)
	})

	t.Run("e2e bonus with component text", func(t *testing.T) {
		tcs := []schema.TestCase{{ID: "e", Name: "Checkout journey", Description: "Clicks through UI components", Type: schema.E2ETest}}
		impact := engine.SelectTestsForCodeChanges(tcs, []string{"src/components/Button.tsx"})
		require.Len(t, impact.ImpactedTests, 1)
		assert.Equal(t, 90, impact.ImpactedTests[0].Confidence)
	})
}

func TestDirectFileMatch(t *testing.T) {
	tests := []struct {
		name     string
		testName string
		files    []string
		expected bool
	}{
		{"file stem inside test name", "User Authentication Test", []string{"auth.service.ts"}, true},
		{"test name inside file stem", "Auth", []string{"server/authentication.go"}, true},
		{"windows separators", "Payment Gateway", []string{`src\payment\gateway.cs`}, true},
		{"dotfile has empty stem", "Env loader", []string{".env"}, false},
		{"symbol-only test name", "!!!", []string{"x.go"}, false},
		{"unrelated", "Cart totals", []string{"server/users.go"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, directFileMatch(tt.testName, tt.files))
		})
	}
}

func TestSelectTestsForCodeChanges_RiskLevels(t *testing.T) {
	build := func(n int) []schema.TestCase {
		tcs := make([]schema.TestCase, n)
		for i := range n {
			tcs[i] = schema.TestCase{ID: fmt.Sprintf("c%d", i), Name: fmt.Sprintf("Checkout %d", i), Type: schema.UnitTest}
		}
		return tcs
	}
	tests := []struct {
		count    int
		expected schema.RiskLevel
	}{
		{6, schema.HighRisk},
		{5, schema.MediumRisk},
		{4, schema.MediumRisk},
		{3, schema.LowRisk},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d direct matches", tt.count), func(t *testing.T) {
			impact := newTestEngine(wednesday).SelectTestsForCodeChanges(build(tt.count), []string{"src/checkout.go"})
			assert.Len(t, impact.ImpactedTests, tt.count)
			assert.Equal(t, tt.expected, impact.RiskLevel)
		})
	}
}

func TestSelectTestsForCodeChanges_SortedByConfidence(t *testing.T) {
	tcs := []schema.TestCase{
		{ID: "api-int", Name: "Inventory sync", Type: schema.IntegrationTest},
		{ID: "users", Name: "Users API", Type: schema.UnitTest},
		{ID: "users-int", Name: "Users API contract", Type: schema.IntegrationTest},
	}
	impact := newTestEngine(wednesday).SelectTestsForCodeChanges(tcs, []string{"server/api/users.ts"})
	require.Len(t, impact.ImpactedTests, 3)
	for i := 1; i < len(impact.ImpactedTests); i++ {
		assert.GreaterOrEqual(t, impact.ImpactedTests[i-1].Confidence, impact.ImpactedTests[i].Confidence)
	}
	assert.Equal(t, "users-int", impact.ImpactedTests[0].TestCaseID)
	assert.Equal(t, "api-int", impact.ImpactedTests[2].TestCaseID)
}

func TestSelectTestsForCodeChanges_ComponentMatchPerField(t *testing.T) {
	files := []string{"server/api/handlers.go"}
	tests := []struct {
		name     string
		tc       schema.TestCase
		impacted bool
	}{
		{
			name: "split across name and description",
			tc:   schema.TestCase{ID: "tc-pay", Name: "Payments API", Description: "Layer of caching checks", Type: schema.UnitTest},
		},
		{
			name:     "in description",
			tc:       schema.TestCase{ID: "tc-gw", Name: "Gateway", Description: "Covers the API layer contract", Type: schema.UnitTest},
			impacted: true,
		},
		{
			name:     "in name",
			tc:       schema.TestCase{ID: "tc-api", Name: "API Layer smoke", Type: schema.UnitTest},
			impacted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			impact := newTestEngine(wednesday).SelectTestsForCodeChanges([]schema.TestCase{tt.tc}, files)
			require.Contains(t, impact.AffectedComponents, ComponentAPILayer)
			if !tt.impacted {
				assert.Empty(t, impact.ImpactedTests)
				return
			}
			require.Len(t, impact.ImpactedTests, 1)
			assert.Equal(t, componentMatchConfidence, impact.ImpactedTests[0].Confidence)
			assert.Equal(t, "Tests "+ComponentAPILayer, impact.ImpactedTests[0].Reason)
		})
	}
}
