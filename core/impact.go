package core

import (
	"path"
	"slices"
	"strings"
	"unicode"

	"github.com/huangsam/testpulse/core/algo"
	"github.com/huangsam/testpulse/schema"
)

// Component names deduced from changed paths.
const (
	ComponentAuthentication = "Authentication"
	ComponentAPILayer       = "API Layer"
	ComponentUI             = "UI Components"
	ComponentBusinessLogic  = "Business Logic"
	ComponentDataLayer      = "Data Layer"
	ComponentRouting        = "Routing"
)

// componentKeywords is scanned in order; a path may hit several entries.
var componentKeywords = []struct {
	keyword   string
	component string
}{
	{"auth", ComponentAuthentication},
	{"api", ComponentAPILayer},
	{"component", ComponentUI},
	{"service", ComponentBusinessLogic},
	{"db", ComponentDataLayer},
	{"model", ComponentDataLayer},
	{"route", ComponentRouting},
}

// Confidence contributions.
const (
	directMatchConfidence    = 90
	componentMatchConfidence = 60
	integrationAPIConfidence = 40
	e2eUIConfidence          = 30
	minImpactConfidence      = 30 // exclusive
)

// SelectTestsForCodeChanges maps changed file paths to the test cases they likely affect.
func (e *Engine) SelectTestsForCodeChanges(testCases []schema.TestCase, changedFiles []string) schema.CodeChangeImpact {
	impact := schema.CodeChangeImpact{
		FilesChanged:       slices.Clone(changedFiles),
		AffectedComponents: affectedComponents(changedFiles),
		ImpactedTests:      []schema.ImpactedTest{},
		RiskLevel:          schema.LowRisk,
	}
	if impact.FilesChanged == nil {
		impact.FilesChanged = []string{}
	}
	if len(changedFiles) == 0 {
		return impact
	}

	touchesUI := slices.ContainsFunc(changedFiles, func(f string) bool {
		return strings.Contains(strings.ToLower(f), "component")
	})
	apiAffected := slices.Contains(impact.AffectedComponents, ComponentAPILayer)

	for _, tc := range testCases {
		confidence, reasons := 0, []string{}

		if directFileMatch(tc.Name, changedFiles) {
			confidence += directMatchConfidence
			reasons = append(reasons, "Direct file match")
		}

		for _, component := range impact.AffectedComponents {
			if containsFold(tc.Name, component) || containsFold(tc.Description, component) {
				confidence += componentMatchConfidence
				reasons = append(reasons, "Tests "+component)
			}
		}

		switch schema.NormalizeTestType(tc.Type) {
		case schema.IntegrationTest:
			if apiAffected {
				confidence += integrationAPIConfidence
				reasons = append(reasons, "Integration test for API changes")
			}
		case schema.E2ETest:
			if touchesUI {
				confidence += e2eUIConfidence
				reasons = append(reasons, "E2E coverage for UI changes")
			}
		}

		confidence = min(confidence, 100)
		if confidence <= minImpactConfidence {
			continue
		}
		impact.ImpactedTests = append(impact.ImpactedTests, schema.ImpactedTest{
			TestCaseID: tc.ID,
			TestName:   tc.Name,
			Confidence: confidence,
			Reason:     strings.Join(reasons, ", "),
		})
	}

	algo.SortImpactedTests(impact.ImpactedTests)
	impact.RiskLevel = impactRiskLevel(impact.ImpactedTests)
	return impact
}

// affectedComponents returns the deduplicated components touched by the paths,
// in order of first appearance.
func affectedComponents(changedFiles []string) []string {
	components := []string{}
	for _, f := range changedFiles {
		lower := strings.ToLower(f)
		for _, kw := range componentKeywords {
			if strings.Contains(lower, kw.keyword) && !slices.Contains(components, kw.component) {
				components = append(components, kw.component)
			}
		}
	}
	return components
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// directFileMatch reports whether any changed file's stem relates to the test name.
func directFileMatch(testName string, changedFiles []string) bool {
	name := alnumOnly(strings.ToLower(testName))
	if name == "" {
		return false
	}
	for _, f := range changedFiles {
		stem := normalizeFileStem(f)
		if stem == "" {
			continue
		}
		if strings.Contains(name, stem) || strings.Contains(stem, name) {
			return true
		}
	}
	return false
}

// normalizeFileStem turns "server/services/auth.service.ts" into "auth".
func normalizeFileStem(p string) string {
	base := path.Base(strings.ReplaceAll(strings.ToLower(p), `\`, "/"))
	base, _, _ = strings.Cut(base, ".")
	return alnumOnly(base)
}

func alnumOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func impactRiskLevel(tests []schema.ImpactedTest) schema.RiskLevel {
	strong, moderate := 0, 0
	for _, t := range tests {
		if t.Confidence > 70 {
			strong++
		}
		if t.Confidence > 50 {
			moderate++
		}
	}
	switch {
	case strong > 5:
		return schema.HighRisk
	case moderate > 3:
		return schema.MediumRisk
	default:
		return schema.LowRisk
	}
}
