package core

import (
	"fmt"
	"strings"

	"github.com/huangsam/testpulse/internal/contract"
	"github.com/huangsam/testpulse/schema"
)

var factorDescriptions = map[schema.BreakdownKey]string{
	schema.BreakdownFailureRate: "Percent of retained executions that failed",
	schema.BreakdownRecency:     "100 if the last failure was under 7 days ago, 50 if under 30, else 0",
	schema.BreakdownComplexity:  "Base by test type plus up to 20 for long descriptions",
	schema.BreakdownDependency:  "Fixed weight by test type",
	schema.BreakdownChanges:     "20 per changed file touched in the last 7 days, capped at 100",
}

// BuildMetricsRenderModel describes the engine's scoring model for display.
func BuildMetricsRenderModel(e *Engine) *schema.MetricsRenderModel {
	weights := e.Weights()

	factors := make([]schema.MetricsFactor, 0, len(schema.AllBreakdownKeys))
	terms := make([]string, 0, len(schema.AllBreakdownKeys))
	for _, key := range schema.AllBreakdownKeys {
		factors = append(factors, schema.MetricsFactor{
			Key:         string(key),
			Description: factorDescriptions[key],
			Weight:      weights[key],
		})
		terms = append(terms, fmt.Sprintf("%.2f*%s", weights[key], key))
	}

	levels := []struct {
		level schema.RiskLevel
		min   int
	}{
		{schema.CriticalRisk, CriticalThreshold},
		{schema.HighRisk, HighThreshold},
		{schema.MediumRisk, MediumThreshold},
		{schema.LowRisk, 0},
	}
	thresholds := make([]schema.MetricsThreshold, len(levels))
	for i, l := range levels {
		thresholds[i] = schema.MetricsThreshold{
			Level:          contract.GetPlainLabel(l.level),
			MinScore:       l.min,
			Recommendation: RecommendationFor(l.level),
		}
	}

	rules := make([]string, 0, len(e.rules))
	for _, r := range e.rules {
		rules = append(rules, fmt.Sprintf("%s: %s", r.Name, r.Description))
	}

	return &schema.MetricsRenderModel{
		Title:       "Test Risk Scoring Model",
		Description: "Risk score = weighted sum of factors in [0, 100], rounded and clamped",
		Factors:     factors,
		Formula:     "Score = " + strings.Join(terms, " + "),
		Thresholds:  thresholds,
		Rules:       rules,
	}
}
