package core

import (
	"maps"
	"slices"
	"time"

	"github.com/huangsam/testpulse/schema"
)

// Engine scores, predicts and orders test cases over history snapshots.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	weights map[schema.BreakdownKey]float64
	rules   []PredictionRule
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// NewEngine creates an engine with the default weights, the default
// prediction rules and the wall clock.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		weights: schema.GetDefaultWeights(),
		rules:   DefaultRules(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithWeights overrides risk factor weights. Keys that are not present keep their defaults.
func WithWeights(weights map[schema.BreakdownKey]float64) Option {
	return func(e *Engine) {
		maps.Copy(e.weights, weights)
	}
}

// WithRules replaces the prediction rule set.
func WithRules(rules ...PredictionRule) Option {
	return func(e *Engine) {
		e.rules = slices.Clone(rules)
	}
}

// WithClock sets the source of the evaluation instant.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Weights returns a copy of the active risk factor weights.
func (e *Engine) Weights() map[schema.BreakdownKey]float64 {
	return maps.Clone(e.weights)
}

// Rules returns the active prediction rules.
func (e *Engine) Rules() []PredictionRule {
	return slices.Clone(e.rules)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
