package cmd

import (
	"github.com/huangsam/testpulse/core"
	"github.com/huangsam/testpulse/internal/contract"
	"github.com/spf13/cobra"
)

// riskCmd ranks catalog tests by risk score.
var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Show the catalog tests ranked by risk score.",
	Long: `Score every test case in the catalog from its recent execution history.

Each score is a weighted sum of five factors:
- Historical failure rate
- How recently the test last failed
- Test complexity (type and description length)
- Dependency weight (type)
- Recent code changes touched by its runs

Examples:
  # Show the 10 riskiest tests
  testpulse risk --limit 10

  # Score as of a past instant
  testpulse risk --as-of "2 weeks ago"

  # Export to CSV for tracking
  testpulse risk --output csv --output-file risk.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRiskScores(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot calculate risk scores", err)
		}
	},
}

// impactCmd selects tests affected by code changes.
var impactCmd = &cobra.Command{
	Use:   "impact [repo-path]",
	Short: "Select the tests affected by a set of changed files.",
	Long: `Map changed files to the tests they most likely affect.

Changed files come from --files, from a Git diff between --base-ref and
--target-ref, or both. Tests are matched by file name and by component
keywords (auth, api, component, service, db, model, route).

Examples:
  # Select tests for explicit files
  testpulse impact --files server/auth/session.go,ui/components/cart.tsx

  # Select tests for the changes on this branch
  testpulse impact --base-ref main`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteImpact(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot select impacted tests", err)
		}
	},
}

// predictCmd forecasts next-run outcomes.
var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Forecast which tests will fail on their next run.",
	Long: `Predict the next outcome of every catalog test from its last 10 runs.

A test is predicted to fail when more than 30% of its recent runs failed or
when more than two risk patterns are found (failures clustered on one weekday,
recurring error types, e2e tests on a Monday).

Examples:
  testpulse predict
  testpulse predict --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePredictions(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot predict test failures", err)
		}
	},
}

// orderCmd computes an optimal execution order.
var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Order tests so likely failures surface early.",
	Long: `Compute an execution order that runs likely failures and fast tests first.

Reports the estimated total time and the expected time until the first
likely failure is detected.

Examples:
  # Order the whole catalog
  testpulse order

  # Order a subset
  testpulse order --ids tc-auth,tc-cart`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteOrder(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot optimize execution order", err)
		}
	},
}

// metricsCmd displays the risk scoring model.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display the risk formula, factor weights and level thresholds",
	Long: `Show how risk scores are computed, including custom weights from .testpulse.yaml.

No execution history is read - this is purely informational.

Examples:
  testpulse metrics
  testpulse metrics --config .testpulse.yaml`,
	Args:    cobra.NoArgs,
	PreRunE: configSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetrics(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}
