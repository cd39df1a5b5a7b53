package cmd

import (
	"github.com/huangsam/testpulse/core"
	"github.com/huangsam/testpulse/internal/contract"
	"github.com/spf13/cobra"
)

// executionSetupWrapper binds the running command's execution flags before shared setup.
func executionSetupWrapper(cmd *cobra.Command, _ []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}
	return sharedSetup(rootCtx, cmd, nil)
}

// recordCmd stores one execution.
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record the outcome of one test execution.",
	Long: `Append one execution to the history of a test case.

At most 100 executions are kept per test case; the oldest are evicted first.

Examples:
  testpulse record --test-id tc-auth --result failed --duration 4200 --error-type TimeoutError
  testpulse record --test-id tc-cart --result passed --changes cart.go,cart_test.go --branch main`,
	Args:    cobra.NoArgs,
	PreRunE: executionSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRecord(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot record execution", err)
		}
	},
}

// ingestCmd records every test case of JUnit XML reports.
var ingestCmd = &cobra.Command{
	Use:   "ingest <report.xml>...",
	Short: "Record executions from JUnit XML reports.",
	Long: `Parse JUnit XML reports and record one execution per test case.

Test cases are matched to the catalog by id or name. --changes, --branch and
--date override what the reports say.

Examples:
  testpulse ingest build/test-results/*.xml --branch main`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: executionSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteIngest(rootCtx, cfg, storeManager, args); err != nil {
			contract.LogFatal("Cannot ingest reports", err)
		}
	},
}
