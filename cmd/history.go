package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/testpulse/core"
	"github.com/huangsam/testpulse/internal/contract"
	"github.com/huangsam/testpulse/internal/persist"
	"github.com/spf13/cobra"
)

// historyCmd focused on execution history management.
//
// Note: clear and migrate use configSetupWrapper instead of sharedSetup so
// they can act on a store that is missing, outdated or about to be dropped.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the execution history store",
	Long: `Manage the store that keeps the last 100 executions of every test case.

Supported backends: SQLite (default), MySQL, PostgreSQL, or memory (per process)

Subcommands:
  status  - Show store statistics and connection info
  clear   - Remove all recorded executions
  export  - Write executions and risk scores to Parquet files
  migrate - Run database schema migrations

Examples:
  # Check history status
  testpulse history status

  # Use a shared PostgreSQL store
  TESTPULSE_HISTORY_BACKEND=postgresql TESTPULSE_HISTORY_DB_CONNECT="..." testpulse history status`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show the backend, connection status, record counts and the time span of
the recorded executions.

Examples:
  testpulse history status
  testpulse history status --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHistoryStatus(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
	},
}

// historyClearCmd clears the history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded executions",
	Long: `Delete all execution history from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the history table

Examples:
  testpulse history clear`,
	PreRunE: configSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := persist.ClearHistory(cfg.HistoryBackend, persist.GetDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyExportCmd exports history to Parquet.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export executions and risk scores to Parquet files",
	Long: `Export every retained execution to a Parquet file, plus a risk score
snapshot of the catalog next to it (<name>_risk.parquet).

Examples:
  testpulse history export --output-file history.parquet
  duckdb -c "SELECT result, count(*) FROM read_parquet('history.parquet') GROUP BY 1"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHistoryExport(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  testpulse history migrate

  # Rollback to the initial state
  testpulse history migrate --target-version 0`,
	PreRunE: configSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := persist.MigrateHistory(os.Stdout, cfg.HistoryBackend, cfg.HistoryDBConnect, cfg.TargetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
