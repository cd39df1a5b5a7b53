// Package cmd defines the command-line interface for testpulse.
package cmd

import (
	"github.com/huangsam/testpulse/internal/contract"
	"github.com/huangsam/testpulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(riskCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("catalog", contract.DefaultCatalogFile, "Path to the YAML test case catalog")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent history readers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("as-of", "", "Evaluation instant in ISO8601 or time ago (default now)")
	rootCmd.PersistentFlags().String("history-backend", string(schema.SQLiteBackend), "History backend: sqlite or mysql or postgresql or memory")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of impactCmd to Viper
	impactCmd.Flags().String("files", "", "Comma-separated list of changed files")
	impactCmd.Flags().String("base-ref", "", "Base Git reference to diff changed files from")
	impactCmd.Flags().String("target-ref", "", "Target Git reference to diff changed files to (default HEAD)")
	if err := viper.BindPFlags(impactCmd.Flags()); err != nil {
		contract.LogFatal("Error binding impact flags", err)
	}

	// Bind all flags of orderCmd to Viper
	orderCmd.Flags().String("ids", "", "Comma-separated test case ids to order (default all)")
	if err := viper.BindPFlags(orderCmd.Flags()); err != nil {
		contract.LogFatal("Error binding order flags", err)
	}

	// Flags shared by record and ingest live on both commands but bind once.
	executionFlags := []*cobra.Command{recordCmd, ingestCmd}
	for _, c := range executionFlags {
		c.Flags().String("changes", "", "Comma-separated list of files changed for the run")
		c.Flags().String("branch", "", "VCS branch of the run")
		c.Flags().String("date", "", "Execution date in ISO8601 or time ago (default now)")
	}
	recordCmd.Flags().String("test-id", "", "Catalog id of the executed test case")
	recordCmd.Flags().String("test-name", "", "Test name at execution time")
	recordCmd.Flags().String("result", "", "Execution result: passed or failed or skipped")
	recordCmd.Flags().Int64("duration", 0, "Wall time in milliseconds")
	recordCmd.Flags().String("error-type", "", "Error class of a failed run")
	_ = recordCmd.MarkFlagRequired("test-id")
	_ = recordCmd.MarkFlagRequired("result")

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}

// bindFlags binds the flags of the command that is about to run. Commands
// that share flag names must bind here rather than in init, since Viper keeps
// only the last binding per key.
func bindFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
