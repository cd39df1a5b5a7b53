package contract

import (
	"context"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/testpulse/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 1
	DefaultCatalogFile = "testcases.yaml"
	DefaultTargetRef   = "HEAD"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// WeightsRawInput holds custom risk weights from the YAML config file.
// Use float64 pointers so unset fields keep their defaults.
type WeightsRawInput struct {
	FailureRate *float64 `mapstructure:"failure_rate"`
	Recency     *float64 `mapstructure:"recency"`
	Complexity  *float64 `mapstructure:"complexity"`
	Dependency  *float64 `mapstructure:"dependency"`
	Changes     *float64 `mapstructure:"changes"`
}

// Config holds the runtime configuration.
// This struct is the "final, validated" config.
type Config struct {
	CatalogPath string
	RepoPath    string
	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool
	LogLevel    string

	// AsOf is the evaluation instant; zero means the wall clock.
	AsOf time.Time

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	ChangedFiles []string
	BaseRef      string
	TargetRef    string
	TestIDs      []string

	// Execution holds the fields of a manually recorded execution, or the
	// overrides applied to every ingested JUnit case.
	Execution schema.ExecutionInput

	// TargetVersion is the schema migration target (-1 = latest).
	TargetVersion int

	// CustomWeights holds only the weights the user overrode.
	CustomWeights map[schema.BreakdownKey]float64

	// ComputedWeights is defaults merged with CustomWeights.
	ComputedWeights map[schema.BreakdownKey]float64
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Catalog          string `mapstructure:"catalog"`
	OutputFile       string `mapstructure:"output-file"`
	Limit            int    `mapstructure:"limit"`
	Workers          int    `mapstructure:"workers"`
	Precision        int    `mapstructure:"precision"`
	Output           string `mapstructure:"output"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	LogLevel         string `mapstructure:"log-level"`
	AsOf             string `mapstructure:"as-of"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from impactCmd.Flags() ---
	Files     string `mapstructure:"files"`
	BaseRef   string `mapstructure:"base-ref"`
	TargetRef string `mapstructure:"target-ref"`

	// --- Fields from orderCmd.Flags() ---
	IDs string `mapstructure:"ids"`

	// --- Fields from recordCmd.Flags() and ingestCmd.Flags() ---
	TestID    string `mapstructure:"test-id"`
	TestName  string `mapstructure:"test-name"`
	Result    string `mapstructure:"result"`
	Duration  int64  `mapstructure:"duration"`
	ErrorType string `mapstructure:"error-type"`
	Changes   string `mapstructure:"changes"`
	Branch    string `mapstructure:"branch"`
	Date      string `mapstructure:"date"`

	// --- Fields from historyMigrateCmd.Flags() ---
	TargetVersion int `mapstructure:"target-version"`

	// --- Custom weights from config file ---
	Weights WeightsRawInput `mapstructure:"weights"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.ChangedFiles = slices.Clone(c.ChangedFiles)
	clone.TestIDs = slices.Clone(c.TestIDs)
	clone.Execution.CodeChangesTouched = slices.Clone(c.Execution.CodeChangesTouched)
	if c.CustomWeights != nil {
		clone.CustomWeights = maps.Clone(c.CustomWeights)
	}
	if c.ComputedWeights != nil {
		clone.ComputedWeights = maps.Clone(c.ComputedWeights)
	}
	return &clone
}

// Now returns the evaluation instant for time-relative factors.
func (c *Config) Now() time.Time {
	if c.AsOf.IsZero() {
		return time.Now()
	}
	return c.AsOf
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processAsOf(cfg, input); err != nil {
		return err
	}
	if err := processCustomWeights(cfg, input); err != nil {
		return err
	}
	if err := processChangeSelection(ctx, cfg, client, input); err != nil {
		return err
	}
	cfg.TestIDs = schema.SplitList(input.IDs)
	cfg.TargetVersion = input.TargetVersion
	return processExecution(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.MemoryBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseDatabaseBackend validates a backend name.
func ParseDatabaseBackend(s string) (schema.DatabaseBackend, error) {
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, memory", s)
	}
	return backend, nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.CatalogPath = strings.TrimSpace(input.Catalog)
	if cfg.CatalogPath == "" {
		cfg.CatalogPath = DefaultCatalogFile
	}
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.RepoPath = input.RepoPathStr
	if cfg.RepoPath == "" {
		cfg.RepoPath = "."
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if _, err := ParseLogLevel(input.LogLevel); err != nil {
		return err
	}
	cfg.LogLevel = input.LogLevel

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}

	// --- 4. Backend Validation ---
	backend, err := ParseDatabaseBackend(input.HistoryBackend)
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// processAsOf resolves the evaluation instant. Empty keeps the wall clock.
func processAsOf(cfg *Config, input *ConfigRawInput) error {
	cfg.AsOf = time.Time{}
	if strings.TrimSpace(input.AsOf) == "" {
		return nil
	}
	t, err := ParseTimeInput(input.AsOf, time.Now())
	if err != nil {
		return fmt.Errorf("invalid --as-of value: %w", err)
	}
	cfg.AsOf = t
	return nil
}

// ProcessWeightsRawInput converts WeightsRawInput into a weights map holding only
// the provided keys. If validateSum is true, the provided set must sum to 1.0.
func ProcessWeightsRawInput(weights WeightsRawInput, validateSum bool) (map[schema.BreakdownKey]float64, error) {
	raw := map[schema.BreakdownKey]*float64{
		schema.BreakdownFailureRate: weights.FailureRate,
		schema.BreakdownRecency:     weights.Recency,
		schema.BreakdownComplexity:  weights.Complexity,
		schema.BreakdownDependency:  weights.Dependency,
		schema.BreakdownChanges:     weights.Changes,
	}

	result := make(map[schema.BreakdownKey]float64)
	for key, value := range raw {
		if value == nil {
			continue
		}
		if *value < 0 {
			return nil, fmt.Errorf("weight %s cannot be negative (received %.3f)", key, *value)
		}
		result[key] = *value
	}
	if len(result) == 0 {
		return result, nil
	}

	// The sum is checked on the merged set, since partial overrides keep defaults.
	merged := schema.GetDefaultWeights()
	maps.Copy(merged, result)
	sum := 0.0
	for _, v := range merged {
		sum += v
	}
	if validateSum && (sum < 0.999 || sum > 1.001) {
		return nil, fmt.Errorf("risk weights must sum to 1.0, got %.3f", sum)
	}
	return result, nil
}

// processCustomWeights converts the raw input into cfg.CustomWeights
// and computes the final ComputedWeights.
func processCustomWeights(cfg *Config, input *ConfigRawInput) error {
	weights, err := ProcessWeightsRawInput(input.Weights, true)
	if err != nil {
		return err
	}
	cfg.CustomWeights = weights
	cfg.ComputedWeights = schema.GetDefaultWeights()
	maps.Copy(cfg.ComputedWeights, weights)
	return nil
}

// processChangeSelection resolves the changed files for impact selection, either from an
// explicit --files list, from a Git diff between two references, or both.
func processChangeSelection(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	cfg.ChangedFiles = schema.SplitList(input.Files)
	cfg.BaseRef = strings.TrimSpace(input.BaseRef)
	cfg.TargetRef = strings.TrimSpace(input.TargetRef)

	if cfg.BaseRef == "" {
		if cfg.TargetRef != "" {
			return fmt.Errorf("must specify --base-ref when --target-ref is set")
		}
		return nil
	}
	if cfg.TargetRef == "" {
		cfg.TargetRef = DefaultTargetRef
	}

	root, err := client.GetRepoRoot(ctx, cfg.RepoPath)
	if err != nil {
		return err
	}
	cfg.RepoPath = root

	diffFiles, err := client.GetChangedFilesBetweenRefs(ctx, root, cfg.BaseRef, cfg.TargetRef)
	if err != nil {
		return fmt.Errorf("failed to list changed files between %s and %s: %w", cfg.BaseRef, cfg.TargetRef, err)
	}
	for _, f := range diffFiles {
		if !slices.Contains(cfg.ChangedFiles, f) {
			cfg.ChangedFiles = append(cfg.ChangedFiles, f)
		}
	}
	return nil
}

// processExecution collects the record/ingest fields. An unrecognized result is kept
// verbatim so that the engine can reject it with a precise error.
func processExecution(cfg *Config, input *ConfigRawInput) error {
	result := schema.Result(strings.ToLower(strings.TrimSpace(input.Result)))
	if parsed, err := schema.ParseResult(input.Result); err == nil {
		result = parsed
	}

	cfg.Execution = schema.ExecutionInput{
		TestCaseID:         strings.TrimSpace(input.TestID),
		TestName:           strings.TrimSpace(input.TestName),
		Result:             result,
		Duration:           input.Duration,
		ErrorType:          strings.TrimSpace(input.ErrorType),
		CodeChangesTouched: schema.SplitList(input.Changes),
		BranchName:         strings.TrimSpace(input.Branch),
	}

	if strings.TrimSpace(input.Date) == "" {
		return nil
	}
	date, err := ParseTimeInput(input.Date, cfg.Now())
	if err != nil {
		return fmt.Errorf("invalid --date value: %w", err)
	}
	cfg.Execution.ExecutionDate = date
	return nil
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	profilePrefix = strings.TrimSpace(profilePrefix)
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
