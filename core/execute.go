package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/testpulse/core/algo"
	"github.com/huangsam/testpulse/internal/catalog"
	"github.com/huangsam/testpulse/internal/contract"
	"github.com/huangsam/testpulse/internal/history"
	"github.com/huangsam/testpulse/internal/outwriter"
	"github.com/huangsam/testpulse/internal/parquet"
	"github.com/huangsam/testpulse/internal/persist"
	"github.com/huangsam/testpulse/schema"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrNoHistoryStore is returned when a command runs before the store is initialized.
var ErrNoHistoryStore = errors.New("history store is not initialized")

// ExecutorFunc defines the function signature for executing a command against the history store.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// newEngine builds an engine from the validated configuration.
func newEngine(cfg *contract.Config) *Engine {
	return NewEngine(WithWeights(cfg.ComputedWeights), WithClock(cfg.Now))
}

// historyStore returns the configured store or ErrNoHistoryStore.
func historyStore(mgr contract.StoreManager) (contract.HistoryStore, error) {
	if mgr == nil {
		return nil, ErrNoHistoryStore
	}
	store := mgr.GetHistoryStore()
	if store == nil {
		return nil, ErrNoHistoryStore
	}
	return store, nil
}

// loadInputs reads the catalog and the history of every test case in it.
func loadInputs(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.TestCase, history.Snapshot, error) {
	testCases, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, nil, err
	}
	store, err := historyStore(mgr)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]string, len(testCases))
	for i, tc := range testCases {
		ids[i] = tc.ID
	}
	snap, err := LoadSnapshot(ctx, store, ids, cfg.Workers)
	if err != nil {
		return nil, nil, err
	}
	return testCases, snap, nil
}

// LoadSnapshot reads the history of each id from the store, fanning out over at most workers goroutines.
func LoadSnapshot(ctx context.Context, store contract.HistoryStore, ids []string, workers int) (history.Snapshot, error) {
	results := make([][]schema.ExecutionRecord, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recs, err := store.Load(id)
			if err != nil {
				return fmt.Errorf("failed to load history for %s: %w", id, err)
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := make(history.Snapshot, len(ids))
	for i, id := range ids {
		if len(results[i]) > 0 {
			snap[id] = results[i]
		}
	}
	log.Debug().Int("tests", len(ids)).Int("with_history", len(snap)).Msg("Loaded history snapshot")
	return snap, nil
}

// GetRiskScoreResults scores the catalog and returns the top cfg.ResultLimit scores,
// along with the number of test cases that were scored.
func GetRiskScoreResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.RiskScore, int, error) {
	testCases, snap, err := loadInputs(ctx, cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	scores := newEngine(cfg).CalculateRiskScores(testCases, snap)
	return algo.RankRiskScores(scores, cfg.ResultLimit), len(scores), nil
}

// GetImpactResults maps cfg.ChangedFiles to the catalog tests they likely affect.
func GetImpactResults(_ context.Context, cfg *contract.Config) (schema.CodeChangeImpact, error) {
	testCases, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return schema.CodeChangeImpact{}, err
	}
	return newEngine(cfg).SelectTestsForCodeChanges(testCases, cfg.ChangedFiles), nil
}

// GetPredictionResults forecasts the next run of every catalog test, failures first.
func GetPredictionResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.TestPrediction, error) {
	testCases, snap, err := loadInputs(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}
	return algo.FailuresFirst(newEngine(cfg).PredictTestFailures(testCases, snap)), nil
}

// GetOrderResults orders cfg.TestIDs (or the whole catalog when empty) for execution.
func GetOrderResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.OptimalOrder, error) {
	testCases, snap, err := loadInputs(ctx, cfg, mgr)
	if err != nil {
		return schema.OptimalOrder{}, err
	}
	return newEngine(cfg).OptimizeTestExecutionOrder(testCases, snap, cfg.TestIDs), nil
}

// RecordExecution stores one execution through the engine.
func RecordExecution(cfg *contract.Config, mgr contract.StoreManager, in schema.ExecutionInput) (schema.ExecutionRecord, error) {
	store, err := historyStore(mgr)
	if err != nil {
		return schema.ExecutionRecord{}, err
	}
	return newEngine(cfg).RecordTestExecution(store, in)
}

// IngestJUnitReports records one execution per test case of each JUnit report.
// Case names are resolved against the catalog when one is available. Non-empty
// fields of cfg.Execution override what the reports say.
func IngestJUnitReports(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, paths []string) ([]schema.ExecutionRecord, error) {
	store, err := historyStore(mgr)
	if err != nil {
		return nil, err
	}

	var idx *catalog.Index
	if testCases, err := catalog.Load(cfg.CatalogPath); err == nil {
		idx = catalog.NewIndex(testCases)
	} else {
		log.Warn().Err(err).Str("catalog", cfg.CatalogPath).Msg("Ingesting without catalog; ids come from JUnit names")
	}

	engine := newEngine(cfg)
	var recorded []schema.ExecutionRecord
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return recorded, err
		}
		suites, err := catalog.ParseJUnitFile(path)
		if err != nil {
			return recorded, err
		}
		inputs := catalog.ExecutionsFromJUnit(suites, idx)
		for _, in := range inputs {
			applyOverrides(&in, cfg.Execution)
			rec, err := engine.RecordTestExecution(store, in)
			if err != nil {
				return recorded, err
			}
			recorded = append(recorded, rec)
		}
		log.Info().Str("report", path).Int("recorded", len(inputs)).Msg("Ingested JUnit report")
	}
	return recorded, nil
}

func applyOverrides(in *schema.ExecutionInput, o schema.ExecutionInput) {
	if o.BranchName != "" {
		in.BranchName = o.BranchName
	}
	if len(o.CodeChangesTouched) > 0 {
		in.CodeChangesTouched = o.CodeChangesTouched
	}
	if !o.ExecutionDate.IsZero() {
		in.ExecutionDate = o.ExecutionDate
	}
}

// ExecuteRiskScores ranks the catalog by risk and prints the results.
func ExecuteRiskScores(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	scores, total, err := GetRiskScoreResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteRiskScores(scores, total, cfg, time.Since(start))
}

// ExecuteImpact selects the tests affected by the configured changes and prints them.
func ExecuteImpact(ctx context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	start := time.Now()
	if len(cfg.ChangedFiles) == 0 {
		log.Warn().Msg("No changed files given; use --files or --base-ref")
	}
	impact, err := GetImpactResults(ctx, cfg)
	if err != nil {
		return err
	}
	return outwriter.WriteImpact(impact, cfg, time.Since(start))
}

// ExecutePredictions forecasts the next run of every test and prints the results.
func ExecutePredictions(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	preds, err := GetPredictionResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WritePredictions(preds, cfg, time.Since(start))
}

// ExecuteOrder computes the optimal execution order and prints it.
func ExecuteOrder(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	order, err := GetOrderResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteOrder(order, cfg, time.Since(start))
}

// ExecuteRecord stores the execution described by cfg.Execution and prints the stored record.
func ExecuteRecord(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	rec, err := RecordExecution(cfg, mgr, cfg.Execution)
	if err != nil {
		return err
	}
	return outwriter.WriteRecords([]schema.ExecutionRecord{rec}, cfg)
}

// ExecuteIngest records every test case of the given JUnit reports and prints what was stored.
func ExecuteIngest(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, paths []string) error {
	if len(paths) == 0 {
		return errors.New("at least one JUnit report path is required")
	}
	recorded, err := IngestJUnitReports(ctx, cfg, mgr, paths)
	if err != nil {
		if len(recorded) > 0 {
			log.Warn().Int("recorded", len(recorded)).Msg("Ingest stopped early; earlier executions were kept")
		}
		return err
	}
	return outwriter.WriteRecords(recorded, cfg)
}

// ExecuteMetrics displays the risk formula, the active weights and the level thresholds.
func ExecuteMetrics(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	return outwriter.PrintMetricsDefinitions(BuildMetricsRenderModel(newEngine(cfg)), cfg)
}

// ExecuteHistoryStatus prints the state of the history store.
func ExecuteHistoryStatus(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	store, err := historyStore(mgr)
	if err != nil {
		return err
	}
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if cfg.Output != schema.TextOut {
		return outwriter.WriteHistoryStatus(status, cfg)
	}
	persist.PrintHistoryStatus(os.Stdout, status, cfg.Now())
	return nil
}

// ExecuteHistoryExport writes all retained executions, plus a risk score snapshot of the
// catalog when one is available, to Parquet files.
func ExecuteHistoryExport(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	if cfg.OutputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	store, err := historyStore(mgr)
	if err != nil {
		return err
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRecords == 0 {
		return errors.New("no execution history found to export")
	}
	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total executions: %d across %d test cases\n", status.TotalRecords, status.TotalTestCases)

	records, err := store.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to retrieve executions: %w", err)
	}
	rows := parquet.ConvertExecutionRecords(records)
	if err := parquet.WriteExecutionsParquet(rows, cfg.OutputFile); err != nil {
		return fmt.Errorf("failed to write executions: %w", err)
	}
	fmt.Printf("Exported %d executions to: %s\n", len(rows), cfg.OutputFile)

	testCases, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Warn().Err(err).Msg("Skipping risk score export")
		return nil
	}
	snap := history.FromRecords(records)
	now := cfg.Now()
	scores := NewEngine(WithWeights(cfg.ComputedWeights), WithClock(func() time.Time { return now })).
		CalculateRiskScores(testCases, snap)
	riskFile := riskExportPath(cfg.OutputFile)
	if err := parquet.WriteRiskScoresParquet(parquet.ConvertRiskScores(scores, now), riskFile); err != nil {
		return fmt.Errorf("failed to write risk scores: %w", err)
	}
	fmt.Printf("Exported %d risk scores to: %s\n", len(scores), riskFile)
	return nil
}

// riskExportPath derives "<name>_risk.parquet" from the executions export path.
func riskExportPath(outputFile string) string {
	ext := filepath.Ext(outputFile)
	return strings.TrimSuffix(outputFile, ext) + "_risk.parquet"
}
