package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/testpulse/internal/contract"
	"github.com/huangsam/testpulse/schema"
)

// PrintMetricsDefinitions displays the risk scoring model.
// This is a static display that does not require any execution history.
func PrintMetricsDefinitions(renderModel *schema.MetricsRenderModel, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONMetrics(w, renderModel)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			writer := csv.NewWriter(w)
			defer writer.Flush()
			return writeCSVMetrics(writer, renderModel)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return printMetricsText(w, renderModel, cfg)
		}, "Wrote text")
	}
}

// printMetricsText displays metrics in human-readable text format.
func printMetricsText(w io.Writer, renderModel *schema.MetricsRenderModel, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(2)
	if _, err := fmt.Fprintf(w, "🧪 %s\n========================\n\n%s\n\n", renderModel.Title, renderModel.Description); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "Factors:"); err != nil {
		return err
	}
	for _, f := range renderModel.Factors {
		if _, err := fmt.Fprintf(w, "   %-26s %s  %s\n", f.Key, fmtFloat(f.Weight), f.Description); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "\nFormula: %s\n\nLevels:\n", renderModel.Formula); err != nil {
		return err
	}
	for _, t := range renderModel.Thresholds {
		label := t.Level
		if cfg.UseColors {
			label = contract.GetColorLabel(levelFromLabel(t.Level))
		}
		if _, err := fmt.Fprintf(w, "   %s (score >= %d): %s\n", label, t.MinScore, t.Recommendation); err != nil {
			return err
		}
	}

	if len(renderModel.Rules) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "\nPrediction rules:"); err != nil {
		return err
	}
	for _, r := range renderModel.Rules {
		if _, err := fmt.Fprintf(w, "   - %s\n", r); err != nil {
			return err
		}
	}
	return nil
}

// levelFromLabel reverses contract.GetPlainLabel.
func levelFromLabel(label string) schema.RiskLevel {
	switch label {
	case contract.CriticalValue:
		return schema.CriticalRisk
	case contract.HighValue:
		return schema.HighRisk
	case contract.MediumValue:
		return schema.MediumRisk
	default:
		return schema.LowRisk
	}
}

// writeJSONMetrics writes the metrics definitions in JSON format.
func writeJSONMetrics(w io.Writer, renderModel *schema.MetricsRenderModel) error {
	return writeJSON(w, renderModel)
}

// writeCSVMetrics writes one row per factor and one per level threshold.
func writeCSVMetrics(w *csv.Writer, renderModel *schema.MetricsRenderModel) error {
	if err := w.Write([]string{"kind", "name", "value", "description"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, f := range renderModel.Factors {
		if err := w.Write([]string{"factor", f.Key, strconv.FormatFloat(f.Weight, 'f', 2, 64), f.Description}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	for _, t := range renderModel.Thresholds {
		if err := w.Write([]string{"threshold", t.Level, strconv.Itoa(t.MinScore), t.Recommendation}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return nil
}
