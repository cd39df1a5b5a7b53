package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/testpulse/internal/contract"
	"github.com/huangsam/testpulse/schema"
)

const predictFixedColumns = 60

var predictHeader = []string{"test_case_id", "test_name", "predicted_outcome", "confidence", "risk_factors", "similar_failures"}

// WritePredictions outputs next-run forecasts.
func WritePredictions(preds []schema.TestPrediction, cfg *contract.Config, duration time.Duration) error {
	return writeByFormat(cfg,
		func() any { return preds },
		predictHeader,
		func() [][]string {
			rows := make([][]string, 0, len(preds))
			for _, p := range preds {
				similar := make([]string, 0, len(p.SimilarFailures))
				for _, sf := range p.SimilarFailures {
					similar = append(similar, fmt.Sprintf("%s@%s", sf.Pattern, sf.Date.Format(contract.DateTimeFormat)))
				}
				rows = append(rows, []string{
					p.TestCaseID, p.TestName, string(p.PredictedOutcome), strconv.Itoa(p.Confidence),
					strings.Join(p.RiskFactors, "|"), strings.Join(similar, "|"),
				})
			}
			return rows
		},
		func(w io.Writer) error { return writePredictionTable(w, preds, cfg, duration) },
	)
}

// outcomeLabel upper-cases the outcome, coloring failures when enabled.
func outcomeLabel(o schema.Outcome, useColors bool) string {
	text := strings.ToUpper(string(o))
	if !useColors {
		return text
	}
	if o == schema.FailOutcome {
		return contract.CriticalColor.Sprint(text)
	}
	return contract.LowColor.Sprint(text)
}

func writePredictionTable(w io.Writer, preds []schema.TestPrediction, cfg *contract.Config, duration time.Duration) error {
	now := cfg.Now()
	nameWidth := GetMaxTableNameWidth(cfg, predictFixedColumns)
	header := []string{"ID", "Name", "Outcome", "Confidence", "Risk Factors", "Last Similar Failure"}

	failing := 0
	data := make([][]string, 0, len(preds))
	for _, p := range preds {
		if p.PredictedOutcome == schema.FailOutcome {
			failing++
		}
		factors := "-"
		if len(p.RiskFactors) > 0 {
			factors = strings.Join(p.RiskFactors, "; ")
		}
		similar := "-"
		if n := len(p.SimilarFailures); n > 0 {
			sf := p.SimilarFailures[n-1]
			similar = fmt.Sprintf("%s (%s)", sf.Pattern, humanize.RelTime(sf.Date, now, "ago", "from now"))
		}
		data = append(data, []string{
			p.TestCaseID,
			contract.TruncateText(p.TestName, nameWidth),
			outcomeLabel(p.PredictedOutcome, cfg.UseColors),
			strconv.Itoa(p.Confidence),
			factors,
			similar,
		})
	}
	if err := renderTable(w, header, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Predicted %d of %d tests to fail. Completed in %v\n", failing, len(preds), duration)
	return err
}
