package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/testpulse/internal/contract"
	"github.com/huangsam/testpulse/schema"
)

// riskFixedColumns is the table width used by everything but the name column.
const riskFixedColumns = 70

// riskHeader is shared by the CSV and table renderings.
var riskHeader = []string{"rank", "test_case_id", "test_name", "score", "level", "failure_rate", "recency", "complexity", "dependency", "changes", "recommendation"}

// WriteRiskScores outputs ranked risk scores, dispatching based on the output format configured.
// total is the number of test cases that were scored before the limit was applied.
func WriteRiskScores(scores []schema.RiskScore, total int, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	return writeByFormat(cfg,
		func() any { return schema.EnrichRiskScores(scores) },
		riskHeader,
		func() [][]string { return riskRows(scores, fmtFloat, false, 0) },
		func(w io.Writer) error { return writeRiskTable(w, scores, total, cfg, duration) },
	)
}

// riskRows renders one row per score. Labels are colored only for tables.
func riskRows(scores []schema.RiskScore, fmtFloat func(float64) string, useColors bool, nameWidth int) [][]string {
	rows := make([][]string, 0, len(scores))
	for i, s := range scores {
		name := s.TestName
		if nameWidth > 0 {
			name = contract.TruncateText(name, nameWidth)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			s.TestCaseID,
			name,
			strconv.Itoa(s.Score),
			contract.GetLabel(s.RiskLevel, useColors),
			fmtFloat(s.Factors.HistoricalFailureRate),
			fmtFloat(s.Factors.LastFailureRecency),
			fmtFloat(s.Factors.Complexity),
			fmtFloat(s.Factors.DependencyWeight),
			fmtFloat(s.Factors.RecentChangesImpact),
			s.Recommendation,
		})
	}
	return rows
}

// writeRiskTable writes the human-readable risk table followed by a level summary.
func writeRiskTable(w io.Writer, scores []schema.RiskScore, total int, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	header := []string{"Rank", "ID", "Name", "Score", "Level", "Fail%", "Recency", "Complex", "Deps", "Changes"}

	rows := riskRows(scores, fmtFloat, cfg.UseColors, GetMaxTableNameWidth(cfg, riskFixedColumns))
	data := make([][]string, len(rows))
	for i, row := range rows {
		data[i] = row[:len(header)]
	}
	if err := renderTable(w, header, data); err != nil {
		return err
	}

	counts := make(map[schema.RiskLevel]int, 4)
	for _, s := range scores {
		counts[s.RiskLevel]++
	}
	if _, err := fmt.Fprintf(w, "Showing top %d of %d tests (critical: %d, high: %d, medium: %d, low: %d)\n",
		len(scores), total,
		counts[schema.CriticalRisk], counts[schema.HighRisk], counts[schema.MediumRisk], counts[schema.LowRisk]); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Scoring completed in %v with %d workers. History backend: %s\n", duration, cfg.Workers, cfg.HistoryBackend)
	return err
}
