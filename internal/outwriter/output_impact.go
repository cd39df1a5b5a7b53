package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/testpulse/internal/contract"
	"github.com/huangsam/testpulse/schema"
)

const impactFixedColumns = 45

var impactHeader = []string{"rank", "test_case_id", "test_name", "confidence", "reason"}

// WriteImpact outputs the tests selected for a change set.
func WriteImpact(impact schema.CodeChangeImpact, cfg *contract.Config, duration time.Duration) error {
	return writeByFormat(cfg,
		func() any { return impact },
		impactHeader,
		func() [][]string { return impactRows(impact.ImpactedTests, 0) },
		func(w io.Writer) error { return writeImpactTable(w, impact, cfg, duration) },
	)
}

func impactRows(tests []schema.ImpactedTest, nameWidth int) [][]string {
	rows := make([][]string, 0, len(tests))
	for i, t := range tests {
		name := t.TestName
		if nameWidth > 0 {
			name = contract.TruncateText(name, nameWidth)
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), t.TestCaseID, name, strconv.Itoa(t.Confidence), t.Reason})
	}
	return rows
}

func writeImpactTable(w io.Writer, impact schema.CodeChangeImpact, cfg *contract.Config, duration time.Duration) error {
	components := "none"
	if len(impact.AffectedComponents) > 0 {
		components = strings.Join(impact.AffectedComponents, ", ")
	}
	if _, err := fmt.Fprintf(w, "Changed files: %d\nAffected components: %s\nRisk level: %s\n",
		len(impact.FilesChanged), components, contract.GetLabel(impact.RiskLevel, cfg.UseColors)); err != nil {
		return err
	}
	if len(impact.ImpactedTests) == 0 {
		_, err := fmt.Fprintln(w, "No impacted tests found.")
		return err
	}

	header := []string{"Rank", "ID", "Name", "Confidence", "Reason"}
	if err := renderTable(w, header, impactRows(impact.ImpactedTests, GetMaxTableNameWidth(cfg, impactFixedColumns))); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Selected %d tests in %v\n", len(impact.ImpactedTests), duration)
	return err
}
