package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/testpulse/internal/contract"
	"github.com/huangsam/testpulse/schema"
)

const orderFixedColumns = 65

var orderHeader = []string{"position", "test_case_id", "test_name", "priority", "estimated_duration_ms", "failure_probability", "reason"}

// WriteOrder outputs an optimal execution order with its timing projections.
func WriteOrder(order schema.OptimalOrder, cfg *contract.Config, duration time.Duration) error {
	return writeByFormat(cfg,
		func() any { return order },
		orderHeader,
		func() [][]string { return orderRows(order.OrderedTests, 0, rawMillis) },
		func(w io.Writer) error { return writeOrderTable(w, order, cfg, duration) },
	)
}

func rawMillis(ms int64) string { return strconv.FormatInt(ms, 10) }

func orderRows(tests []schema.OrderedTest, nameWidth int, fmtMillis func(int64) string) [][]string {
	rows := make([][]string, 0, len(tests))
	for i, t := range tests {
		name := t.TestName
		if nameWidth > 0 {
			name = contract.TruncateText(name, nameWidth)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			t.TestCaseID,
			name,
			strconv.Itoa(t.Priority),
			fmtMillis(t.EstimatedDuration),
			strconv.Itoa(t.FailureProbability),
			t.Reason,
		})
	}
	return rows
}

func writeOrderTable(w io.Writer, order schema.OptimalOrder, cfg *contract.Config, duration time.Duration) error {
	header := []string{"#", "ID", "Name", "Priority", "Est. Time", "Fail%", "Reason"}
	rows := orderRows(order.OrderedTests, GetMaxTableNameWidth(cfg, orderFixedColumns), formatMillis)
	if err := renderTable(w, header, rows); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Estimated total time: %s, expected failure detection: %s\n",
		formatMillis(order.EstimatedTotalTime), formatMillis(order.ExpectedFailureDetectionTime)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Ordered %d tests in %v\n", len(order.OrderedTests), duration)
	return err
}
