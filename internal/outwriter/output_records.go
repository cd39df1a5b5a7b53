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

var recordHeader = []string{"id", "test_case_id", "test_name", "execution_date", "result", "duration_ms", "error_type", "code_changes", "branch"}

// WriteRecords outputs stored executions, e.g. after a record or ingest command.
func WriteRecords(records []schema.ExecutionRecord, cfg *contract.Config) error {
	return writeByFormat(cfg,
		func() any { return records },
		recordHeader,
		func() [][]string { return recordRows(records) },
		func(w io.Writer) error { return writeRecordsTable(w, records, cfg) },
	)
}

func recordRows(records []schema.ExecutionRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.ID,
			r.TestCaseID,
			r.TestName,
			r.ExecutionDate.Format(contract.DateTimeFormat),
			string(r.Result),
			strconv.FormatInt(r.Duration, 10),
			r.ErrorType,
			strings.Join(r.CodeChangesTouched, "|"),
			r.BranchName,
		})
	}
	return rows
}

func writeRecordsTable(w io.Writer, records []schema.ExecutionRecord, cfg *contract.Config) error {
	header := []string{"Test Case", "Date", "Result", "Duration", "Error"}
	data := make([][]string, 0, len(records))
	failed := 0
	for _, r := range records {
		result := strings.ToUpper(string(r.Result))
		if r.IsFailure() {
			failed++
			if cfg.UseColors {
				result = contract.CriticalColor.Sprint(result)
			}
		}
		data = append(data, []string{
			r.TestCaseID,
			r.ExecutionDate.Format(contract.DateTimeFormat),
			result,
			formatMillis(r.Duration),
			r.ErrorType,
		})
	}
	if err := renderTable(w, header, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Recorded %s executions (%s failed). History backend: %s\n",
		humanize.Comma(int64(len(records))), humanize.Comma(int64(failed)), cfg.HistoryBackend)
	return err
}

// WriteHistoryStatus outputs the history store status as JSON or CSV.
// The text form lives next to the stores in the persist package.
func WriteHistoryStatus(status schema.HistoryStatus, cfg *contract.Config) error {
	formatTime := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(contract.DateTimeFormat)
	}
	return writeByFormat(cfg,
		func() any { return status },
		[]string{"backend", "connected", "total_records", "total_test_cases", "failed_records", "last_execution_time", "oldest_execution_time"},
		func() [][]string {
			return [][]string{{
				status.Backend,
				strconv.FormatBool(status.Connected),
				strconv.Itoa(status.TotalRecords),
				strconv.Itoa(status.TotalTestCases),
				strconv.Itoa(status.FailedRecords),
				formatTime(status.LastExecutionTime),
				formatTime(status.OldestExecutionTime),
			}}
		},
		func(w io.Writer) error { return writeJSON(w, status) },
	)
}
