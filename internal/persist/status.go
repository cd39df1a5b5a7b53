package persist

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/testpulse/schema"
)

// PrintHistoryStatus prints history store status information.
func PrintHistoryStatus(w io.Writer, status schema.HistoryStatus, now time.Time) {
	_, _ = fmt.Fprintf(w, "History Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Records: %d\n", status.TotalRecords)
	_, _ = fmt.Fprintf(w, "Test Cases Tracked: %d\n", status.TotalTestCases)
	_, _ = fmt.Fprintf(w, "Failed Records: %d\n", status.FailedRecords)
	if status.TotalRecords > 0 {
		_, _ = fmt.Fprintf(w, "Last Execution: %s (%s)\n",
			status.LastExecutionTime.Format("2006-01-02 15:04:05"), humanize.RelTime(status.LastExecutionTime, now, "ago", "from now"))
		_, _ = fmt.Fprintf(w, "Oldest Execution: %s (%s)\n",
			status.OldestExecutionTime.Format("2006-01-02 15:04:05"), humanize.RelTime(status.OldestExecutionTime, now, "ago", "from now"))
	}
	if len(status.TableSizes) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "  %s: %s rows\n", table, humanize.Comma(status.TableSizes[table]))
	}
}
