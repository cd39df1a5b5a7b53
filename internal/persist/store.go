// Package persist stores execution history in SQL databases and manages its lifecycle.
package persist

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/testpulse/internal/contract"
	"github.com/huangsam/testpulse/internal/history"
	"github.com/huangsam/testpulse/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/puzpuzpuz/xsync/v3"
	_ "modernc.org/sqlite" // SQLite driver
)

// historyTable holds one row per retained execution.
const historyTable = "execution_records"

// sqliteTimeLayout is fixed-width so that text comparison matches time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const recordColumns = "execution_id, test_case_id, test_name, execution_date, result, duration_ms, error_type, code_changes, branch_name"

// SQLHistoryStore is a HistoryStore backed by SQLite, MySQL or PostgreSQL.
// Rows are ordered by an auto-increment sequence, which preserves insertion order.
type SQLHistoryStore struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
	locks   *xsync.MapOf[string, *sync.Mutex]
}

var _ contract.HistoryStore = &SQLHistoryStore{} // Compile-time check

// NewHistoryStore opens the history store for a backend. The memory backend
// returns a process-local store.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.MemoryBackend {
		return history.NewMemoryStore(), nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	for _, query := range createTableQueries(backend) {
		if _, err := db.Exec(query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create table %s: %w", historyTable, err)
		}
	}

	return &SQLHistoryStore{
		db:      db,
		backend: backend,
		connStr: connStr,
		locks:   xsync.NewMapOf[string, *sync.Mutex](),
	}, nil
}

// driverName returns the database/sql driver registered for a backend.
func driverName(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "sqlite", nil
	case schema.MySQLBackend:
		return "mysql", nil
	case schema.PostgreSQLBackend:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported history backend: %s. Must be sqlite, mysql, postgresql, or memory", backend)
	}
}

// openDB opens (without pinging) the database for a SQL backend.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	driver, err := driverName(backend)
	if err != nil {
		return nil, err
	}

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetHistoryDBFilePath()
		}
		db, err := sql.Open(driver, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, nil

	case schema.MySQLBackend:
		db, err := sql.Open(driver, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		return db, nil

	default:
		db, err := sql.Open(driver, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
		return db, nil
	}
}

// createTableQueries returns the DDL for the history table, one statement per entry.
func createTableQueries(backend schema.DatabaseBackend) []string {
	table := quoteTableName(historyTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return []string{fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				seq BIGINT AUTO_INCREMENT PRIMARY KEY,
				execution_id VARCHAR(64) NOT NULL UNIQUE,
				test_case_id VARCHAR(255) NOT NULL,
				test_name VARCHAR(512) NOT NULL,
				execution_date DATETIME(6) NOT NULL,
				result VARCHAR(16) NOT NULL,
				duration_ms BIGINT NOT NULL,
				error_type VARCHAR(255) NOT NULL DEFAULT '',
				code_changes TEXT,
				branch_name VARCHAR(255) NOT NULL DEFAULT '',
				INDEX idx_execution_records_test_case (test_case_id, seq)
			)`, table)}

	case schema.PostgreSQLBackend:
		return []string{
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				seq BIGSERIAL PRIMARY KEY,
				execution_id TEXT NOT NULL UNIQUE,
				test_case_id TEXT NOT NULL,
				test_name TEXT NOT NULL,
				execution_date TIMESTAMPTZ NOT NULL,
				result TEXT NOT NULL,
				duration_ms BIGINT NOT NULL,
				error_type TEXT NOT NULL DEFAULT '',
				code_changes TEXT,
				branch_name TEXT NOT NULL DEFAULT ''
			)`, table),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_execution_records_test_case ON %s (test_case_id, seq)`, table),
		}

	default: // SQLite
		return []string{
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				execution_id TEXT NOT NULL UNIQUE,
				test_case_id TEXT NOT NULL,
				test_name TEXT NOT NULL,
				execution_date TEXT NOT NULL,
				result TEXT NOT NULL,
				duration_ms INTEGER NOT NULL,
				error_type TEXT NOT NULL DEFAULT '',
				code_changes TEXT,
				branch_name TEXT NOT NULL DEFAULT ''
			)`, table),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_execution_records_test_case ON %s (test_case_id, seq)`, table),
		}
	}
}

// lockFor returns the mutex serializing appends for one test case.
func (s *SQLHistoryStore) lockFor(testCaseID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrCompute(testCaseID, func() *sync.Mutex { return &sync.Mutex{} })
	return mu
}

// Record inserts one execution and evicts the oldest rows beyond the retention limit,
// both in the same transaction.
func (s *SQLHistoryStore) Record(rec schema.ExecutionRecord) error {
	mu := s.lockFor(rec.TestCaseID)
	mu.Lock()
	defer mu.Unlock()

	changes, err := encodeChanges(rec.CodeChangesTouched)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	table := quoteTableName(historyTable, s.backend)
	insert := s.rebind(fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, table, recordColumns))
	if _, err := tx.Exec(insert,
		rec.ID, rec.TestCaseID, rec.TestName, formatTime(rec.ExecutionDate, s.backend),
		string(rec.Result), rec.Duration, rec.ErrorType, changes, rec.BranchName,
	); err != nil {
		return fmt.Errorf("failed to insert execution %s: %w", rec.ID, err)
	}

	// Find the newest row that falls outside the retention window, then drop it and everything older.
	cutoffQuery := s.rebind(fmt.Sprintf(`SELECT seq FROM %s WHERE test_case_id = ? ORDER BY seq DESC LIMIT 1 OFFSET %d`,
		table, history.MaxRecordsPerTest))
	var cutoff int64
	switch err := tx.QueryRow(cutoffQuery, rec.TestCaseID).Scan(&cutoff); {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("failed to find eviction cutoff for %s: %w", rec.TestCaseID, err)
	default:
		deleteQuery := s.rebind(fmt.Sprintf(`DELETE FROM %s WHERE test_case_id = ? AND seq <= ?`, table))
		if _, err := tx.Exec(deleteQuery, rec.TestCaseID, cutoff); err != nil {
			return fmt.Errorf("failed to evict old executions for %s: %w", rec.TestCaseID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit execution %s: %w", rec.ID, err)
	}
	return nil
}

// Load returns the retained history of a test case, oldest-first.
func (s *SQLHistoryStore) Load(testCaseID string) ([]schema.ExecutionRecord, error) {
	query := s.rebind(fmt.Sprintf(`SELECT %s FROM %s WHERE test_case_id = ? ORDER BY seq`,
		recordColumns, quoteTableName(historyTable, s.backend)))
	return s.queryRecords(query, testCaseID)
}

// LoadAll returns every retained record grouped by test case.
func (s *SQLHistoryStore) LoadAll() ([]schema.ExecutionRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY test_case_id, seq`,
		recordColumns, quoteTableName(historyTable, s.backend))
	return s.queryRecords(query)
}

func (s *SQLHistoryStore) queryRecords(query string, args ...any) ([]schema.ExecutionRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query execution records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ExecutionRecord
	for rows.Next() {
		var (
			rec       schema.ExecutionRecord
			date      any
			result    string
			errorType sql.NullString
			changes   sql.NullString
			branch    sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.TestCaseID, &rec.TestName, &date, &result,
			&rec.Duration, &errorType, &changes, &branch); err != nil {
			return nil, fmt.Errorf("failed to scan execution record: %w", err)
		}
		if rec.ExecutionDate, err = parseDBTime(date); err != nil {
			return nil, fmt.Errorf("invalid execution date for %s: %w", rec.ID, err)
		}
		rec.Result = schema.Result(result)
		rec.ErrorType = errorType.String
		rec.BranchName = branch.String
		if rec.CodeChangesTouched, err = decodeChanges(changes.String); err != nil {
			return nil, fmt.Errorf("invalid code changes for %s: %w", rec.ID, err)
		}
		results = append(results, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating execution records: %w", err)
	}
	return results, nil
}

// GetStatus returns status information about the history store.
func (s *SQLHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:   string(s.backend),
		Connected: s.db != nil,
	}
	if s.db == nil {
		return status, nil
	}

	table := quoteTableName(historyTable, s.backend)
	countQuery := s.rebind(fmt.Sprintf(`SELECT COUNT(*), COUNT(DISTINCT test_case_id),
		COALESCE(SUM(CASE WHEN result = ? THEN 1 ELSE 0 END), 0) FROM %s`, table))
	if err := s.db.QueryRow(countQuery, string(schema.FailedResult)).Scan(
		&status.TotalRecords, &status.TotalTestCases, &status.FailedRecords); err != nil {
		return status, fmt.Errorf("failed to get record counts: %w", err)
	}
	status.TableSizes = map[string]int64{historyTable: int64(status.TotalRecords)}
	if status.TotalRecords == 0 {
		return status, nil
	}

	var newest, oldest any
	rangeQuery := fmt.Sprintf(`SELECT MAX(execution_date), MIN(execution_date) FROM %s`, table)
	if err := s.db.QueryRow(rangeQuery).Scan(&newest, &oldest); err != nil {
		return status, fmt.Errorf("failed to get execution time range: %w", err)
	}
	var err error
	if status.LastExecutionTime, err = parseDBTime(newest); err != nil {
		return status, err
	}
	if status.OldestExecutionTime, err = parseDBTime(oldest); err != nil {
		return status, err
	}
	return status, nil
}

// Close closes the underlying DB connection.
func (s *SQLHistoryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// rebind rewrites '?' placeholders into '$N' for PostgreSQL.
func (s *SQLHistoryStore) rebind(query string) string {
	if s.backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(sqliteTimeLayout)
	default:
		return t.UTC()
	}
}

// dbTimeLayouts covers SQLite text and MySQL DATETIME without parseTime.
var dbTimeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999", "2006-01-02 15:04:05"}

// parseDBTime converts whatever the driver returned for a timestamp column into UTC time.
func parseDBTime(v any) (time.Time, error) {
	var s string
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return t.UTC(), nil
	case []byte:
		s = string(t)
	case string:
		s = t
	default:
		return time.Time{}, fmt.Errorf("unsupported time value %T", v)
	}
	for _, layout := range dbTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format %q", s)
}

func encodeChanges(files []string) (string, error) {
	if len(files) == 0 {
		return "", nil
	}
	data, err := json.Marshal(files)
	if err != nil {
		return "", fmt.Errorf("failed to encode code changes: %w", err)
	}
	return string(data), nil
}

func decodeChanges(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var files []string
	if err := json.Unmarshal([]byte(s), &files); err != nil {
		return nil, err
	}
	return files, nil
}
