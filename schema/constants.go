package schema

// Custom string types for type safety.
type (
	// BreakdownKey represents keys used in scoring breakdowns.
	BreakdownKey string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for history storage.
	DatabaseBackend string

	// TestType represents the category of a test case.
	TestType string

	// Priority represents the declared priority of a test case.
	Priority string

	// Result represents the outcome of a single execution.
	Result string

	// RiskLevel represents the category derived from a risk score.
	RiskLevel string

	// Outcome represents a predicted next-run outcome.
	Outcome string
)

// Breakdown keys used in the risk scoring logic.
const (
	BreakdownFailureRate BreakdownKey = "failure_rate" // historicalFailureRate
	BreakdownRecency     BreakdownKey = "recency"      // lastFailureRecency
	BreakdownComplexity  BreakdownKey = "complexity"   // complexity
	BreakdownDependency  BreakdownKey = "dependency"   // dependencyWeight
	BreakdownChanges     BreakdownKey = "changes"      // recentChangesImpact
)

// AllBreakdownKeys lists the risk factors in formula order.
var AllBreakdownKeys = []BreakdownKey{
	BreakdownFailureRate,
	BreakdownRecency,
	BreakdownComplexity,
	BreakdownDependency,
	BreakdownChanges,
}

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	MemoryBackend     DatabaseBackend = "memory"
)

// Known test types. Any other value is accepted and scored with default weights.
const (
	UnitTest        TestType = "unit"
	IntegrationTest TestType = "integration"
	E2ETest         TestType = "e2e"
	PerformanceTest TestType = "performance"
	SecurityTest    TestType = "security"
)

// Declared priorities.
const (
	HighPriority   Priority = "high"
	MediumPriority Priority = "medium"
	LowPriority    Priority = "low"
)

// Execution results.
const (
	PassedResult  Result = "passed"
	FailedResult  Result = "failed"
	SkippedResult Result = "skipped"
)

// Risk levels, from most to least urgent.
const (
	CriticalRisk RiskLevel = "critical"
	HighRisk     RiskLevel = "high"
	MediumRisk   RiskLevel = "medium"
	LowRisk      RiskLevel = "low"
)

// Predicted outcomes.
const (
	PassOutcome Outcome = "pass"
	FailOutcome Outcome = "fail"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	MemoryBackend:     {},
}

// ValidResults lists all valid execution results.
var ValidResults = map[Result]struct{}{
	PassedResult:  {},
	FailedResult:  {},
	SkippedResult: {},
}

// GetDefaultWeights returns the default weight of each risk factor.
// The values are uncalibrated tuning constants and may be overridden via config.
func GetDefaultWeights() map[BreakdownKey]float64 {
	return map[BreakdownKey]float64{
		BreakdownFailureRate: 0.30,
		BreakdownRecency:     0.20,
		BreakdownComplexity:  0.20,
		BreakdownDependency:  0.15,
		BreakdownChanges:     0.15,
	}
}
