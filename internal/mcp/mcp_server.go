// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/testpulse/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the TestPulse MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"TestPulse Risk Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: calculate_risk_scores ---
	s.AddTool(mcp.NewTool("calculate_risk_scores",
		mcp.WithDescription("Score every catalog test case by failure risk using its execution history."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleCalculateRiskScores)

	// --- 2. Tool: select_tests_for_code_changes ---
	s.AddTool(mcp.NewTool("select_tests_for_code_changes",
		mcp.WithDescription("Select the tests most likely affected by a set of changed files."),
		mcp.WithArray("changed_files", mcp.Description("Changed file paths. A comma-separated string is also accepted."), mcp.WithStringItems(), mcp.Required()),
	), h.handleSelectTests)

	// --- 3. Tool: predict_test_failures ---
	s.AddTool(mcp.NewTool("predict_test_failures",
		mcp.WithDescription("Forecast whether each test case will pass or fail on its next run."),
	), h.handlePredictFailures)

	// --- 4. Tool: optimize_execution_order ---
	s.AddTool(mcp.NewTool("optimize_execution_order",
		mcp.WithDescription("Order test cases so likely failures and fast tests run first."),
		mcp.WithArray("test_ids", mcp.Description("Test case ids to order, as an array or a comma-separated string. Defaults to the whole catalog."), mcp.WithStringItems()),
	), h.handleOptimizeOrder)

	// --- 5. Tool: record_test_execution ---
	s.AddTool(mcp.NewTool("record_test_execution",
		mcp.WithDescription("Record the outcome of one test execution in the history store."),
		mcp.WithString("test_case_id", mcp.Description("Catalog id of the executed test case."), mcp.Required()),
		mcp.WithString("result", mcp.Description("Execution result."), mcp.Enum("passed", "failed", "skipped"), mcp.Required()),
		mcp.WithString("test_name", mcp.Description("Test name at execution time.")),
		mcp.WithNumber("duration", mcp.Description("Wall time in milliseconds.")),
		mcp.WithString("error_type", mcp.Description("Error class of a failed run.")),
		mcp.WithArray("code_changes", mcp.Description("Files changed for this run."), mcp.WithStringItems()),
		mcp.WithString("branch", mcp.Description("VCS branch of the run.")),
	), h.handleRecordExecution)

	return s
}

// StartMCPServer starts the TestPulse MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
