package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/testpulse/core"
	"github.com/huangsam/testpulse/internal/contract"
	"github.com/huangsam/testpulse/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// jsonResult wraps a value as an indented JSON text result.
func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

// cleanList trims every entry and drops blanks.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// listArgument reads a list argument sent either as a string array or as one comma-separated string.
func listArgument(request mcp.CallToolRequest, name string) []string {
	if s, ok := request.GetArguments()[name].(string); ok {
		return schema.SplitList(s)
	}
	return cleanList(request.GetStringSlice(name, nil))
}

func (h *toolHandler) handleCalculateRiskScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = min(l, contract.MaxResultLimit)
	}

	scores, _, err := core.GetRiskScoreResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("risk scoring failed: %v", err)), nil
	}
	return jsonResult(schema.EnrichRiskScores(scores)), nil
}

func (h *toolHandler) handleSelectTests(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.ChangedFiles = listArgument(request, "changed_files")
	if len(cfg.ChangedFiles) == 0 {
		return mcp.NewToolResultError("changed_files must contain at least one path"), nil
	}

	impact, err := core.GetImpactResults(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("test selection failed: %v", err)), nil
	}
	return jsonResult(impact), nil
}

func (h *toolHandler) handlePredictFailures(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	preds, err := core.GetPredictionResults(ctx, h.baseCfg.Clone(), h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("prediction failed: %v", err)), nil
	}
	return jsonResult(preds), nil
}

func (h *toolHandler) handleOptimizeOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if ids := listArgument(request, "test_ids"); len(ids) > 0 {
		cfg.TestIDs = ids
	}

	order, err := core.GetOrderResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ordering failed: %v", err)), nil
	}
	return jsonResult(order), nil
}

func (h *toolHandler) handleRecordExecution(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := schema.ExecutionInput{
		TestCaseID:         request.GetString("test_case_id", ""),
		TestName:           request.GetString("test_name", ""),
		Result:             schema.Result(request.GetString("result", "")),
		Duration:           int64(request.GetInt("duration", 0)),
		ErrorType:          request.GetString("error_type", ""),
		CodeChangesTouched: listArgument(request, "code_changes"),
		BranchName:         request.GetString("branch", ""),
	}
	if r, err := schema.ParseResult(string(in.Result)); err == nil {
		in.Result = r
	}

	rec, err := core.RecordExecution(h.baseCfg.Clone(), h.mgr, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recording failed: %v", err)), nil
	}
	return jsonResult(rec), nil
}
