package cmd

import (
	"github.com/huangsam/testpulse/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the TestPulse MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents score, select, predict,
order and record tests via standard tools.

Logs go to stderr so they never mix with the protocol on stdout.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
