package main

import (
	"fmt"

	"github.com/knots-cli/knots/internal/mcpserver"
	"github.com/knots-cli/knots/internal/service/analysis"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP (Model Context Protocol) server for LLM tool integration",
	Long: `Starts an MCP server over stdio transport that exposes the knots metrics
as tools an LLM can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "knots": {
        "command": "knots",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_c_complexity    Per-function metrics, test score, totals and top functions
  - testability_matrix      Functions grouped by complexity and test score
  - test_complexity_ratio   Test/source complexity ratio and boundary coverage`,
	RunE: runMCP,
}

var mcpManifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Print the MCP server manifest (server.json)",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := mcpserver.GenerateManifest(version)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpManifestCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	server := mcpserver.NewServer(version, analysis.WithConfig(cfg))
	return server.Run(cmd.Context())
}
