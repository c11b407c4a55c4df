package mcp

import "github.com/spf13/cobra"

// Cmd is the MCP command group.
var Cmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the planner to MCP clients",
}

func init() {
	Cmd.AddCommand(serveCmd)
}
