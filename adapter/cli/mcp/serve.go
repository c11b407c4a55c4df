package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/tempo/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/tempo/internal/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start an MCP server over HTTP exposing the task and schedule tools.

The listen address comes from MCP_ADDR. Set MCP_AUTH_TOKEN to require a
bearer token on every request.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Config == nil {
			return cli.ErrNotInitialized
		}

		err := mcpinternal.Serve(cmd.Context(), app.Config, app, cli.Logger())
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
