package task

import (
	"fmt"

	"github.com/felixgeelhaar/tempo/adapter/cli"
	"github.com/felixgeelhaar/tempo/internal/planning/application/commands"
	"github.com/spf13/cobra"
)

var deferCmd = &cobra.Command{
	Use:   "defer [task-id...]",
	Short: "Push tasks to the next work day",
	Long: `Move each task to the next work day, keeping its start time.

Tasks are handled one by one; a task that cannot be deferred is
reported and the others still move.

Examples:
  tempo task defer a1b2c3d4 e5f6a7b8`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.DeferTasksHandler == nil {
			return cli.ErrNotInitialized
		}
		ctx := cmd.Context()

		ids, err := cli.ResolveTaskIDs(ctx, app, args)
		if err != nil {
			return err
		}
		result, err := app.DeferTasksHandler.Handle(ctx, commands.DeferTasksCommand{
			UserID:  app.CurrentUserID,
			TaskIDs: ids,
		})
		if err != nil {
			return fmt.Errorf("failed to defer tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, cli.ItemOutputs(result.Items))
		}
		cli.PrintItems(out, "Deferred:", result.Items)
		if failed := commands.Failed(result.Items); len(failed) > 0 {
			return fmt.Errorf("%d of %d tasks not deferred", len(failed), len(result.Items))
		}
		return nil
	},
}
