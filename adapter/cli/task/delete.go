package task

import (
	"fmt"

	"github.com/felixgeelhaar/tempo/adapter/cli"
	"github.com/felixgeelhaar/tempo/internal/planning/application/commands"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [task-id]",
	Short: "Delete a task",
	Long: `Delete a task. Deleting a project deletes its intervals. Deleting an
interval recomputes its project, and the project goes once it has no
intervals left.

Examples:
  tempo task delete a1b2c3d4`,
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.DeleteTaskHandler == nil {
			return cli.ErrNotInitialized
		}
		ctx := cmd.Context()

		id, err := cli.ResolveTaskID(ctx, app, args[0])
		if err != nil {
			return err
		}
		result, err := app.DeleteTaskHandler.Handle(ctx, commands.DeleteTaskCommand{
			UserID: app.CurrentUserID,
			TaskID: id,
		})
		if err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, map[string]any{"deleted": result.Deleted})
		}
		fmt.Fprintf(out, "%s %d task(s)\n", cli.Success("Deleted"), len(result.Deleted))
		if result.Parent != nil {
			fmt.Fprintf(out, "  project %s now %s\n", result.Parent.Title, domain.FormatMinutes(result.Parent.EstimatedMinutes))
		}
		return nil
	},
}
