package task

import (
	"fmt"

	"github.com/felixgeelhaar/tempo/adapter/cli"
	"github.com/felixgeelhaar/tempo/internal/planning/application/commands"
	"github.com/felixgeelhaar/tempo/internal/planning/application/queries"
	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:   "complete [task-id]",
	Short: "Toggle a task's completion",
	Long: `Mark a task completed, or reopen it when it already is.

Completing the last open interval of a project completes the project;
reopening an interval reopens it.

Examples:
  tempo task complete a1b2c3d4`,
	Aliases: []string{"done", "toggle"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ToggleCompletionHandler == nil {
			return cli.ErrNotInitialized
		}
		ctx := cmd.Context()

		id, err := cli.ResolveTaskID(ctx, app, args[0])
		if err != nil {
			return err
		}
		result, err := app.ToggleCompletionHandler.Handle(ctx, commands.ToggleCompletionCommand{
			UserID: app.CurrentUserID,
			TaskID: id,
		})
		if err != nil {
			return fmt.Errorf("failed to toggle task: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			payload := map[string]any{"task": queries.ToDTO(result.Task)}
			if result.Parent != nil {
				payload["parent"] = queries.ToDTO(*result.Parent)
			}
			return cli.PrintJSON(out, payload)
		}

		verb := "Reopened:"
		if result.Task.IsCompleted {
			verb = "Completed:"
		}
		fmt.Fprintf(out, "%s %s\n", cli.Success(verb), result.Task.Title)
		if result.Parent != nil {
			state := "reopened"
			if result.Parent.IsCompleted {
				state = "completed"
			}
			fmt.Fprintf(out, "  project %s %s\n", result.Parent.Title, state)
		}
		return nil
	},
}
