package schedule

import (
	"fmt"

	"github.com/felixgeelhaar/tempo/adapter/cli"
	"github.com/felixgeelhaar/tempo/internal/planning/application/commands"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/spf13/cobra"
)

var rolloverCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Move overdue open tasks onto today",
	Long: `Move open tasks from past days onto today, untimed, so they can be
packed again. Runs at most once a day; the worker does this on a schedule.`,
	Aliases: []string{"reschedule-missed"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RolloverHandler == nil {
			return cli.ErrNotInitialized
		}

		result, err := app.RolloverHandler.Handle(cmd.Context(), commands.RolloverCommand{
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("failed to roll over tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, map[string]any{
				"date":    domain.FormatDate(result.Date),
				"skipped": result.Skipped,
				"items":   cli.ItemOutputs(result.Items),
			})
		}
		if result.Skipped {
			fmt.Fprintln(out, cli.Muted("Already rolled over today."))
			return nil
		}
		if len(result.Items) == 0 {
			fmt.Fprintln(out, cli.Muted("No overdue tasks."))
			return nil
		}
		cli.PrintItems(out, "Moved:", result.Items)
		return nil
	},
}
