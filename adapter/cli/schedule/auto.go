package schedule

import (
	"fmt"

	"github.com/felixgeelhaar/tempo/adapter/cli"
	"github.com/felixgeelhaar/tempo/internal/planning/application/commands"
	"github.com/felixgeelhaar/tempo/internal/planning/application/queries"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/spf13/cobra"
)

var (
	autoDate string
)

var autoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Pack open tasks into the day's free time",
	Long: `Place undated open tasks, and untimed tasks due on the day, into free
windows. Each task goes into the smallest window that still holds it.

Examples:
  tempo schedule auto
  tempo schedule auto --date tomorrow`,
	Aliases: []string{"pack"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.AutoScheduleHandler == nil {
			return cli.ErrNotInitialized
		}

		date, err := cli.ParseDateArg(autoDate, app.Today())
		if err != nil {
			return err
		}
		result, err := app.AutoScheduleHandler.Handle(cmd.Context(), commands.AutoScheduleCommand{
			UserID: app.CurrentUserID,
			Date:   date,
		})
		if err != nil {
			return fmt.Errorf("failed to auto-schedule: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, map[string]any{
				"date":     domain.FormatDate(result.Date),
				"windows":  queries.ToWindowDTOs(result.Windows),
				"items":    cli.ItemOutputs(result.Items),
				"unplaced": queries.ToDTOs(result.Unplaced),
			})
		}

		if len(result.Items) == 0 && len(result.Unplaced) == 0 {
			fmt.Fprintln(out, cli.Muted("Nothing to schedule."))
			return nil
		}
		cli.PrintItems(out, "Placed:", result.Items)
		for _, t := range result.Unplaced {
			fmt.Fprintf(out, "%s %s\n", cli.Warn("No room:"), cli.FormatTask(queries.ToDTO(t)))
		}
		if failed := commands.Failed(result.Items); len(failed) > 0 {
			return fmt.Errorf("%d placement(s) could not be saved", len(failed))
		}
		return nil
	},
}

func init() {
	autoCmd.Flags().StringVarP(&autoDate, "date", "d", "", "day to fill (YYYY-MM-DD, today, tomorrow, +N)")
}
