package schedule

import (
	"fmt"

	"github.com/felixgeelhaar/tempo/adapter/cli"
	"github.com/felixgeelhaar/tempo/internal/planning/application/queries"
	"github.com/spf13/cobra"
)

var (
	nextDate    string
	nextMinutes int
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Find the next free slot",
	Long: `Find the earliest start today (or on --date) for a task of the given
length, after the latest committed task plus the buffer.

Examples:
  tempo schedule next -m 30`,
	Aliases: []string{"available", "slot"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.FindNextSlotHandler == nil {
			return cli.ErrNotInitialized
		}

		date, err := cli.ParseDateArg(nextDate, app.Today())
		if err != nil {
			return err
		}
		slot, err := app.FindNextSlotHandler.Handle(cmd.Context(), queries.FindNextSlotQuery{
			UserID:           app.CurrentUserID,
			EstimatedMinutes: nextMinutes,
			Date:             date,
		})
		if err != nil {
			return fmt.Errorf("failed to find a slot: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, slot)
		}
		if !slot.Found {
			fmt.Fprintf(out, "%s on %s\n", cli.Warn("No free slot"), slot.Date)
			return nil
		}
		fmt.Fprintf(out, "%s %s %s-%s\n", cli.Success("Next slot:"), slot.Date, slot.Start, slot.End)
		return nil
	},
}

func init() {
	nextCmd.Flags().StringVarP(&nextDate, "date", "d", "", "day to search")
	nextCmd.Flags().IntVarP(&nextMinutes, "minutes", "m", 30, "duration in minutes")
}
