package task

import (
	"fmt"

	"github.com/felixgeelhaar/tempo/adapter/cli"
	"github.com/felixgeelhaar/tempo/internal/planning/application/commands"
	"github.com/felixgeelhaar/tempo/internal/planning/application/queries"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/spf13/cobra"
)

var (
	moveDate   string
	moveTime   string
	moveStrict bool
)

var moveCmd = &cobra.Command{
	Use:   "move [task-id]",
	Short: "Place a task on a date and time",
	Long: `Move a task to a date, optionally at a start time.

Overlaps and day overload are reported; with --strict the move is
refused while any conflict remains.

Examples:
  tempo task move a1b2c3d4 --date tomorrow
  tempo task move a1b2c3d4 --date 2025-03-04 --time 10:30 --strict`,
	Aliases: []string{"schedule", "reschedule"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ScheduleTaskHandler == nil {
			return cli.ErrNotInitialized
		}
		ctx := cmd.Context()

		id, err := cli.ResolveTaskID(ctx, app, args[0])
		if err != nil {
			return err
		}
		date, err := cli.ParseDateArg(moveDate, app.Today())
		if err != nil {
			return err
		}
		tm, err := cli.ParseTimeArg(moveTime)
		if err != nil {
			return err
		}

		result, err := app.ScheduleTaskHandler.Handle(ctx, commands.ScheduleTaskCommand{
			UserID:            app.CurrentUserID,
			TaskID:            id,
			Date:              date,
			Time:              tm,
			RequireNoConflict: moveStrict,
		})
		if err != nil {
			return fmt.Errorf("failed to move task: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, map[string]any{
				"task":      queries.ToDTO(result.Task),
				"committed": result.Committed,
				"overlaps":  queries.ToDTOs(result.Overlaps),
				"deficit":   result.Overload.Deficit,
			})
		}

		if result.Committed {
			fmt.Fprintf(out, "%s %s\n", cli.Success("Moved:"), cli.FormatTask(queries.ToDTO(result.Task)))
		} else {
			fmt.Fprintf(out, "%s %s\n", cli.Failure("Not moved:"), result.Task.Title)
		}
		printConflicts(cmd, result)
		if !result.Committed {
			return fmt.Errorf("placement conflicts with the existing plan")
		}
		return nil
	},
}

func printConflicts(cmd *cobra.Command, r *commands.ScheduleTaskResult) {
	out := cmd.OutOrStdout()
	for _, o := range r.Overlaps {
		fmt.Fprintf(out, "  %s %s\n", cli.Warn("overlaps"), cli.FormatTask(queries.ToDTO(o)))
	}
	if r.Overload.Overloaded() {
		fmt.Fprintf(out, "  %s day needs %s more than it has free\n",
			cli.Warn("overloaded:"), domain.FormatMinutes(r.Overload.Deficit))
	}
	if r.Deferrals != nil && len(r.Deferrals.Tasks) > 0 {
		fmt.Fprintf(out, "  suggest deferring to %s:\n", domain.FormatDate(r.Deferrals.TargetDate))
		for _, t := range r.Deferrals.Tasks {
			fmt.Fprintf(out, "    %s\n", cli.FormatTask(queries.ToDTO(t)))
		}
	}
}

func init() {
	moveCmd.Flags().StringVarP(&moveDate, "date", "d", "today", "target date (YYYY-MM-DD, today, tomorrow, +N)")
	moveCmd.Flags().StringVarP(&moveTime, "time", "t", "", "start time (HH:MM); empty leaves the task untimed")
	moveCmd.Flags().BoolVar(&moveStrict, "strict", false, "refuse the move when it conflicts")
}
