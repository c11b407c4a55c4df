package schedule

import (
	"fmt"

	"github.com/felixgeelhaar/tempo/adapter/cli"
	"github.com/felixgeelhaar/tempo/internal/planning/application/queries"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/spf13/cobra"
)

var (
	checkDate    string
	checkTime    string
	checkMinutes int
	checkTask    string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check a placement for conflicts",
	Long: `Report overlaps and day overload for a prospective placement, with a
suggestion of what to defer when the day is too full. Nothing is written.

Examples:
  tempo schedule check --time 10:00 -m 60
  tempo schedule check --date tomorrow -m 240
  tempo schedule check --task a1b2c3d4 --time 14:00`,
	Aliases: []string{"conflicts"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CheckConflictsHandler == nil {
			return cli.ErrNotInitialized
		}
		ctx := cmd.Context()

		date, err := cli.ParseDateArg(checkDate, app.Today())
		if err != nil {
			return err
		}
		tm, err := cli.ParseTimeArg(checkTime)
		if err != nil {
			return err
		}
		query := queries.CheckConflictsQuery{
			UserID:           app.CurrentUserID,
			Date:             date,
			Time:             tm,
			EstimatedMinutes: checkMinutes,
		}
		if checkTask != "" {
			id, err := cli.ResolveTaskID(ctx, app, checkTask)
			if err != nil {
				return err
			}
			query.TaskID = &id
			if query.EstimatedMinutes <= 0 {
				task, err := cli.FindTask(ctx, app, id)
				if err != nil {
					return err
				}
				query.EstimatedMinutes = task.EstimatedMinutes
			}
		}

		report, err := app.CheckConflictsHandler.Handle(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to check conflicts: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, report)
		}

		if !report.HasConflicts() {
			fmt.Fprintf(out, "%s %s free of %s on %s\n", cli.Success("No conflicts:"),
				domain.FormatMinutes(report.AvailableMinutes),
				domain.FormatMinutes(report.TotalMinutes), report.Date)
			return nil
		}
		for _, t := range report.Overlaps {
			fmt.Fprintf(out, "%s %s\n", cli.Warn("overlaps"), cli.FormatTask(t))
		}
		if report.Overloaded {
			fmt.Fprintf(out, "%s needs %s, %s free (short %s)\n", cli.Warn("overloaded:"),
				domain.FormatMinutes(report.RequiredMinutes),
				domain.FormatMinutes(report.AvailableMinutes),
				domain.FormatMinutes(report.Deficit))
		}
		if d := report.Deferral; d != nil && len(d.Tasks) > 0 {
			fmt.Fprintf(out, "Defer to %s to free %s:\n", d.TargetDate, domain.FormatMinutes(d.FreedMinutes))
			for _, t := range d.Tasks {
				fmt.Fprintln(out, "  "+cli.FormatTask(t))
			}
			if !d.Sufficient {
				fmt.Fprintf(out, "%s still short %s\n", cli.Warn("not enough:"), domain.FormatMinutes(d.Shortfall))
			}
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVarP(&checkDate, "date", "d", "", "date of the placement")
	checkCmd.Flags().StringVarP(&checkTime, "time", "t", "", "start time (HH:MM)")
	checkCmd.Flags().IntVarP(&checkMinutes, "minutes", "m", 0, "duration in minutes (defaults to the task's)")
	checkCmd.Flags().StringVar(&checkTask, "task", "", "existing task being moved")
}
