package schedule

import (
	"fmt"

	"github.com/felixgeelhaar/tempo/adapter/cli"
	"github.com/felixgeelhaar/tempo/internal/planning/application/queries"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/spf13/cobra"
)

var (
	showDate string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the plan for a day",
	Long: `Display timed and untimed tasks, free windows and the day's load.

Examples:
  tempo schedule show
  tempo schedule show --date tomorrow`,
	Aliases: []string{"today", "day"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetDayPlanHandler == nil {
			return cli.ErrNotInitialized
		}

		date, err := cli.ParseDateArg(showDate, app.Today())
		if err != nil {
			return err
		}
		plan, err := app.GetDayPlanHandler.Handle(cmd.Context(), queries.GetDayPlanQuery{
			UserID: app.CurrentUserID,
			Date:   date,
		})
		if err != nil {
			return fmt.Errorf("failed to get day plan: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, plan)
		}

		fmt.Fprintf(out, "%s\n", cli.Header("Plan for "+date.Format("Monday, January 2, 2006")))
		if !plan.IsWorkday {
			fmt.Fprintln(out, cli.Muted("  not a work day"))
		} else {
			fmt.Fprintf(out, "%s\n", cli.Muted(fmt.Sprintf("  work hours %s-%s", plan.WorkStart, plan.WorkEnd)))
		}
		cli.Rule(out)

		if len(plan.Timed)+len(plan.Untimed)+len(plan.Completed) == 0 {
			fmt.Fprintln(out, "  Nothing planned.")
			fmt.Fprintln(out, cli.Muted("  Use 'tempo schedule auto' to pack open tasks into the day."))
		}
		for _, t := range plan.Timed {
			fmt.Fprintln(out, "  "+cli.FormatTask(t))
		}
		if len(plan.Untimed) > 0 {
			fmt.Fprintln(out, cli.Header("Anytime"))
			for _, t := range plan.Untimed {
				fmt.Fprintln(out, "  "+cli.FormatTask(t))
			}
		}
		if len(plan.Completed) > 0 {
			fmt.Fprintln(out, cli.Header("Done"))
			for _, t := range plan.Completed {
				fmt.Fprintln(out, "  "+cli.FormatTask(t))
			}
		}
		if len(plan.FreeWindows) > 0 {
			fmt.Fprintln(out, cli.Header("Free"))
			for _, w := range plan.FreeWindows {
				fmt.Fprintf(out, "  %s-%s  %s\n", w.Start, w.End, domain.FormatMinutes(w.Minutes))
			}
		}
		for _, c := range plan.Conflicts {
			fmt.Fprintf(out, "%s %s overlaps %d task(s)\n", cli.Warn("conflict:"), c.Title, len(c.With))
		}

		cli.Rule(out)
		load := fmt.Sprintf("Committed %s of %s (%.0f%%), %s free",
			domain.FormatMinutes(plan.CommittedMinutes),
			domain.FormatMinutes(plan.TotalMinutes),
			plan.Utilization*100,
			domain.FormatMinutes(plan.FreeMinutes))
		if plan.Overloaded() {
			load = cli.Warn(load + " - overloaded")
		}
		fmt.Fprintln(out, load)
		return nil
	},
}

func init() {
	showCmd.Flags().StringVarP(&showDate, "date", "d", "", "date to show (YYYY-MM-DD, today, tomorrow, +N)")
}
