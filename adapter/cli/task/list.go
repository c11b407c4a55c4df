package task

import (
	"fmt"

	"github.com/felixgeelhaar/tempo/adapter/cli"
	"github.com/felixgeelhaar/tempo/internal/planning/application/queries"
	"github.com/spf13/cobra"
)

var (
	status       string
	listDate     string
	unscheduled  bool
	projectID    string
	hideProjects bool
	limit        int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks ordered by date, then time.

Examples:
  tempo task list                     # Open tasks
  tempo task list --status all        # Everything
  tempo task list --date today        # Due today
  tempo task list --unscheduled       # No date yet
  tempo task list --project a1b2c3d4  # Intervals of one project`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListTasksHandler == nil {
			return cli.ErrNotInitialized
		}
		ctx := cmd.Context()

		query := queries.ListTasksQuery{
			UserID:       app.CurrentUserID,
			Status:       status,
			Unscheduled:  unscheduled,
			HideProjects: hideProjects,
			Limit:        limit,
		}
		if listDate != "" {
			d, err := cli.ParseDateArg(listDate, app.Today())
			if err != nil {
				return err
			}
			query.Date = &d
		}
		if projectID != "" {
			id, err := cli.ResolveTaskID(ctx, app, projectID)
			if err != nil {
				return err
			}
			query.ParentID = &id
		}

		tasks, err := app.ListTasksHandler.Handle(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, tasks)
		}
		if len(tasks) == 0 {
			fmt.Fprintln(out, cli.Muted("No tasks found."))
			return nil
		}

		lastDate := "-"
		for _, t := range tasks {
			if t.DueDate != lastDate {
				label := t.DueDate
				if label == "" {
					label = "unscheduled"
				}
				fmt.Fprintln(out, cli.Header(label))
				lastDate = t.DueDate
			}
			indent := "  "
			if t.ParentTaskID != nil {
				indent = "    "
			}
			fmt.Fprintln(out, indent+cli.FormatTask(t))
		}
		cli.Rule(out)
		fmt.Fprintf(out, "%d task(s)\n", len(tasks))
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&status, "status", "s", queries.StatusOpen, "open, completed or all")
	listCmd.Flags().StringVarP(&listDate, "date", "d", "", "only tasks due on this date")
	listCmd.Flags().BoolVar(&unscheduled, "unscheduled", false, "only tasks without a date")
	listCmd.Flags().StringVar(&projectID, "project", "", "only the intervals of this project")
	listCmd.Flags().BoolVar(&hideProjects, "hide-projects", false, "hide project placeholders")
	listCmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of tasks")
}
