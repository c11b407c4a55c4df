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
	priority  string
	minutes   int
	dueDate   string
	dueTime   string
	quadrant  int
	category  string
	autoPlace bool
	maxToday  int
)

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new task",
	Long: `Create a new task with a title and an estimated duration.

Tasks longer than the chunk size (45 minutes by default) become a project
whose intervals are spread over the following work days.

Examples:
  tempo task create "Review PR" -m 30
  tempo task create "Write report" -m 180 --date tomorrow
  tempo task create "Call bank" -m 15 --date today --time 14:00 -p high
  tempo task create "Inbox zero" -m 20 --auto`,
	Aliases: []string{"add"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateTaskHandler == nil {
			return cli.ErrNotInitialized
		}

		createCmd := commands.CreateTaskCommand{
			UserID:            app.CurrentUserID,
			Title:             args[0],
			EstimatedMinutes:  minutes,
			Priority:          priority,
			Quadrant:          quadrant,
			Category:          category,
			AutoPlace:         autoPlace,
			MaxIntervalsToday: maxToday,
		}

		if dueDate != "" || dueTime != "" {
			d, err := cli.ParseDateArg(dueDate, app.Today())
			if err != nil {
				return err
			}
			createCmd.DueDate = &d
		}
		tm, err := cli.ParseTimeArg(dueTime)
		if err != nil {
			return err
		}
		createCmd.DueTime = tm

		result, err := app.CreateTaskHandler.Handle(cmd.Context(), createCmd)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, createOutput(result))
		}

		if result.Split() {
			fmt.Fprintf(out, "%s %s split into %d intervals\n",
				cli.Success("Project created:"), result.Task.Title, len(result.Intervals))
			for _, iv := range result.Intervals {
				fmt.Fprintf(out, "  %s\n", cli.FormatTask(queries.ToDTO(iv)))
			}
			return nil
		}

		fmt.Fprintf(out, "%s %s\n", cli.Success("Task created:"), cli.FormatTask(queries.ToDTO(result.Task)))
		if result.Slot != nil && !result.Slot.Found {
			fmt.Fprintln(out, cli.Warn("  no free slot left today, task stays untimed"))
		}
		return nil
	},
}

type createResult struct {
	Task      queries.TaskDTO   `json:"task"`
	Intervals []queries.TaskDTO `json:"intervals,omitempty"`
	Placed    *bool             `json:"placed,omitempty"`
}

func createOutput(r *commands.CreateTaskResult) createResult {
	out := createResult{
		Task:      queries.ToDTO(r.Task),
		Intervals: queries.ToDTOs(r.Intervals),
	}
	if r.Slot != nil {
		placed := r.Slot.Found
		out.Placed = &placed
	}
	return out
}

func init() {
	createCmd.Flags().IntVarP(&minutes, "minutes", "m", 30, "estimated duration in minutes")
	createCmd.Flags().StringVarP(&priority, "priority", "p", "", "task priority (normal, high, urgent)")
	createCmd.Flags().StringVarP(&dueDate, "date", "d", "", "due date (YYYY-MM-DD, today, tomorrow, +N)")
	createCmd.Flags().StringVarP(&dueTime, "time", "t", "", "start time (HH:MM)")
	createCmd.Flags().IntVarP(&quadrant, "quadrant", "q", domain.DefaultQuadrant, "Eisenhower quadrant (1-4)")
	createCmd.Flags().StringVar(&category, "category", "", "category used to rank deferrals")
	createCmd.Flags().BoolVar(&autoPlace, "auto", false, "place an untimed task due today into the next free slot")
	createCmd.Flags().IntVar(&maxToday, "max-today", 0, "cap intervals placed on today when splitting")
}
