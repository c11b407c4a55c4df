package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common planning workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("daily_planning").
		Description("Plan today: roll over overdue work, pack open tasks into free time and resolve conflicts.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Daily Planning Session", `Help me plan my day. Please:

1. Run schedule.rollover so overdue tasks land on today
2. Read tempo://schedule/today and tempo://tasks/unscheduled
3. Run schedule.auto to pack open tasks into the free windows
4. Read tempo://schedule/today again and point out:
   - conflicts between timed tasks
   - whether the day is overloaded, and by how much
   - tasks that could not be placed

If the day is overloaded, use schedule.check to get deferral suggestions and
ask me before calling task.defer on any of them.`), nil
		})

	srv.Prompt("task_breakdown").
		Description("Create a long task so it is split into intervals across work days.").
		Argument("task_description", "Description of the task to plan", true).
		Argument("minutes", "Total estimated minutes", false).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			desc := args["task_description"]
			if desc == "" {
				desc = "[Please describe the task]"
			}
			minutes := args["minutes"]
			if minutes == "" {
				minutes = "[estimate it with me first]"
			}
			return userPrompt("Task Breakdown", fmt.Sprintf(`I need to plan this task:

**Task:** %s
**Estimated minutes:** %s

Read tempo://config/planner to see the chunk size. If the estimate exceeds it,
task.create will split the task into intervals across work days; tell me how
many intervals to expect and on which days before creating it. Ask whether I
want to cap how many intervals land on today (max_intervals_today).

After creating it, list the intervals with task.list using project_id.`, desc, minutes)), nil
		})

	srv.Prompt("overload_triage").
		Description("Free up an overloaded day by choosing what to defer.").
		Argument("date", "Day to triage (YYYY-MM-DD, today, tomorrow)", false).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			date := args["date"]
			if date == "" {
				date = "today"
			}
			return userPrompt("Overload Triage", fmt.Sprintf(`My plan for %s looks too full.

1. Call schedule.day for %s and report committed versus total minutes
2. Call schedule.check for %s with the overflow as estimated_minutes to get
   the suggested deferrals
3. Present the suggestions, lowest-impact first, with the minutes each frees
4. Defer only the tasks I confirm, using task.defer`, date, date, date)), nil
		})

	return nil
}

func userPrompt(description, text string) *mcp.PromptResult {
	return &mcp.PromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}
}
