package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/tempo/adapter/cli"
	"github.com/felixgeelhaar/tempo/internal/planning/application/commands"
	"github.com/felixgeelhaar/tempo/internal/planning/application/queries"
)

type taskCreateInput struct {
	Title             string `json:"title" jsonschema:"required"`
	EstimatedMinutes  int    `json:"estimated_minutes" jsonschema:"required"`
	DueDate           string `json:"due_date,omitempty"`
	DueTime           string `json:"due_time,omitempty"`
	Priority          string `json:"priority,omitempty"`
	Quadrant          int    `json:"quadrant,omitempty"`
	Category          string `json:"category,omitempty"`
	AutoPlace         bool   `json:"auto_place,omitempty"`
	MaxIntervalsToday int    `json:"max_intervals_today,omitempty"`
}

type taskCreateOutput struct {
	Task      queries.TaskDTO   `json:"task"`
	Intervals []queries.TaskDTO `json:"intervals,omitempty"`
	Placed    *bool             `json:"placed,omitempty"`
}

type taskListInput struct {
	Status       string `json:"status,omitempty"`
	Date         string `json:"date,omitempty"`
	Unscheduled  bool   `json:"unscheduled,omitempty"`
	ProjectID    string `json:"project_id,omitempty"`
	HideProjects bool   `json:"hide_projects,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

type taskIDInput struct {
	TaskID string `json:"task_id" jsonschema:"required"`
}

type taskToggleOutput struct {
	Task   queries.TaskDTO  `json:"task"`
	Parent *queries.TaskDTO `json:"parent,omitempty"`
}

type taskMoveInput struct {
	TaskID string `json:"task_id" jsonschema:"required"`
	Date   string `json:"date" jsonschema:"required"`
	Time   string `json:"time,omitempty"`
	Strict bool   `json:"strict,omitempty"`
}

type taskMoveOutput struct {
	Task      queries.TaskDTO   `json:"task"`
	Committed bool              `json:"committed"`
	Overlaps  []queries.TaskDTO `json:"overlaps"`
	Deficit   int               `json:"deficit"`
	Deferrals []queries.TaskDTO `json:"suggested_deferrals,omitempty"`
}

type taskDeferInput struct {
	TaskIDs []string `json:"task_ids" jsonschema:"required"`
}

type taskDeleteOutput struct {
	Deleted []string         `json:"deleted"`
	Parent  *queries.TaskDTO `json:"parent,omitempty"`
}

func registerTaskTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("task.create").
		Description("Create a task. Tasks longer than the chunk size are split into intervals across work days.").
		Handler(func(ctx context.Context, input taskCreateInput) (*taskCreateOutput, error) {
			return createTask(ctx, app, input)
		})

	srv.Tool("task.list").
		Description("List tasks ordered by date and time. status is open (default), completed or all.").
		Handler(func(ctx context.Context, input taskListInput) ([]queries.TaskDTO, error) {
			return listTasks(ctx, app, input)
		})

	srv.Tool("task.toggle").
		Description("Toggle a task's completion. A project completes when all its intervals are done.").
		Handler(func(ctx context.Context, input taskIDInput) (*taskToggleOutput, error) {
			return toggleTask(ctx, app, input)
		})

	srv.Tool("task.move").
		Description("Place a task on a date, optionally at a time, reporting overlaps and overload").
		Handler(func(ctx context.Context, input taskMoveInput) (*taskMoveOutput, error) {
			return moveTask(ctx, app, input)
		})

	srv.Tool("task.defer").
		Description("Push tasks to the next work day, keeping their time").
		Handler(func(ctx context.Context, input taskDeferInput) ([]cli.ItemOutput, error) {
			return deferTasks(ctx, app, input)
		})

	srv.Tool("task.delete").
		Description("Delete a task; deleting a project deletes its intervals").
		Handler(func(ctx context.Context, input taskIDInput) (*taskDeleteOutput, error) {
			return deleteTask(ctx, app, input)
		})

	return nil
}

func createTask(ctx context.Context, app *cli.App, input taskCreateInput) (*taskCreateOutput, error) {
	if app == nil || app.CreateTaskHandler == nil {
		return nil, errNotInitialized
	}
	cmd := commands.CreateTaskCommand{
		UserID:            app.CurrentUserID,
		Title:             input.Title,
		EstimatedMinutes:  input.EstimatedMinutes,
		Priority:          input.Priority,
		Quadrant:          input.Quadrant,
		Category:          input.Category,
		AutoPlace:         input.AutoPlace,
		MaxIntervalsToday: input.MaxIntervalsToday,
	}
	due, err := parseOptionalDate(app, input.DueDate)
	if err != nil {
		return nil, err
	}
	tm, err := parseOptionalTime(input.DueTime)
	if err != nil {
		return nil, err
	}
	if tm != nil && due == nil {
		today := app.Today()
		due = &today
	}
	cmd.DueDate, cmd.DueTime = due, tm

	result, err := app.CreateTaskHandler.Handle(ctx, cmd)
	if err != nil {
		return nil, err
	}
	afterCommand(ctx, app)

	out := &taskCreateOutput{
		Task:      queries.ToDTO(result.Task),
		Intervals: queries.ToDTOs(result.Intervals),
	}
	if result.Slot != nil {
		placed := result.Slot.Found
		out.Placed = &placed
	}
	return out, nil
}

func listTasks(ctx context.Context, app *cli.App, input taskListInput) ([]queries.TaskDTO, error) {
	if app == nil || app.ListTasksHandler == nil {
		return nil, errNotInitialized
	}
	query := queries.ListTasksQuery{
		UserID:       app.CurrentUserID,
		Status:       input.Status,
		Unscheduled:  input.Unscheduled,
		HideProjects: input.HideProjects,
		Limit:        input.Limit,
	}
	date, err := parseOptionalDate(app, input.Date)
	if err != nil {
		return nil, err
	}
	query.Date = date
	if input.ProjectID != "" {
		id, err := parseTaskID(ctx, app, input.ProjectID)
		if err != nil {
			return nil, err
		}
		query.ParentID = &id
	}
	return app.ListTasksHandler.Handle(ctx, query)
}

func toggleTask(ctx context.Context, app *cli.App, input taskIDInput) (*taskToggleOutput, error) {
	if app == nil || app.ToggleCompletionHandler == nil {
		return nil, errNotInitialized
	}
	id, err := parseTaskID(ctx, app, input.TaskID)
	if err != nil {
		return nil, err
	}
	result, err := app.ToggleCompletionHandler.Handle(ctx, commands.ToggleCompletionCommand{
		UserID: app.CurrentUserID,
		TaskID: id,
	})
	if err != nil {
		return nil, err
	}
	afterCommand(ctx, app)

	out := &taskToggleOutput{Task: queries.ToDTO(result.Task)}
	if result.Parent != nil {
		p := queries.ToDTO(*result.Parent)
		out.Parent = &p
	}
	return out, nil
}

func moveTask(ctx context.Context, app *cli.App, input taskMoveInput) (*taskMoveOutput, error) {
	if app == nil || app.ScheduleTaskHandler == nil {
		return nil, errNotInitialized
	}
	id, err := parseTaskID(ctx, app, input.TaskID)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(app, input.Date)
	if err != nil {
		return nil, err
	}
	tm, err := parseOptionalTime(input.Time)
	if err != nil {
		return nil, err
	}

	result, err := app.ScheduleTaskHandler.Handle(ctx, commands.ScheduleTaskCommand{
		UserID:            app.CurrentUserID,
		TaskID:            id,
		Date:              date,
		Time:              tm,
		RequireNoConflict: input.Strict,
	})
	if err != nil {
		return nil, err
	}
	if result.Committed {
		afterCommand(ctx, app)
	}

	out := &taskMoveOutput{
		Task:      queries.ToDTO(result.Task),
		Committed: result.Committed,
		Overlaps:  queries.ToDTOs(result.Overlaps),
		Deficit:   result.Overload.Deficit,
	}
	if result.Deferrals != nil {
		out.Deferrals = queries.ToDTOs(result.Deferrals.Tasks)
	}
	return out, nil
}

func deferTasks(ctx context.Context, app *cli.App, input taskDeferInput) ([]cli.ItemOutput, error) {
	if app == nil || app.DeferTasksHandler == nil {
		return nil, errNotInitialized
	}
	ids, err := parseTaskIDs(ctx, app, input.TaskIDs)
	if err != nil {
		return nil, err
	}
	result, err := app.DeferTasksHandler.Handle(ctx, commands.DeferTasksCommand{
		UserID:  app.CurrentUserID,
		TaskIDs: ids,
	})
	if err != nil {
		return nil, err
	}
	afterCommand(ctx, app)
	return cli.ItemOutputs(result.Items), nil
}

func deleteTask(ctx context.Context, app *cli.App, input taskIDInput) (*taskDeleteOutput, error) {
	if app == nil || app.DeleteTaskHandler == nil {
		return nil, errNotInitialized
	}
	id, err := parseTaskID(ctx, app, input.TaskID)
	if err != nil {
		return nil, err
	}
	result, err := app.DeleteTaskHandler.Handle(ctx, commands.DeleteTaskCommand{
		UserID: app.CurrentUserID,
		TaskID: id,
	})
	if err != nil {
		return nil, err
	}
	afterCommand(ctx, app)

	out := &taskDeleteOutput{Deleted: make([]string, 0, len(result.Deleted))}
	for _, d := range result.Deleted {
		out.Deleted = append(out.Deleted, d.String())
	}
	if result.Parent != nil {
		p := queries.ToDTO(*result.Parent)
		out.Parent = &p
	}
	return out, nil
}

