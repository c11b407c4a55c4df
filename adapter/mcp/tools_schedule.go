package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/tempo/adapter/cli"
	"github.com/felixgeelhaar/tempo/internal/planning/application/commands"
	"github.com/felixgeelhaar/tempo/internal/planning/application/queries"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
)

type scheduleDateInput struct {
	Date string `json:"date,omitempty"`
}

type scheduleAutoOutput struct {
	Date       string              `json:"date"`
	Windows    []queries.WindowDTO `json:"windows"`
	Placements []cli.ItemOutput    `json:"placements"`
	Unplaced   []queries.TaskDTO   `json:"unplaced"`
}

type scheduleCheckInput struct {
	Date             string `json:"date,omitempty"`
	Time             string `json:"time,omitempty"`
	EstimatedMinutes int    `json:"estimated_minutes,omitempty"`
	TaskID           string `json:"task_id,omitempty"`
}

type scheduleNextInput struct {
	EstimatedMinutes int    `json:"estimated_minutes" jsonschema:"required"`
	Date             string `json:"date,omitempty"`
}

type rolloverOutput struct {
	Date    string           `json:"date"`
	Skipped bool             `json:"skipped"`
	Moved   []cli.ItemOutput `json:"moved"`
}

func registerScheduleTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("schedule.day").
		Description("Get the plan for a day (default today): timed and untimed tasks, free windows, load and conflicts").
		Handler(func(ctx context.Context, input scheduleDateInput) (*queries.DayPlanDTO, error) {
			return dayPlan(ctx, app, input)
		})

	srv.Tool("schedule.auto").
		Description("Pack undated open tasks, and untimed tasks due that day, into the day's free windows best-fit").
		Handler(func(ctx context.Context, input scheduleDateInput) (*scheduleAutoOutput, error) {
			return autoSchedule(ctx, app, input)
		})

	srv.Tool("schedule.check").
		Description("Check a prospective placement for overlaps and overload, with deferral suggestions. Read-only.").
		Handler(func(ctx context.Context, input scheduleCheckInput) (*queries.ConflictReportDTO, error) {
			return checkConflicts(ctx, app, input)
		})

	srv.Tool("schedule.next_slot").
		Description("Find the earliest free start for a task of the given length").
		Handler(func(ctx context.Context, input scheduleNextInput) (*queries.SlotDTO, error) {
			return nextSlot(ctx, app, input)
		})

	srv.Tool("schedule.rollover").
		Description("Move overdue open tasks onto today; runs at most once a day").
		Handler(func(ctx context.Context, input struct{}) (*rolloverOutput, error) {
			return rollover(ctx, app)
		})

	return nil
}

func dayPlan(ctx context.Context, app *cli.App, input scheduleDateInput) (*queries.DayPlanDTO, error) {
	if app == nil || app.GetDayPlanHandler == nil {
		return nil, errNotInitialized
	}
	date, err := parseDate(app, input.Date)
	if err != nil {
		return nil, err
	}
	return app.GetDayPlanHandler.Handle(ctx, queries.GetDayPlanQuery{
		UserID: app.CurrentUserID,
		Date:   date,
	})
}

func autoSchedule(ctx context.Context, app *cli.App, input scheduleDateInput) (*scheduleAutoOutput, error) {
	if app == nil || app.AutoScheduleHandler == nil {
		return nil, errNotInitialized
	}
	date, err := parseDate(app, input.Date)
	if err != nil {
		return nil, err
	}
	result, err := app.AutoScheduleHandler.Handle(ctx, commands.AutoScheduleCommand{
		UserID: app.CurrentUserID,
		Date:   date,
	})
	if err != nil {
		return nil, err
	}
	afterCommand(ctx, app)

	return &scheduleAutoOutput{
		Date:       domain.FormatDate(result.Date),
		Windows:    queries.ToWindowDTOs(result.Windows),
		Placements: cli.ItemOutputs(result.Items),
		Unplaced:   queries.ToDTOs(result.Unplaced),
	}, nil
}

func checkConflicts(ctx context.Context, app *cli.App, input scheduleCheckInput) (*queries.ConflictReportDTO, error) {
	if app == nil || app.CheckConflictsHandler == nil {
		return nil, errNotInitialized
	}
	date, err := parseDate(app, input.Date)
	if err != nil {
		return nil, err
	}
	tm, err := parseOptionalTime(input.Time)
	if err != nil {
		return nil, err
	}
	query := queries.CheckConflictsQuery{
		UserID:           app.CurrentUserID,
		Date:             date,
		Time:             tm,
		EstimatedMinutes: input.EstimatedMinutes,
	}
	if input.TaskID != "" {
		id, err := parseTaskID(ctx, app, input.TaskID)
		if err != nil {
			return nil, err
		}
		query.TaskID = &id
		if query.EstimatedMinutes <= 0 {
			task, err := cli.FindTask(ctx, app, id)
			if err != nil {
				return nil, err
			}
			query.EstimatedMinutes = task.EstimatedMinutes
		}
	}
	return app.CheckConflictsHandler.Handle(ctx, query)
}

func nextSlot(ctx context.Context, app *cli.App, input scheduleNextInput) (*queries.SlotDTO, error) {
	if app == nil || app.FindNextSlotHandler == nil {
		return nil, errNotInitialized
	}
	date, err := parseDate(app, input.Date)
	if err != nil {
		return nil, err
	}
	return app.FindNextSlotHandler.Handle(ctx, queries.FindNextSlotQuery{
		UserID:           app.CurrentUserID,
		EstimatedMinutes: input.EstimatedMinutes,
		Date:             date,
	})
}

func rollover(ctx context.Context, app *cli.App) (*rolloverOutput, error) {
	if app == nil || app.RolloverHandler == nil {
		return nil, errNotInitialized
	}
	result, err := app.RolloverHandler.Handle(ctx, commands.RolloverCommand{UserID: app.CurrentUserID})
	if err != nil {
		return nil, err
	}
	afterCommand(ctx, app)
	return &rolloverOutput{
		Date:    domain.FormatDate(result.Date),
		Skipped: result.Skipped,
		Moved:   cli.ItemOutputs(result.Items),
	}, nil
}
