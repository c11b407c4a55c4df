package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/tempo/adapter/cli"
	"github.com/felixgeelhaar/tempo/internal/planning/application/queries"
)

// RegisterResources registers MCP resources that expose the current plan.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	if err := registerTaskResources(srv, deps); err != nil {
		return err
	}
	if err := registerScheduleResources(srv, deps); err != nil {
		return err
	}
	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}

// taskListResource builds a resource handler listing tasks for query.
func taskListResource(app *cli.App, query func() queries.ListTasksQuery) func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
	return func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
		if app == nil || app.ListTasksHandler == nil {
			return nil, errNotInitialized
		}
		tasks, err := app.ListTasksHandler.Handle(ctx, query())
		if err != nil {
			return nil, err
		}
		return jsonResource(uri, tasks)
	}
}

func registerTaskResources(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Resource("tempo://tasks").
		Name("Open Tasks").
		Description("All open tasks, ordered by date and time").
		MimeType("application/json").
		Handler(taskListResource(app, func() queries.ListTasksQuery {
			return queries.ListTasksQuery{UserID: app.CurrentUserID, Status: queries.StatusOpen}
		}))

	srv.Resource("tempo://tasks/today").
		Name("Today's Tasks").
		Description("Open tasks due today").
		MimeType("application/json").
		Handler(taskListResource(app, func() queries.ListTasksQuery {
			today := app.Today()
			return queries.ListTasksQuery{UserID: app.CurrentUserID, Status: queries.StatusOpen, Date: &today}
		}))

	srv.Resource("tempo://tasks/unscheduled").
		Name("Unscheduled Tasks").
		Description("Open tasks without a date, candidates for auto-scheduling").
		MimeType("application/json").
		Handler(taskListResource(app, func() queries.ListTasksQuery {
			return queries.ListTasksQuery{UserID: app.CurrentUserID, Status: queries.StatusOpen, Unscheduled: true}
		}))

	srv.Resource("tempo://tasks/completed").
		Name("Completed Tasks").
		Description("Recently completed tasks").
		MimeType("application/json").
		Handler(taskListResource(app, func() queries.ListTasksQuery {
			return queries.ListTasksQuery{UserID: app.CurrentUserID, Status: queries.StatusCompleted, Limit: 100}
		}))

	return nil
}

func registerScheduleResources(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	planFor := func(offsetDays int) func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
		return func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.GetDayPlanHandler == nil {
				return nil, errNotInitialized
			}
			plan, err := app.GetDayPlanHandler.Handle(ctx, queries.GetDayPlanQuery{
				UserID: app.CurrentUserID,
				Date:   app.Today().AddDate(0, 0, offsetDays),
			})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, plan)
		}
	}

	srv.Resource("tempo://schedule/today").
		Name("Today's Plan").
		Description("Timed and untimed tasks, free windows and load for today").
		MimeType("application/json").
		Handler(planFor(0))

	srv.Resource("tempo://schedule/tomorrow").
		Name("Tomorrow's Plan").
		Description("The plan for tomorrow").
		MimeType("application/json").
		Handler(planFor(1))

	srv.Resource("tempo://schedule/week").
		Name("This Week").
		Description("Day plans for the next seven days").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.GetDayPlanHandler == nil {
				return nil, errNotInitialized
			}
			start := app.Today()
			week := make([]*queries.DayPlanDTO, 0, 7)
			for i := range 7 {
				plan, err := app.GetDayPlanHandler.Handle(ctx, queries.GetDayPlanQuery{
					UserID: app.CurrentUserID,
					Date:   start.AddDate(0, 0, i),
				})
				if err != nil {
					return nil, err
				}
				week = append(week, plan)
			}
			return jsonResource(uri, week)
		})

	srv.Resource("tempo://config/planner").
		Name("Planner Settings").
		Description("Work hours, chunking, buffer and deferral policy").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.Config == nil {
				return nil, errNotInitialized
			}
			return jsonResource(uri, app.Config.Planner)
		})

	return nil
}
