package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/tempo/adapter/cli"
	"github.com/felixgeelhaar/tempo/pkg/config"
	"github.com/felixgeelhaar/tempo/pkg/observability"
)

type healthOutput struct {
	Status observability.HealthStatus            `json:"status"`
	Checks map[string]observability.HealthStatus `json:"checks,omitempty"`
	Today  string                                `json:"today"`
}

func registerCoreTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("cli.health").
		Description("Check storage and messaging health").
		Handler(func(ctx context.Context, input struct{}) (*healthOutput, error) {
			return health(ctx, app)
		})

	srv.Tool("planner.config").
		Description("Show the work day and deferral settings the planner runs with").
		Handler(func(ctx context.Context, input struct{}) (*config.PlannerConfig, error) {
			if app == nil || app.Config == nil {
				return nil, errNotInitialized
			}
			pc := app.Config.Planner
			return &pc, nil
		})

	return nil
}

func health(ctx context.Context, app *cli.App) (*healthOutput, error) {
	if app == nil {
		return nil, errors.New("app not initialized")
	}
	out := &healthOutput{Status: observability.HealthStatusHealthy}
	if app.Planner != nil {
		out.Today = app.Today().Format("2006-01-02")
	}
	if app.Health == nil {
		return out, nil
	}
	report := app.Health.Check(ctx)
	out.Status = report.Status
	out.Checks = make(map[string]observability.HealthStatus, len(report.Checks))
	for name, res := range report.Checks {
		out.Checks[name] = res.Status
	}
	return out, nil
}
