package cli

import (
	"context"
	"time"

	internalApp "github.com/felixgeelhaar/tempo/internal/app"
	"github.com/felixgeelhaar/tempo/internal/planning/application/commands"
	"github.com/felixgeelhaar/tempo/internal/planning/application/queries"
	"github.com/felixgeelhaar/tempo/internal/planning/application/services"
	"github.com/felixgeelhaar/tempo/pkg/config"
	"github.com/felixgeelhaar/tempo/pkg/observability"
	"github.com/google/uuid"
)

// App holds the CLI application dependencies.
type App struct {
	Config  *config.Config
	Planner *services.Planner

	// Command handlers
	CreateTaskHandler       *commands.CreateTaskHandler
	ToggleCompletionHandler *commands.ToggleCompletionHandler
	DeleteTaskHandler       *commands.DeleteTaskHandler
	ScheduleTaskHandler     *commands.ScheduleTaskHandler
	AutoScheduleHandler     *commands.AutoScheduleHandler
	DeferTasksHandler       *commands.DeferTasksHandler
	RolloverHandler         *commands.RolloverHandler

	// Query handlers
	ListTasksHandler      *queries.ListTasksHandler
	GetDayPlanHandler     *queries.GetDayPlanHandler
	CheckConflictsHandler *queries.CheckConflictsHandler
	FindNextSlotHandler   *queries.FindNextSlotHandler

	// Health reports on the connected dependencies. May be nil.
	Health *observability.HealthRegistry

	// AfterCommand runs once a command succeeded, typically relaying the
	// outbox so subscribers see the change before the process exits.
	AfterCommand func(ctx context.Context) error

	// Current user (configured per environment)
	CurrentUserID uuid.UUID
}

// NewApp creates a CLI application backed by the container's handlers.
func NewApp(c *internalApp.Container) *App {
	return &App{
		Config:                  c.Config,
		Planner:                 c.Planner,
		CreateTaskHandler:       c.CreateTaskHandler,
		ToggleCompletionHandler: c.ToggleCompletionHandler,
		DeleteTaskHandler:       c.DeleteTaskHandler,
		ScheduleTaskHandler:     c.ScheduleTaskHandler,
		AutoScheduleHandler:     c.AutoScheduleHandler,
		DeferTasksHandler:       c.DeferTasksHandler,
		RolloverHandler:         c.RolloverHandler,
		ListTasksHandler:        c.ListTasksHandler,
		GetDayPlanHandler:       c.GetDayPlanHandler,
		CheckConflictsHandler:   c.CheckConflictsHandler,
		FindNextSlotHandler:     c.FindNextSlotHandler,
		Health:                  c.HealthRegistry(),
		AfterCommand:            c.FlushOutbox,
		CurrentUserID:           c.Config.UserUUID(),
	}
}

// SetCurrentUserID updates the current user ID.
func (a *App) SetCurrentUserID(id uuid.UUID) {
	a.CurrentUserID = id
}

// Today returns the planner's current date.
func (a *App) Today() time.Time {
	return a.Planner.Today()
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
