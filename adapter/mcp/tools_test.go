package mcp

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/felixgeelhaar/tempo/adapter/cli"
	internalApp "github.com/felixgeelhaar/tempo/internal/app"
	"github.com/felixgeelhaar/tempo/pkg/config"
	"github.com/felixgeelhaar/tempo/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday8am = time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

func setupTestApp(t *testing.T) *cli.App {
	t.Helper()

	planner := config.DefaultPlanner()
	planner.WorkDay.Timezone = "UTC"
	cfg := &config.Config{
		AppEnv:          "test",
		UserID:          config.DefaultUserID,
		OutboxBatchSize: 100,
		Planner:         *planner,
	}
	container, err := internalApp.NewInMemoryContainer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)),
		internalApp.WithClock(func() time.Time { return monday8am }))
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	return cli.NewApp(container)
}

func newServer() *mcp.Server {
	return mcp.NewServer(mcp.ServerInfo{
		Name:    "test",
		Version: "1.0.0",
		Capabilities: mcp.Capabilities{
			Tools:     true,
			Resources: true,
			Prompts:   true,
		},
	})
}

func TestRegisterCLITools_ListTools(t *testing.T) {
	srv := newServer()
	app := setupTestApp(t)
	require.NoError(t, RegisterCLITools(srv, ToolDependencies{App: app}))
	require.NoError(t, RegisterResources(srv, ToolDependencies{App: app}))
	require.NoError(t, RegisterPrompts(srv, ToolDependencies{App: app}))

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)

	names := make(map[string]bool, len(tools))
	for _, tool := range tools {
		if name, ok := tool["name"].(string); ok {
			names[name] = true
		}
	}
	for _, want := range []string{"cli.health", "task.create", "task.move", "schedule.check", "schedule.next_slot"} {
		assert.True(t, names[want], "%s should be registered", want)
	}
}

func TestRegisterCLITools_RequiresServerAndApp(t *testing.T) {
	assert.Error(t, RegisterCLITools(nil, ToolDependencies{App: &cli.App{}}))
	assert.Error(t, RegisterCLITools(newServer(), ToolDependencies{}))
}

func TestCreateTask(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	t.Run("single task", func(t *testing.T) {
		out, err := createTask(ctx, app, taskCreateInput{Title: "Call bank", EstimatedMinutes: 20, DueTime: "14:00"})
		require.NoError(t, err)
		assert.Equal(t, "2025-03-03", out.Task.DueDate)
		assert.Equal(t, "14:00", out.Task.DueTime)
		assert.Empty(t, out.Intervals)
	})

	t.Run("long task is split", func(t *testing.T) {
		out, err := createTask(ctx, app, taskCreateInput{Title: "Quarterly report", EstimatedMinutes: 100, DueDate: "today"})
		require.NoError(t, err)
		assert.True(t, out.Task.IsProject)
		require.NotEmpty(t, out.Intervals)
		total := 0
		for _, iv := range out.Intervals {
			total += iv.EstimatedMinutes
		}
		assert.Equal(t, 100, total)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := createTask(ctx, app, taskCreateInput{Title: "", EstimatedMinutes: 20})
		assert.Error(t, err)
		_, err = createTask(ctx, app, taskCreateInput{Title: "x", EstimatedMinutes: 20, DueTime: "7pm"})
		assert.Error(t, err)
	})
}

func TestToggleTask(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	created, err := createTask(ctx, app, taskCreateInput{Title: "Stretch", EstimatedMinutes: 10})
	require.NoError(t, err)

	out, err := toggleTask(ctx, app, taskIDInput{TaskID: created.Task.ID.String()[:8]})
	require.NoError(t, err)
	assert.True(t, out.Task.IsCompleted)
	assert.Nil(t, out.Parent)

	_, err = toggleTask(ctx, app, taskIDInput{TaskID: "zz"})
	assert.Error(t, err)
}

func TestMoveTask(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	_, err := createTask(ctx, app, taskCreateInput{Title: "Standup", EstimatedMinutes: 30, DueTime: "10:00"})
	require.NoError(t, err)
	other, err := createTask(ctx, app, taskCreateInput{Title: "Review", EstimatedMinutes: 30})
	require.NoError(t, err)

	tests := []struct {
		name          string
		time          string
		strict        bool
		wantCommitted bool
		wantOverlaps  int
	}{
		{name: "strict overlap refused", time: "10:15", strict: true, wantCommitted: false, wantOverlaps: 1},
		{name: "free time", time: "13:00", strict: true, wantCommitted: true, wantOverlaps: 0},
		{name: "advisory overlap", time: "10:00", strict: false, wantCommitted: true, wantOverlaps: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := moveTask(ctx, app, taskMoveInput{
				TaskID: other.Task.ID.String(),
				Date:   "today",
				Time:   tt.time,
				Strict: tt.strict,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantCommitted, out.Committed)
			assert.Len(t, out.Overlaps, tt.wantOverlaps)
		})
	}
}

func TestCheckConflicts(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	_, err := createTask(ctx, app, taskCreateInput{Title: "Workshop", EstimatedMinutes: 45, DueTime: "09:00"})
	require.NoError(t, err)

	report, err := checkConflicts(ctx, app, scheduleCheckInput{Time: "09:30", EstimatedMinutes: 30})
	require.NoError(t, err)
	assert.True(t, report.HasConflicts())
	require.Len(t, report.Overlaps, 1)
	assert.Equal(t, "Workshop", report.Overlaps[0].Title)
	assert.Equal(t, 480, report.TotalMinutes)

	report, err = checkConflicts(ctx, app, scheduleCheckInput{Time: "11:00", EstimatedMinutes: 30})
	require.NoError(t, err)
	assert.False(t, report.HasConflicts())
}

func TestNextSlot(t *testing.T) {
	app := setupTestApp(t)

	slot, err := nextSlot(context.Background(), app, scheduleNextInput{EstimatedMinutes: 30})
	require.NoError(t, err)
	assert.True(t, slot.Found)
	assert.Equal(t, "09:00", slot.Start)
}

func TestHealth(t *testing.T) {
	app := setupTestApp(t)

	out, err := health(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, observability.HealthStatusHealthy, out.Status)
	assert.Equal(t, "2025-03-03", out.Today)
	assert.Contains(t, out.Checks, "outbox")

	_, err = health(context.Background(), nil)
	assert.Error(t, err)
}

func TestTools_RequireApp(t *testing.T) {
	ctx := context.Background()
	_, err := createTask(ctx, nil, taskCreateInput{Title: "x", EstimatedMinutes: 5})
	assert.ErrorIs(t, err, errNotInitialized)
	_, err = dayPlan(ctx, nil, scheduleDateInput{})
	assert.ErrorIs(t, err, errNotInitialized)
	_, err = rollover(ctx, nil)
	assert.ErrorIs(t, err, errNotInitialized)
}
