package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/felixgeelhaar/tempo/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAutoScheduleHandler_Handle(t *testing.T) {
	userID := uuid.New()

	t.Run("packs open tasks and reports per-item failures", func(t *testing.T) {
		ctx := context.Background()
		taskRepo, outboxRepo, uow := new(mockTaskRepo), new(mockOutboxRepo), new(mockUnitOfWork)
		txCtx := txContext(ctx)
		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		uow.On("Rollback", txCtx).Return(nil)

		meeting := timedTask(userID, "planning", monday, "09:00", 60)
		short := looseTask(userID, "reply", 20)
		medium := looseTask(userID, "review", 45)
		long := looseTask(userID, "draft", 120)
		huge := looseTask(userID, "rewrite", 480)
		d := monday
		datedUntimed := looseTask(userID, "expenses", 30)
		datedUntimed.DueDate = &d
		done := looseTask(userID, "done", 30)
		done.IsCompleted = true
		tomorrow := monday.AddDate(0, 0, 1)
		later := looseTask(userID, "later", 30)
		later.DueDate = &tomorrow

		taskRepo.On("List", ctx, userID).Return([]domain.Task{meeting, long, short, huge, medium, datedUntimed, done, later}, nil)
		boom := errors.New("write conflict")
		for _, task := range []domain.Task{short, long, datedUntimed} {
			taskRepo.On("Update", txCtx, task.ID, mock.Anything).Return(patched(task), nil)
		}
		taskRepo.On("Update", txCtx, medium.ID, mock.Anything).Return(nil, boom)
		outboxRepo.On("SaveBatch", txCtx, messageCount(1)).Return(nil)

		metrics := observability.NewInMemoryMetrics()
		handler := NewAutoScheduleHandler(taskRepo, outboxRepo, uow, newPlanner(t, "08:00"), metrics, nil)
		result, err := handler.Handle(ctx, AutoScheduleCommand{UserID: userID, Date: monday})

		require.NoError(t, err)
		assert.Equal(t, []domain.TimeWindow{{Start: domain.MustParseTimeOfDay("10:00"), End: domain.MustParseTimeOfDay("17:00")}}, result.Windows)

		require.Len(t, result.Placements, 4)
		wantOrder := []uuid.UUID{short.ID, datedUntimed.ID, medium.ID, long.ID}
		wantStart := []string{"10:00", "10:30", "11:00", "11:45"}
		for i, pl := range result.Placements {
			assert.Equal(t, wantOrder[i], pl.Task.ID)
			assert.Equal(t, wantStart[i], pl.Start.String())
		}
		require.Len(t, result.Unplaced, 1)
		assert.Equal(t, huge.ID, result.Unplaced[0].ID)

		require.Len(t, result.Items, 4)
		failed := Failed(result.Items)
		require.Len(t, failed, 1)
		assert.Equal(t, medium.ID, failed[0].TaskID)
		assert.ErrorIs(t, failed[0].Err, boom)
		assert.Nil(t, failed[0].Task)

		assert.Equal(t, int64(3), metrics.GetCounter(observability.MetricTasksPlaced))
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricTasksUnplaced))
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricPlacementErrors))
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricOperationTotal, observability.T("operation", "auto_schedule")))
	})

	t.Run("nothing to place", func(t *testing.T) {
		ctx := context.Background()
		taskRepo := new(mockTaskRepo)
		taskRepo.On("List", ctx, userID).Return([]domain.Task{timedTask(userID, "meeting", monday, "09:00", 30)}, nil)

		handler := NewAutoScheduleHandler(taskRepo, new(mockOutboxRepo), new(mockUnitOfWork), newPlanner(t, "08:00"), nil, nil)
		result, err := handler.Handle(ctx, AutoScheduleCommand{UserID: userID, Date: monday})

		require.NoError(t, err)
		assert.Empty(t, result.Placements)
		assert.Empty(t, result.Items)
	})

	t.Run("requires a date", func(t *testing.T) {
		handler := NewAutoScheduleHandler(new(mockTaskRepo), new(mockOutboxRepo), new(mockUnitOfWork), newPlanner(t, "08:00"), nil, nil)

		_, err := handler.Handle(context.Background(), AutoScheduleCommand{UserID: userID})

		assert.ErrorIs(t, err, domain.ErrMissingDate)
	})
}
