package commands

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDeleteTaskHandler_Handle(t *testing.T) {
	userID := uuid.New()

	t.Run("project deletes its intervals in bulk", func(t *testing.T) {
		ctx := context.Background()
		taskRepo, outboxRepo, uow := new(mockBulkTaskRepo), new(mockOutboxRepo), new(mockUnitOfWork)
		txCtx := expectUnitOfWork(ctx, uow)
		parent, children := project(userID, false, true)
		taskRepo.On("List", ctx, userID).Return(append([]domain.Task{parent}, children...), nil)
		taskRepo.On("DeleteMany", txCtx, []uuid.UUID{children[0].ID, children[1].ID}).Return(nil)
		taskRepo.On("Delete", txCtx, parent.ID).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, messageCount(1)).Return(nil)

		handler := NewDeleteTaskHandler(taskRepo, outboxRepo, uow, newPlanner(t, "12:00"))
		result, err := handler.Handle(ctx, DeleteTaskCommand{UserID: userID, TaskID: parent.ID})

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{children[0].ID, children[1].ID, parent.ID}, result.Deleted)
		taskRepo.AssertExpectations(t)
	})

	t.Run("project deletes intervals one by one without bulk support", func(t *testing.T) {
		ctx := context.Background()
		taskRepo, outboxRepo, uow := new(mockTaskRepo), new(mockOutboxRepo), new(mockUnitOfWork)
		txCtx := expectUnitOfWork(ctx, uow)
		parent, children := project(userID, false, false)
		taskRepo.On("List", ctx, userID).Return(append([]domain.Task{parent}, children...), nil)
		taskRepo.On("Delete", txCtx, mock.Anything).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, messageCount(1)).Return(nil)

		handler := NewDeleteTaskHandler(taskRepo, outboxRepo, uow, newPlanner(t, "12:00"))
		result, err := handler.Handle(ctx, DeleteTaskCommand{UserID: userID, TaskID: parent.ID})

		require.NoError(t, err)
		assert.Len(t, result.Deleted, 3)
		taskRepo.AssertNumberOfCalls(t, "Delete", 3)
		assert.Equal(t, parent.ID, taskRepo.Calls[3].Arguments.Get(1), "the project goes last")
	})

	t.Run("removing an interval shrinks the project", func(t *testing.T) {
		ctx := context.Background()
		taskRepo, outboxRepo, uow := new(mockTaskRepo), new(mockOutboxRepo), new(mockUnitOfWork)
		txCtx := expectUnitOfWork(ctx, uow)
		parent, children := project(userID, false, false, false)
		taskRepo.On("List", ctx, userID).Return(append([]domain.Task{parent}, children...), nil)
		taskRepo.On("Delete", txCtx, children[1].ID).Return(nil)
		taskRepo.On("Update", txCtx, parent.ID, mock.MatchedBy(func(p domain.TaskPatch) bool {
			return p.EstimatedMinutes != nil && *p.EstimatedMinutes == 60
		})).Return(patched(parent), nil)
		outboxRepo.On("SaveBatch", txCtx, messageCount(1)).Return(nil)

		handler := NewDeleteTaskHandler(taskRepo, outboxRepo, uow, newPlanner(t, "12:00"))
		result, err := handler.Handle(ctx, DeleteTaskCommand{UserID: userID, TaskID: children[1].ID})

		require.NoError(t, err)
		require.NotNil(t, result.Parent)
		assert.Equal(t, 60, result.Parent.EstimatedMinutes)
		taskRepo.AssertExpectations(t)
	})

	t.Run("removing the only open interval completes the project", func(t *testing.T) {
		ctx := context.Background()
		taskRepo, outboxRepo, uow := new(mockTaskRepo), new(mockOutboxRepo), new(mockUnitOfWork)
		txCtx := expectUnitOfWork(ctx, uow)
		parent, children := project(userID, true, false)
		taskRepo.On("List", ctx, userID).Return(append([]domain.Task{parent}, children...), nil)
		taskRepo.On("Delete", txCtx, children[1].ID).Return(nil)
		taskRepo.On("Update", txCtx, parent.ID, mock.Anything).Return(patched(parent), nil)
		outboxRepo.On("SaveBatch", txCtx, messageCount(2)).Return(nil)

		handler := NewDeleteTaskHandler(taskRepo, outboxRepo, uow, newPlanner(t, "12:00"))
		result, err := handler.Handle(ctx, DeleteTaskCommand{UserID: userID, TaskID: children[1].ID})

		require.NoError(t, err)
		require.NotNil(t, result.Parent)
		assert.True(t, result.Parent.IsCompleted)
		assert.Equal(t, 30, result.Parent.EstimatedMinutes)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("removing the last interval removes the project", func(t *testing.T) {
		ctx := context.Background()
		taskRepo, outboxRepo, uow := new(mockTaskRepo), new(mockOutboxRepo), new(mockUnitOfWork)
		txCtx := expectUnitOfWork(ctx, uow)
		parent, children := project(userID, false)
		taskRepo.On("List", ctx, userID).Return(append([]domain.Task{parent}, children...), nil)
		taskRepo.On("Delete", txCtx, children[0].ID).Return(nil)
		taskRepo.On("Delete", txCtx, parent.ID).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, messageCount(2)).Return(nil)

		handler := NewDeleteTaskHandler(taskRepo, outboxRepo, uow, newPlanner(t, "12:00"))
		result, err := handler.Handle(ctx, DeleteTaskCommand{UserID: userID, TaskID: children[0].ID})

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{children[0].ID, parent.ID}, result.Deleted)
		assert.Nil(t, result.Parent)
		taskRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("plain task", func(t *testing.T) {
		ctx := context.Background()
		taskRepo, outboxRepo, uow := new(mockTaskRepo), new(mockOutboxRepo), new(mockUnitOfWork)
		txCtx := expectUnitOfWork(ctx, uow)
		task := looseTask(userID, "errand", 20)
		taskRepo.On("List", ctx, userID).Return([]domain.Task{task}, nil)
		taskRepo.On("Delete", txCtx, task.ID).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, messageCount(1)).Return(nil)

		handler := NewDeleteTaskHandler(taskRepo, outboxRepo, uow, newPlanner(t, "12:00"))
		result, err := handler.Handle(ctx, DeleteTaskCommand{UserID: userID, TaskID: task.ID})

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{task.ID}, result.Deleted)
	})

	t.Run("unknown task", func(t *testing.T) {
		ctx := context.Background()
		taskRepo := new(mockTaskRepo)
		taskRepo.On("List", ctx, userID).Return(nil, nil)

		handler := NewDeleteTaskHandler(taskRepo, new(mockOutboxRepo), new(mockUnitOfWork), newPlanner(t, "12:00"))
		_, err := handler.Handle(ctx, DeleteTaskCommand{UserID: userID, TaskID: uuid.New()})

		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})
}
