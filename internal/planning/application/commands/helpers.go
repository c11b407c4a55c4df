package commands

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	sharedApplication "github.com/felixgeelhaar/tempo/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/tempo/internal/shared/domain"
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

func loadSnapshot(ctx context.Context, repo domain.TaskRepository, userID uuid.UUID) ([]domain.Task, error) {
	tasks, err := repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// findOwned looks a task up in the user's snapshot.
func findOwned(tasks []domain.Task, id, userID uuid.UUID) (domain.Task, error) {
	t, ok := domain.FindTask(tasks, id)
	if !ok || (userID != uuid.Nil && t.UserID != userID) {
		return domain.Task{}, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	return t, nil
}

// saveEvents stamps the events with command metadata and writes them to the outbox.
func saveEvents(ctx context.Context, outboxRepo outbox.Repository, userID uuid.UUID, events ...sharedDomain.DomainEvent) error {
	if outboxRepo == nil || len(events) == 0 {
		return nil
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(userID))

	msgs := make([]*outbox.Message, 0, len(events))
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return outboxRepo.SaveBatch(ctx, msgs)
}

