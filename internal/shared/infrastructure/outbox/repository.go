package outbox

import (
	"context"
	"time"
)

// Repository stores the events task commands emit until the processor has
// delivered them. Command handlers only append; the processor and the worker's
// cleanup job own the rest of the lifecycle.
type Repository interface {
	// SaveBatch appends msgs inside the caller's transaction when ctx carries one.
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished returns up to limit messages that are neither delivered
	// nor dead-lettered and whose retry time has come, oldest first.
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, err string, nextRetryAt time.Time) error
	MarkDead(ctx context.Context, id int64, reason string) error

	// DeleteOld drops delivered messages older than olderThanDays and reports
	// how many went.
	DeleteOld(ctx context.Context, olderThanDays int) (int64, error)
}
