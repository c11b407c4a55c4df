package subscribers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/application/services"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// ConflictNotice describes a day that no longer adds up after a change.
type ConflictNotice struct {
	UserID    uuid.UUID
	Date      time.Time
	Task      domain.Task
	Overlaps  []domain.Task
	Overload  int // committed minutes beyond the work day
	CausedBy  string
	EventID   uuid.UUID
	CheckedAt time.Time
}

// ConflictNotifier is told about conflicts found after a change.
type ConflictNotifier interface {
	NotifyConflict(ctx context.Context, notice ConflictNotice) error
}

// LogNotifier writes conflict notices to a logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// NotifyConflict logs the notice as a warning.
func (n LogNotifier) NotifyConflict(_ context.Context, notice ConflictNotice) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	overlapIDs := make([]string, 0, len(notice.Overlaps))
	for _, o := range notice.Overlaps {
		overlapIDs = append(overlapIDs, o.ID.String())
	}
	logger.Warn("schedule conflict detected",
		"user_id", notice.UserID,
		"date", domain.FormatDate(notice.Date),
		"task_id", notice.Task.ID,
		"title", notice.Task.Title,
		"overlaps", overlapIDs,
		"overload_minutes", notice.Overload,
		"caused_by", notice.CausedBy,
	)
	return nil
}

const seenCapacity = 1024

// TaskChangeSubscriber re-checks the affected day whenever tasks change
// outside the current process.
//
// Every event triggers a fresh load of the user's tasks, so handling the same
// event twice finds the same conflicts. Event IDs already handled are
// remembered for a while to avoid repeating notices.
type TaskChangeSubscriber struct {
	taskRepo domain.TaskRepository
	planner  *services.Planner
	notifier ConflictNotifier
	logger   *slog.Logger

	mu   sync.Mutex
	seen map[uuid.UUID]struct{}
	fifo []uuid.UUID
}

// NewTaskChangeSubscriber creates a new subscriber. A nil notifier logs.
func NewTaskChangeSubscriber(taskRepo domain.TaskRepository, planner *services.Planner, notifier ConflictNotifier, logger *slog.Logger) *TaskChangeSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	return &TaskChangeSubscriber{
		taskRepo: taskRepo,
		planner:  planner,
		notifier: notifier,
		logger:   logger,
		seen:     make(map[uuid.UUID]struct{}),
	}
}

// EventTypes returns the event types this subscriber handles.
func (s *TaskChangeSubscriber) EventTypes() []string {
	return []string{
		domain.RoutingKeyCreated,
		domain.RoutingKeySplit,
		domain.RoutingKeyRescheduled,
		domain.RoutingKeyDeferred,
		domain.RoutingKeyReopened,
	}
}

// Handle processes a task change event.
func (s *TaskChangeSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	if s.alreadySeen(event.EventID) {
		s.logger.Debug("skipping replayed event", "event_id", event.EventID)
		return nil
	}

	userID := event.Metadata.UserID
	if userID == uuid.Nil {
		s.logger.Debug("task event without user, skipping", "event_id", event.EventID)
		return nil
	}

	tasks, err := s.taskRepo.List(ctx, userID)
	if err != nil {
		return err
	}

	changed, ok := domain.FindTask(tasks, event.AggregateID)
	if !ok {
		// Removed since the event was written.
		s.markSeen(event.EventID)
		return nil
	}

	affected := []domain.Task{changed}
	if changed.IsProject {
		affected = domain.ChildrenOf(tasks, changed.ID)
	}

	checkedDays := make(map[string]bool)
	for _, t := range affected {
		if t.DueDate == nil {
			continue
		}
		if err := s.check(ctx, userID, t, tasks, event, checkedDays); err != nil {
			return err
		}
	}

	s.markSeen(event.EventID)
	return nil
}

func (s *TaskChangeSubscriber) check(ctx context.Context, userID uuid.UUID, t domain.Task, tasks []domain.Task, event *eventbus.ConsumedEvent, checkedDays map[string]bool) error {
	notice := ConflictNotice{
		UserID:    userID,
		Date:      *t.DueDate,
		Task:      t,
		CausedBy:  event.RoutingKey,
		EventID:   event.EventID,
		CheckedAt: s.planner.Now(),
	}

	if t.OccupiesTime() {
		overlaps, err := services.FindOverlaps(t, tasks)
		if err != nil {
			return err
		}
		notice.Overlaps = overlaps
	}

	day := domain.FormatDate(*t.DueDate)
	if !checkedDays[day] {
		checkedDays[day] = true
		cfg := s.planner.Config()
		total := 0
		if cfg.IsWorkday(*t.DueDate) {
			total = cfg.TotalMinutes()
		}
		if committed := services.CommittedMinutes(*t.DueDate, tasks); committed > total {
			notice.Overload = committed - total
		}
	}

	if len(notice.Overlaps) == 0 && notice.Overload == 0 {
		return nil
	}
	return s.notifier.NotifyConflict(ctx, notice)
}

func (s *TaskChangeSubscriber) alreadySeen(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[id]
	return ok
}

func (s *TaskChangeSubscriber) markSeen(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.fifo = append(s.fifo, id)
	if len(s.fifo) > seenCapacity {
		delete(s.seen, s.fifo[0])
		s.fifo = s.fifo[1:]
	}
}
