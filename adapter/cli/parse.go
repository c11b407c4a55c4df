package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/application/queries"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/google/uuid"
)

// ErrNotInitialized is returned when a command runs without a wired App.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

// ParseDateArg accepts "today", "tomorrow", "+N" (days from today) or
// YYYY-MM-DD. An empty string means today.
func ParseDateArg(s string, today time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "" || s == "today":
		return domain.DateOf(today), nil
	case s == "tomorrow":
		return domain.DateOf(today).AddDate(0, 0, 1), nil
	case strings.HasPrefix(s, "+"):
		n, err := strconv.Atoi(s[1:])
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("invalid day offset %q", s)
		}
		return domain.DateOf(today).AddDate(0, 0, n), nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD, today, tomorrow or +N", s)
	}
	return d, nil
}

// ParseTimeArg parses HH:MM. An empty string yields nil.
func ParseTimeArg(s string) (*domain.TimeOfDay, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := domain.ParseTimeOfDay(s)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return &t, nil
}

// ResolveTaskID accepts a full task id or a unique prefix of one, as printed
// by listings.
func ResolveTaskID(ctx context.Context, a *App, arg string) (uuid.UUID, error) {
	arg = strings.TrimSpace(strings.ToLower(arg))
	if id, err := uuid.Parse(arg); err == nil {
		return id, nil
	}
	if len(arg) < 4 {
		return uuid.Nil, fmt.Errorf("task id %q is too short", arg)
	}
	if a == nil || a.ListTasksHandler == nil {
		return uuid.Nil, ErrNotInitialized
	}
	tasks, err := a.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{
		UserID: a.CurrentUserID,
		Status: queries.StatusAll,
	})
	if err != nil {
		return uuid.Nil, err
	}
	var matches []uuid.UUID
	for _, t := range tasks {
		if strings.HasPrefix(t.ID.String(), arg) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return uuid.Nil, fmt.Errorf("no task matches %q", arg)
	case 1:
		return matches[0], nil
	default:
		return uuid.Nil, fmt.Errorf("task id %q is ambiguous (%d matches)", arg, len(matches))
	}
}

// FindTask looks up one of the current user's tasks.
func FindTask(ctx context.Context, a *App, id uuid.UUID) (queries.TaskDTO, error) {
	tasks, err := a.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{
		UserID: a.CurrentUserID,
		Status: queries.StatusAll,
	})
	if err != nil {
		return queries.TaskDTO{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return queries.TaskDTO{}, fmt.Errorf("task %s not found", id)
}

// ResolveTaskIDs resolves every argument with ResolveTaskID.
func ResolveTaskIDs(ctx context.Context, a *App, args []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(args))
	for _, arg := range args {
		id, err := ResolveTaskID(ctx, a, arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
