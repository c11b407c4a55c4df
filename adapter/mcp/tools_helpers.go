package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/tempo/adapter/cli"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/google/uuid"
)

var errNotInitialized = errors.New("planning requires an initialized application")

func parseDate(app *cli.App, value string) (time.Time, error) {
	return cli.ParseDateArg(value, app.Today())
}

func parseOptionalDate(app *cli.App, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := parseDate(app, value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseOptionalTime(value string) (*domain.TimeOfDay, error) {
	return cli.ParseTimeArg(value)
}

// parseTaskID accepts a full id or a unique prefix.
func parseTaskID(ctx context.Context, app *cli.App, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.UUID{}, errors.New("task_id is required")
	}
	id, err := cli.ResolveTaskID(ctx, app, value)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid task_id: %w", err)
	}
	return id, nil
}

func parseTaskIDs(ctx context.Context, app *cli.App, values []string) ([]uuid.UUID, error) {
	if len(values) == 0 {
		return nil, errors.New("task_ids is required")
	}
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := parseTaskID(ctx, app, v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
