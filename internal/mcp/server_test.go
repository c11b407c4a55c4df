package mcp

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/felixgeelhaar/mcp-go/middleware"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/felixgeelhaar/tempo/internal/app"
	"github.com/felixgeelhaar/tempo/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewCLIApp(t *testing.T) {
	container, err := app.NewInMemoryContainer(nil, discardLogger())
	require.NoError(t, err)
	defer container.Close()

	cliApp := NewCLIApp(container, uuid.Nil)
	assert.Equal(t, uuid.MustParse(config.DefaultUserID), cliApp.CurrentUserID)
	assert.NotNil(t, cliApp.CreateTaskHandler)

	other := uuid.New()
	assert.Equal(t, other, NewCLIApp(container, other).CurrentUserID)
}

func TestNewServer_RegistersTools(t *testing.T) {
	container, err := app.NewInMemoryContainer(nil, discardLogger())
	require.NoError(t, err)
	defer container.Close()

	srv, err := NewServer(NewCLIApp(container, uuid.Nil), discardLogger())
	require.NoError(t, err)

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)
	assert.NotEmpty(t, tools)
}

func TestServe_Validation(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, Serve(ctx, nil, nil, nil))
	assert.Error(t, Serve(ctx, &config.Config{}, nil, nil))
}

func TestFieldsToArgs(t *testing.T) {
	args := fieldsToArgs([]middleware.Field{{Key: "tool", Value: "task.create"}, {Key: "ms", Value: 3}})
	assert.Equal(t, []any{"tool", "task.create", "ms", 3}, args)
}
