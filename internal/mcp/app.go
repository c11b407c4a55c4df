package mcp

import (
	"github.com/felixgeelhaar/tempo/adapter/cli"
	"github.com/felixgeelhaar/tempo/internal/app"
	"github.com/google/uuid"
)

// NewCLIApp creates a CLI application instance backed by the provided
// container. A nil currentUser keeps the configured user.
func NewCLIApp(container *app.Container, currentUser uuid.UUID) *cli.App {
	cliApp := cli.NewApp(container)
	if currentUser != uuid.Nil {
		cliApp.SetCurrentUserID(currentUser)
	}
	return cliApp
}
