package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/tempo/adapter/cli"
	"github.com/felixgeelhaar/tempo/adapter/cli/mcp"
	"github.com/felixgeelhaar/tempo/adapter/cli/schedule"
	"github.com/felixgeelhaar/tempo/adapter/cli/task"
	"github.com/felixgeelhaar/tempo/internal/app"
	"github.com/felixgeelhaar/tempo/pkg/config"
	"github.com/felixgeelhaar/tempo/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = observability.NewLogger(observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat))
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		// Development without a usable database: nothing is persisted.
		logger.Warn("failed to initialize container, using in-memory storage", "error", err)
		container, err = app.NewInMemoryContainer(cfg, logger)
		if err != nil {
			logger.Error("failed to initialize in-memory container", "error", err)
			os.Exit(1)
		}
	}
	defer container.Close()

	cli.SetApp(cli.NewApp(container))

	cli.AddCommand(task.Cmd)
	cli.AddCommand(schedule.Cmd)
	cli.AddCommand(mcp.Cmd)

	cli.Root().SetContext(ctx)
	cli.Execute()
}
