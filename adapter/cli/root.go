package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/felixgeelhaar/tempo/pkg/observability"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	noColor    bool
	jsonOutput bool
	logger     *slog.Logger
)

type commandStartKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tempo",
	Short: "Tempo - task scheduling for a single work day",
	Long: `Tempo plans tasks into the working hours of a day.

Long tasks are split into intervals across days, free time is packed
best-fit, and conflicts come with a suggestion of what to defer.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		if noColor {
			color.NoColor = true
		}
		userID := uuid.Nil
		if app != nil {
			userID = app.CurrentUserID
		}
		ctx := observability.NewCommandContext(cmd.Context(), userID)
		ctx = withCommandStart(ctx, time.Now())
		cmd.SetContext(ctx)

		level := slog.LevelDebug
		if verbose {
			level = slog.LevelInfo
		}
		logger.Log(ctx, level, "command start", "command", cmd.CommandPath())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logger == nil {
			logger = slog.Default()
		}
		ctx := cmd.Context()
		if app != nil && app.AfterCommand != nil {
			if err := app.AfterCommand(ctx); err != nil {
				logger.WarnContext(ctx, "relaying events failed", "error", err)
			}
		}
		started, ok := commandStart(ctx)
		if !ok {
			return nil
		}
		logger.DebugContext(ctx, "command end",
			"command", cmd.CommandPath(),
			"duration_ms", time.Since(started).Milliseconds(),
		)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, Failure("error:"), err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// Root returns the root command.
func Root() *cobra.Command {
	return rootCmd
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Logger returns the CLI logger, falling back to slog.Default.
func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// JSONOutput reports whether --json was given.
func JSONOutput() bool {
	return jsonOutput
}

// SetJSONOutput toggles JSON output.
func SetJSONOutput(v bool) {
	jsonOutput = v
}
