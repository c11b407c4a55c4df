package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/felixgeelhaar/tempo/pkg/config"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

var forceInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the planner configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective planner configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Config == nil {
			return ErrNotInitialized
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return PrintJSON(out, app.Config.Planner)
		}
		data, err := toml.Marshal(app.Config.Planner)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, Muted("# "+app.Config.PlannerFile))
		_, err = out.Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default planner configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Config == nil {
			return ErrNotInitialized
		}
		path := app.Config.PlannerFile
		if path == "" {
			return errors.New("no planner file configured (TEMPO_PLANNER_FILE)")
		}
		if _, err := os.Stat(path); err == nil && !forceInit {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
		if err := config.DefaultPlanner().Save(path); err != nil {
			return fmt.Errorf("failed to write planner file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", Success("wrote"), path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
