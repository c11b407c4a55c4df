package cli

import (
	"fmt"

	"github.com/felixgeelhaar/tempo/pkg/observability"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check storage and messaging health",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return ErrNotInitialized
		}
		out := cmd.OutOrStdout()
		if app.Health == nil {
			fmt.Fprintln(out, "ok")
			return nil
		}

		report := app.Health.Check(cmd.Context())
		if jsonOutput {
			if err := PrintJSON(out, report); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(out, "%s %s\n", Header("status:"), statusLabel(report.Status))
			for _, name := range app.Health.Names() {
				res := report.Checks[name]
				line := fmt.Sprintf("  %-10s %s", name, statusLabel(res.Status))
				if res.Message != "" {
					line += "  " + Muted(res.Message)
				}
				fmt.Fprintln(out, line)
			}
		}
		if report.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("unhealthy")
		}
		return nil
	},
}

func statusLabel(s observability.HealthStatus) string {
	switch s {
	case observability.HealthStatusHealthy:
		return Success(string(s))
	case observability.HealthStatusDegraded:
		return Warn(string(s))
	default:
		return Failure(string(s))
	}
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
