package schedule

import (
	"github.com/spf13/cobra"
)

// Cmd is the schedule command group
var Cmd = &cobra.Command{
	Use:   "schedule",
	Short: "Plan your day",
	Long:  `Show the day plan, pack open tasks into free time and check placements for conflicts.`,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(autoCmd)
	Cmd.AddCommand(checkCmd)
	Cmd.AddCommand(nextCmd)
	Cmd.AddCommand(rolloverCmd)
}
