package app

import (
	"github.com/spf13/cobra"
)

// NewStuckpointCommand creates the root command for the stuckpoint tool.
func NewStuckpointCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stuckpoint",
		Short: "Prioritize fuzzer stuck points by forward reachability.",
		Long: `Stuckpoint analyzes line coverage from a fuzzing campaign, finds the
partly covered lines where the fuzzer got stuck, and ranks them by how much
uncovered code each one gates.`,
	}

	cmd.AddCommand(NewAnalyzeCommand())

	return cmd
}
