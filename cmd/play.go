package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/neurogym/internal/exercise"
)

var playCmd = &cobra.Command{
	Use:       "play <exercise>",
	Short:     "Start a session of one exercise",
	Args:      cobra.ExactArgs(1),
	ValidArgs: exercise.IDs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, args[0])
	},
}

func init() {
	playCmd.Flags().Int("trials", 0, "Trials in the session (default: per exercise)")
}
