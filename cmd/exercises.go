package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/neurogym/internal/difficulty"
	"github.com/abhisek/neurogym/internal/exercise"
)

var exercisesCmd = &cobra.Command{
	Use:     "exercises",
	Aliases: []string{"ls"},
	Short:   "List the exercise catalog with difficulty ranges and current levels",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		exercises, err := e.cfg.Descriptors()
		if err != nil {
			return err
		}
		levels, err := e.tracker().Levels(cmd.Context())
		if err != nil {
			return fmt.Errorf("load levels: %w", err)
		}

		fmt.Printf("%-18s  %-22s  %-6s  %-22s  %6s  %-10s\n", "ID", "Name", "Adapt", "Range", "Trials", "Level")
		fmt.Println(rule(92))
		for _, d := range exercises {
			cfg := d.Difficulty
			lo, hi := cfg.Min, cfg.Max
			if cfg.Direction == difficulty.Inverted {
				lo, hi = hi, lo
			}
			adapt := d.Granularity.String()
			if d.Granularity == exercise.PerBlock {
				adapt = fmt.Sprintf("%s/%d", adapt, d.BlockSize)
			}
			level := "new"
			if l, ok := levels[d.ID]; ok {
				level = d.FormatDifficulty(l)
			}
			if _, overridden := e.cfg.Exercises[d.ID]; overridden {
				level += " *"
			}
			fmt.Printf("%-18s  %-22s  %-6s  %-22s  %6d  %-10s\n",
				d.ID, d.Name, adapt, d.FormatDifficulty(lo)+" → "+d.FormatDifficulty(hi), d.TotalTrials, level)
		}
		if len(e.cfg.Exercises) > 0 {
			fmt.Printf("\n* settings overridden in %s\n", e.cfg.File)
		}
		return nil
	},
}
