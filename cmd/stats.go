package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/neurogym/internal/session"
	"github.com/abhisek/neurogym/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-exercise training statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		exercises, err := e.cfg.Descriptors()
		if err != nil {
			return err
		}
		events := e.store.EventRepo()
		stats, err := events.ExerciseStats(ctx)
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}
		levels, err := e.tracker().Levels(ctx)
		if err != nil {
			return fmt.Errorf("load levels: %w", err)
		}

		byID := make(map[string]store.ExerciseStat, len(stats))
		for _, s := range stats {
			byID[s.Exercise] = s
		}

		fmt.Printf("%-22s  %8s  %6s  %8s  %6s  %-12s  %-12s\n",
			"Exercise", "Sessions", "Trials", "Accuracy", "Best", "Hardest", "Level")
		fmt.Println(rule(86))
		for _, d := range exercises {
			s, ok := byID[d.ID]
			if !ok {
				fmt.Printf("%-22s  %8s  %6s  %8s  %6s  %-12s  %-12s\n", d.Name, "-", "-", "-", "-", "-", "new")
				continue
			}
			level := "-"
			if l, ok := levels[d.ID]; ok {
				level = d.FormatDifficulty(l)
			}
			fmt.Printf("%-22s  %8d  %6d  %8s  %6d  %-12s  %-12s\n",
				d.Name, s.Sessions, s.Trials, pct(s.Accuracy()), s.BestScore, d.FormatDifficulty(s.MaxHardest), level)
		}

		if plan, _ := cmd.Flags().GetBool("plan"); !plan {
			return nil
		}
		p, err := session.NewPlanner(events, exercises).BuildPlan(ctx)
		if err != nil {
			return fmt.Errorf("build plan: %w", err)
		}
		fmt.Println()
		fmt.Println("Next Workout")
		fmt.Println(rule(40))
		for i, slot := range p.Slots {
			detail := string(slot.Category)
			if slot.Category != session.CategoryNew {
				detail += " · " + pct(slot.Accuracy)
			}
			fmt.Printf("%d. %-22s %s\n", i+1, slot.Exercise.Name, detail)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("plan", false, "Also show the next workout plan")
}
