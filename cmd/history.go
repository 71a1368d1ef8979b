package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/neurogym/internal/exercise"
	"github.com/abhisek/neurogym/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "List finished sessions, or the trials of one session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		if len(args) == 1 {
			return printTrials(cmd, e, args[0])
		}

		limit, _ := cmd.Flags().GetInt("limit")
		id, _ := cmd.Flags().GetString("exercise")
		sessions, err := e.store.EventRepo().QuerySessions(cmd.Context(), store.QueryOpts{Limit: limit, Exercise: id})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions recorded yet.")
			return nil
		}

		fmt.Printf("%-19s  %-8s  %-22s  %5s  %6s  %8s  %6s  %-20s\n",
			"Finished", "Session", "Exercise", "Time", "Trials", "Accuracy", "Score", "Difficulty")
		fmt.Println(rule(107))
		for _, s := range sessions {
			d := describe(s.Exercise)
			diff := d.FormatDifficulty(s.InitialDifficulty) + " → " + d.FormatDifficulty(s.FinalDifficulty)
			if !s.Completed {
				diff += " (stopped)"
			}
			fmt.Printf("%-19s  %-8s  %-22s  %5s  %6d  %8s  %6d  %s\n",
				s.Timestamp.Local().Format(timeLayout),
				truncate(s.SessionID, 8),
				d.Name,
				clock(time.Duration(s.DurationMs)*time.Millisecond),
				s.TotalTrials,
				pct(s.Accuracy),
				s.Score,
				diff,
			)
		}
		return nil
	},
}

// printTrials prints one session's trials. id may be a unique prefix of the
// session ID, as shown by the listing.
func printTrials(cmd *cobra.Command, e *env, id string) error {
	events := e.store.EventRepo()
	if len(id) < 36 {
		sessions, err := events.QuerySessions(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		var matches []string
		for _, s := range sessions {
			if strings.HasPrefix(s.SessionID, id) {
				matches = append(matches, s.SessionID)
			}
		}
		switch len(matches) {
		case 0:
			return fmt.Errorf("no session matches %q", id)
		case 1:
			id = matches[0]
		default:
			return fmt.Errorf("session prefix %q is ambiguous (%d matches)", id, len(matches))
		}
	}

	trials, err := events.SessionTrials(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("query trials: %w", err)
	}
	if len(trials) == 0 {
		return fmt.Errorf("session %s has no recorded trials", id)
	}

	d := describe(trials[0].Exercise)
	fmt.Printf("%s  ·  %s\n\n", d.Name, id)
	fmt.Printf("%5s  %-12s  %-3s  %6s  %10s  %-12s  %s\n", "Trial", "Difficulty", "OK", "Credit", "Response", "After", "Parts")
	fmt.Println(rule(72))
	for _, t := range trials {
		ok := mark(t.Correct)
		if t.TimedOut {
			ok = "⏱"
		}
		rt := "-"
		if t.ResponseTimeMs >= 0 && !t.TimedOut {
			rt = (time.Duration(t.ResponseTimeMs) * time.Millisecond).String()
		}
		after := ""
		if t.Adjusted {
			after = d.FormatDifficulty(t.DifficultyAfter)
		}
		fmt.Printf("%5d  %-12s  %-3s  %6.2f  %10s  %-12s  %s\n",
			t.TrialIndex+1, d.FormatDifficulty(t.Difficulty), ok, t.Credit, rt, after, parts(t.Dimensions))
	}
	return nil
}

// describe looks up an exercise for display, tolerating IDs that are no
// longer in the catalog.
func describe(id string) exercise.Descriptor {
	d, err := exercise.Lookup(id)
	if err != nil {
		return exercise.Descriptor{ID: id, Name: id}
	}
	return d
}

func parts(dims map[string]bool) string {
	if len(dims) == 0 {
		return ""
	}
	names := make([]string, 0, len(dims))
	for n := range dims {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n + mark(dims[n])
	}
	return strings.Join(out, " ")
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
	historyCmd.Flags().StringP("exercise", "e", "", "Only sessions of this exercise")
}
