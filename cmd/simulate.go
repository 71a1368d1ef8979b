package cmd

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/neurogym/internal/accuracy"
	"github.com/abhisek/neurogym/internal/difficulty"
	"github.com/abhisek/neurogym/internal/exercise"
	"github.com/abhisek/neurogym/internal/session"
)

var simulateCmd = &cobra.Command{
	Use:       "simulate <exercise>",
	Short:     "Run a session headless against a simulated player",
	Long:      "Plays a session with a simulated player whose chance of answering correctly\nfalls off logistically around --ability, and prints how difficulty adapted.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: exercise.IDs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		d, err := e.cfg.Descriptor(args[0])
		if err != nil {
			return err
		}
		trials, _ := cmd.Flags().GetInt("trials")
		if trials == 0 {
			trials = d.TotalTrials
		}
		seed, _ := cmd.Flags().GetUint64("seed")
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		save, _ := cmd.Flags().GetBool("save")
		verbose, _ := cmd.Flags().GetBool("verbose")

		ctx := cmd.Context()
		tr := e.tracker()
		if save {
			d = tr.Prepare(ctx, d)
		}

		p := newSimPlayer(d.Difficulty, rand.New(rand.NewPCG(seed, seed>>1)))
		if cmd.Flags().Changed("ability") {
			p.ability, _ = cmd.Flags().GetFloat64("ability")
		}

		seq := session.NewSequencer(session.WithRand(rand.New(rand.NewPCG(seed, 1))))
		if err := seq.StartSession(trials, d); err != nil {
			return err
		}
		if save {
			if err := tr.SessionStarted(ctx, seq); err != nil {
				return fmt.Errorf("record session: %w", err)
			}
		}

		fmt.Printf("%s  ·  %d trials  ·  ability %.1f  ·  seed %d\n\n", d.Name, trials, p.ability, seed)
		sum, err := simulate(ctx, seq, p, func(t session.Trial) {
			if save {
				if err := tr.TrialRecorded(ctx, seq.SessionID(), t); err != nil {
					e.logger.Warn("record trial", zap.Error(err))
				}
			}
			if verbose {
				printSimTrial(d, t)
			}
		})
		if err != nil {
			return err
		}
		if save {
			if err := tr.SessionFinished(ctx, sum); err != nil {
				return fmt.Errorf("record session: %w", err)
			}
		}
		if verbose {
			fmt.Println()
		}
		printSimSummary(d, sum)
		return nil
	},
}

// simPlayer answers correctly with a probability that is 1/2 at ability and
// falls off logistically as trials get harder. spread is the difficulty
// distance over which the odds change by a factor of e.
type simPlayer struct {
	ability float64
	spread  float64
	dir     difficulty.Direction
	rng     *rand.Rand
}

// newSimPlayer returns a player of middling ability for cfg.
func newSimPlayer(cfg difficulty.Config, rng *rand.Rand) *simPlayer {
	return &simPlayer{
		ability: float64(cfg.Min+cfg.Max) / 2,
		spread:  math.Max(float64(cfg.Step), 1),
		dir:     cfg.Direction,
		rng:     rng,
	}
}

// pCorrect returns the chance of answering a trial at difficulty v.
func (p *simPlayer) pCorrect(v int) float64 {
	over := float64(v) - p.ability
	if p.dir == difficulty.Inverted {
		over = -over
	}
	return 1 / (1 + math.Exp(over/p.spread))
}

// respond answers spec. Multi-part trials get an independent draw per part.
func (p *simPlayer) respond(d exercise.Descriptor, spec exercise.TrialSpec) session.Response {
	rt := 400 + p.rng.IntN(1200)
	if len(d.Dimensions) == 0 {
		return session.Response{Correct: p.draw(spec.Difficulty), ResponseTimeMs: rt}
	}
	dims := make(map[string]bool, len(d.Dimensions))
	for _, name := range d.Dimensions {
		dims[name] = p.draw(spec.Difficulty)
	}
	return session.Response{Dimensions: dims, ResponseTimeMs: rt}
}

func (p *simPlayer) draw(v int) bool {
	return p.rng.Float64() < p.pCorrect(v)
}

// simulate plays seq to completion with p and returns the summary. onTrial
// sees every recorded trial.
func simulate(ctx context.Context, seq *session.Sequencer, p *simPlayer, onTrial func(session.Trial)) (session.Summary, error) {
	d := seq.Descriptor()
	for seq.Phase() == session.PhaseInSession {
		if err := ctx.Err(); err != nil {
			return session.Summary{}, err
		}
		spec, err := seq.NextTrialParameters()
		if err != nil {
			return session.Summary{}, err
		}
		if _, err := seq.Submit(p.respond(d, spec)); err != nil {
			return session.Summary{}, err
		}
		if t, ok := seq.LastTrial(); ok && onTrial != nil {
			onTrial(t)
		}
	}
	return seq.FinalizeSession()
}

func printSimTrial(d exercise.Descriptor, t session.Trial) {
	line := fmt.Sprintf("%4d  %-10s  %s", t.Spec.Index+1, d.FormatDifficulty(t.Spec.Difficulty), mark(t.Correct))
	if len(t.Dimensions) > 0 {
		line += "  " + parts(t.Dimensions)
	}
	if t.ResponseTimeMs != accuracy.NoResponse {
		line += fmt.Sprintf("  %4dms", t.ResponseTimeMs)
	}
	if t.Adjusted {
		line += "  → " + d.FormatDifficulty(t.DifficultyAfter)
	}
	fmt.Println(line)
}

func printSimSummary(d exercise.Descriptor, s session.Summary) {
	fmt.Printf("Trials:      %d/%d (%d correct, %s)\n", s.TotalTrials, s.PlannedTrials, s.CorrectTrials, pct(s.Accuracy))
	fmt.Printf("Score:       %d\n", s.Score)
	fmt.Printf("Difficulty:  %s → %s (%d adjustments)\n",
		d.FormatDifficulty(s.InitialDifficulty), d.FormatDifficulty(s.FinalDifficulty), s.Adjustments)
	fmt.Printf("Hardest:     %s\n", d.FormatDifficulty(s.HardestReached))
	if s.ThresholdDifficulty != 0 {
		fmt.Printf("Threshold:   %s\n", d.FormatDifficulty(s.ThresholdDifficulty))
	}
	if len(s.BlockAccuracies) > 0 {
		fmt.Print("Blocks:     ")
		for _, a := range s.BlockAccuracies {
			fmt.Printf(" %s", pct(a))
		}
		fmt.Println()
	}
}

func init() {
	simulateCmd.Flags().Int("trials", 0, "Trials in the session (default: per exercise)")
	simulateCmd.Flags().Float64("ability", 0, "Difficulty at which the player is right half the time (default: middle of the range)")
	simulateCmd.Flags().Uint64("seed", 0, "Random seed (default: time based)")
	simulateCmd.Flags().Bool("save", false, "Start from the saved level and record the session")
	simulateCmd.Flags().BoolP("verbose", "v", false, "Print every trial")
}
