package cmd

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/abhisek/neurogym/internal/exercise"
	"github.com/abhisek/neurogym/internal/session"
)

func mustLookup(t *testing.T, id string) exercise.Descriptor {
	t.Helper()
	d, err := exercise.Lookup(id)
	if err != nil {
		t.Fatalf("lookup %s: %v", id, err)
	}
	return d
}

func TestSimPlayerProbability(t *testing.T) {
	span := mustLookup(t, exercise.DigitSpan)
	p := newSimPlayer(span.Difficulty, rand.New(rand.NewPCG(1, 2)))
	if p.ability != 6 {
		t.Errorf("default ability = %v, want middle of 3..9", p.ability)
	}
	if got := p.pCorrect(6); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("pCorrect(ability) = %v, want 0.5", got)
	}
	if p.pCorrect(3) <= p.pCorrect(9) {
		t.Errorf("longer spans should be harder: p(3)=%v p(9)=%v", p.pCorrect(3), p.pCorrect(9))
	}

	ufov := mustLookup(t, exercise.UFOVBasic)
	q := newSimPlayer(ufov.Difficulty, rand.New(rand.NewPCG(1, 2)))
	if q.pCorrect(100) >= q.pCorrect(500) {
		t.Errorf("shorter exposures should be harder: p(100)=%v p(500)=%v", q.pCorrect(100), q.pCorrect(500))
	}
}

func TestSimPlayerRespondDimensions(t *testing.T) {
	d := mustLookup(t, exercise.DualNBack)
	p := newSimPlayer(d.Difficulty, rand.New(rand.NewPCG(3, 4)))
	r := p.respond(d, exercise.TrialSpec{Difficulty: 2})
	if len(r.Dimensions) != 2 {
		t.Fatalf("dimensions = %v, want position and letter", r.Dimensions)
	}
	if r.ResponseTimeMs < 400 || r.ResponseTimeMs >= 1600 {
		t.Errorf("response time = %d", r.ResponseTimeMs)
	}
}

func runSim(t *testing.T, d exercise.Descriptor, ability float64, trials int) (session.Summary, int) {
	t.Helper()
	p := newSimPlayer(d.Difficulty, rand.New(rand.NewPCG(42, 7)))
	p.ability = ability

	seq := session.NewSequencer(session.WithRand(rand.New(rand.NewPCG(42, 1))))
	if err := seq.StartSession(trials, d); err != nil {
		t.Fatalf("start: %v", err)
	}
	seen := 0
	sum, err := simulate(context.Background(), seq, p, func(session.Trial) { seen++ })
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	return sum, seen
}

func TestSimulateRunsToCompletion(t *testing.T) {
	d := mustLookup(t, exercise.DigitSpan)
	sum, seen := runSim(t, d, 6, 30)
	if !sum.Completed || sum.TotalTrials != 30 || seen != 30 {
		t.Fatalf("completed=%v trials=%d seen=%d, want 30 completed", sum.Completed, sum.TotalTrials, seen)
	}
	if sum.FinalDifficulty < d.Difficulty.Min || sum.FinalDifficulty > d.Difficulty.Max {
		t.Errorf("final difficulty %d outside range", sum.FinalDifficulty)
	}
}

func TestSimulateTracksAbility(t *testing.T) {
	d := mustLookup(t, exercise.DigitSpan)
	strong, _ := runSim(t, d, 9, 60)
	weak, _ := runSim(t, d, 3, 60)
	if strong.HardestReached <= weak.HardestReached {
		t.Errorf("hardest reached: strong %d, weak %d; want strong > weak", strong.HardestReached, weak.HardestReached)
	}
}

func TestSimulateCancelled(t *testing.T) {
	d := mustLookup(t, exercise.DigitSpan)
	seq := session.NewSequencer()
	if err := seq.StartSession(10, d); err != nil {
		t.Fatalf("start: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newSimPlayer(d.Difficulty, rand.New(rand.NewPCG(1, 1)))
	if _, err := simulate(ctx, seq, p, nil); err == nil {
		t.Fatal("expected context error")
	}
}
