package stimulus

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/neurogym/internal/exercise"
	"github.com/abhisek/neurogym/internal/wordpairs"
)

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(3, 5))
}

func mustLookup(t *testing.T, id string) exercise.Descriptor {
	t.Helper()
	d, err := exercise.Lookup(id)
	if err != nil {
		t.Fatalf("lookup %s: %v", id, err)
	}
	return d
}

func allTrue(dims map[string]bool) bool {
	if len(dims) == 0 {
		return false
	}
	for _, ok := range dims {
		if !ok {
			return false
		}
	}
	return true
}

// build runs n trials of exercise id at the given difficulty.
func build(t *testing.T, id string, level, n int) []Stimulus {
	t.Helper()
	d := mustLookup(t, id)
	rng := newRand()
	b := NewBuilder(rng, nil)
	out := make([]Stimulus, n)
	for i := range n {
		s, err := b.Build(context.Background(), d, exercise.Params(d, level, i, rng))
		if err != nil {
			t.Fatalf("build %s trial %d: %v", id, i, err)
		}
		out[i] = s
	}
	return out
}

func TestExpectedAnswerScoresCorrect(t *testing.T) {
	for _, d := range exercise.All() {
		t.Run(d.ID, func(t *testing.T) {
			for i, s := range build(t, d.ID, d.Difficulty.Initial, 12) {
				answer := s.Expected
				if s.SilenceIsAnswer && answer == "no match" {
					answer = ""
				}
				dims := s.Score(answer)
				if !allTrue(dims) {
					t.Fatalf("trial %d: Score(%q) = %v, want all correct", i, answer, dims)
				}
				if d.Reduce(dims) != true {
					t.Fatalf("trial %d: descriptor rejects %v", i, dims)
				}
				if s.Prompt == "" {
					t.Errorf("trial %d: empty prompt", i)
				}
			}
		})
	}
}

func TestDigitSpan(t *testing.T) {
	s := build(t, exercise.DigitSpan, 5, 1)[0]
	if len(s.Frames) != 5 {
		t.Fatalf("frames = %d, want one per digit", len(s.Frames))
	}
	if s.DisplayDuration() != 5*time.Second {
		t.Errorf("display = %v, want 5s", s.DisplayDuration())
	}
	spaced := strings.Join(strings.Split(s.Expected, ""), " ")
	if !s.Score(spaced)[exercise.DimResponse] {
		t.Errorf("spaced digits %q should be accepted", spaced)
	}
	if s.Score(s.Expected[1:])[exercise.DimResponse] {
		t.Error("a shorter sequence should be wrong")
	}
}

func TestDualNBackMatchesRefer(t *testing.T) {
	d := mustLookup(t, exercise.DualNBack)
	rng := newRand()
	b := NewBuilder(rng, nil)
	const level = 2

	var matches int
	for i := range 40 {
		spec := exercise.Params(d, level, i, rng)
		s, err := b.Build(context.Background(), d, spec)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		if !s.SilenceIsAnswer {
			t.Fatal("n-back should score silence as an answer")
		}
		if i < level {
			continue
		}
		samePos := b.positions[i] == b.positions[i-level]
		sameLetter := b.letters[i] == b.letters[i-level]
		if samePos != spec.PositionMatch || sameLetter != spec.LetterMatch {
			t.Fatalf("trial %d: position %v/%v letter %v/%v", i, samePos, spec.PositionMatch, sameLetter, spec.LetterMatch)
		}
		if spec.PositionMatch {
			matches++
			if dims := s.Score(""); dims[exercise.DimPosition] {
				t.Errorf("trial %d: missing a position match should be wrong", i)
			}
		}
	}
	if matches == 0 {
		t.Error("expected some position matches in 40 trials")
	}
}

func TestNBackStreamResetsOnNewSession(t *testing.T) {
	d := mustLookup(t, exercise.DualNBack)
	rng := newRand()
	b := NewBuilder(rng, nil)
	for i := range 5 {
		b.Build(context.Background(), d, exercise.Params(d, 2, i, rng))
	}
	b.Build(context.Background(), d, exercise.Params(d, 2, 0, rng))
	if len(b.positions) != 1 {
		t.Fatalf("positions = %d after a new session, want 1", len(b.positions))
	}
}

func TestVisualSearch(t *testing.T) {
	s := build(t, exercise.VisualSearch, 4, 1)[0]
	if len(s.Frames) != 0 {
		t.Errorf("search shows the grid only as the probe, got %d frames", len(s.Frames))
	}
	if len(s.Probe.Lines) != 5 {
		t.Fatalf("probe lines = %d, want header + 4 rows", len(s.Probe.Lines))
	}
	if strings.Count(strings.Join(s.Probe.Lines, "\n"), searchTarget) != 1 {
		t.Error("grid should contain exactly one target")
	}
	if s.Score("z9")[exercise.DimTarget] || s.Score("")[exercise.DimTarget] {
		t.Error("invalid cells should be wrong")
	}
	if !s.Score(strings.ToUpper(s.Expected))[exercise.DimTarget] {
		t.Error("cell names are case-insensitive")
	}
}

func TestStroop(t *testing.T) {
	for i, s := range build(t, exercise.Stroop, 2000, 30) {
		word := strings.ToLower(s.Probe.Lines[0])
		if s.Expected != s.Probe.Color {
			t.Fatalf("trial %d: expected %q, ink %q", i, s.Expected, s.Probe.Color)
		}
		if !s.Score(s.Probe.Color[:1])[exercise.DimResponse] {
			t.Errorf("trial %d: initial letter should be accepted", i)
		}
		if word != s.Probe.Color && s.Score(word)[exercise.DimResponse] {
			t.Errorf("trial %d: naming the word %q instead of the ink should be wrong", i, word)
		}
	}
}

func TestTaskSwitching(t *testing.T) {
	d := mustLookup(t, exercise.TaskSwitching)
	rng := newRand()
	b := NewBuilder(rng, nil)

	prev := ""
	for i := range 20 {
		spec := exercise.Params(d, 800, i, rng)
		s, err := b.Build(context.Background(), d, spec)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		if i > 0 && (b.task != prev) != spec.SwitchTask {
			t.Fatalf("trial %d: task %s after %s, switch = %v", i, b.task, prev, spec.SwitchTask)
		}
		if s.Frames[0].Duration != 800*time.Millisecond {
			t.Errorf("cue duration = %v, want 800ms", s.Frames[0].Duration)
		}
		prev = b.task
	}
}

func TestUFOV(t *testing.T) {
	basic := build(t, exercise.UFOVBasic, 300, 1)[0]
	if dims := basic.Score(basic.Expected); len(dims) != 1 {
		t.Errorf("basic dims = %v, want central only", dims)
	}
	if basic.Frames[0].Duration != 300*time.Millisecond || basic.Frames[1].Duration != maskDuration {
		t.Errorf("frames = %v, %v", basic.Frames[0].Duration, basic.Frames[1].Duration)
	}

	ufovComplex := build(t, exercise.UFOVComplex, 300, 1)[0]
	central := strings.Fields(ufovComplex.Expected)[0]
	dims := ufovComplex.Score(central + " nowhere")
	if !dims[exercise.DimCentral] || dims[exercise.DimPeripheral] {
		t.Errorf("dims = %v, want central only correct", dims)
	}
	if mustLookup(t, exercise.UFOVComplex).Reduce(dims) {
		t.Error("one wrong dimension should fail the trial")
	}
}

func TestWordPairs(t *testing.T) {
	d := mustLookup(t, exercise.WordPairs)
	rng := newRand()
	words := wordpairs.NewStaticSourceFrom([]wordpairs.Pair{
		{Cue: "lamp", Target: "otter"}, {Cue: "fork", Target: "comet"}, {Cue: "drum", Target: "maple"},
	}, rng)
	b := NewBuilder(rng, words)

	s, err := b.Build(context.Background(), d, exercise.Params(d, 3, 0, rng))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(s.Frames) != 3 || len(s.Probe.Lines) != 3 {
		t.Fatalf("frames = %d probe = %d, want 3 each", len(s.Frames), len(s.Probe.Lines))
	}

	want := strings.Fields(s.Expected)
	dims := s.Score(want[0] + ", WRONG, " + strings.ToUpper(want[2]))
	if !dims["pair-1"] || dims["pair-2"] || !dims["pair-3"] {
		t.Errorf("dims = %v", dims)
	}
	if got := d.Credit(dims); got < 0.66 || got > 0.67 {
		t.Errorf("credit = %v, want 2/3", got)
	}

	_, err = b.Build(context.Background(), d, exercise.Params(d, 5, 1, rng))
	if !errors.Is(err, wordpairs.ErrNotEnoughPairs) {
		t.Fatalf("err = %v, want ErrNotEnoughPairs", err)
	}
}

func TestParseHelpers(t *testing.T) {
	cells := []struct {
		in   string
		size int
		want int
	}{
		{"a1", 3, 0}, {"b3", 3, 5}, {"c3", 3, 8}, {"d1", 3, -1}, {"a4", 3, -1}, {"a", 3, -1}, {"g7", 7, 48},
	}
	for _, tt := range cells {
		if got := parseCell(tt.in, tt.size); got != tt.want {
			t.Errorf("parseCell(%q, %d) = %d, want %d", tt.in, tt.size, got, tt.want)
		}
	}
	for pos := range 9 {
		if got := parseCell(cellName(pos, 3), 3); got != pos {
			t.Errorf("cell %d round-trips to %d", pos, got)
		}
	}

	dirs := map[string]int{"n": 0, "se": 3, "nw": 7, "1": 0, "8": 7, "9": -1, "up": -1}
	for in, want := range dirs {
		if got := parseDirection(in); got != want {
			t.Errorf("parseDirection(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestUnknownKind(t *testing.T) {
	d := exercise.Descriptor{ID: "mystery", Kind: "mystery"}
	_, err := NewBuilder(newRand(), nil).Build(context.Background(), d, exercise.TrialSpec{})
	if !errors.Is(err, exercise.ErrUnknownExercise) {
		t.Fatalf("err = %v, want ErrUnknownExercise", err)
	}
}
