package exercise

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/abhisek/neurogym/internal/difficulty"
)

func TestCatalog_AllValid(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range All() {
		if seen[d.ID] {
			t.Errorf("duplicate exercise ID %q", d.ID)
		}
		seen[d.ID] = true

		if err := d.Validate(); err != nil {
			t.Errorf("%s: Validate: %v", d.ID, err)
		}
		a, err := d.NewAdapter()
		if err != nil {
			t.Errorf("%s: NewAdapter: %v", d.ID, err)
			continue
		}
		if a.Direction() != d.Difficulty.Direction {
			t.Errorf("%s: adapter direction %s, descriptor %s", d.ID, a.Direction(), d.Difficulty.Direction)
		}
	}
	if len(seen) != 9 {
		t.Errorf("catalog has %d exercises, want 9", len(seen))
	}
}

func TestLookup(t *testing.T) {
	d, err := Lookup(UFOVBasic)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if d.Difficulty.Direction != difficulty.Inverted {
		t.Errorf("UFOV direction = %s, want inverted", d.Difficulty.Direction)
	}

	_, err = Lookup("juggling")
	if !errors.Is(err, ErrUnknownExercise) {
		t.Errorf("err = %v, want ErrUnknownExercise", err)
	}
}

func TestNewAdapter_BlockExercise(t *testing.T) {
	d, _ := Lookup(DualNBack)
	a, err := d.NewAdapter()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := a.(difficulty.BlockAdapter); !ok {
		t.Errorf("dual n-back adapter %T is not a BlockAdapter", a)
	}
}

func TestReduce(t *testing.T) {
	ufovComplex, _ := Lookup(UFOVComplex)
	words, _ := Lookup(WordPairs)

	tests := []struct {
		name string
		d    Descriptor
		dims map[string]bool
		want bool
	}{
		{"both correct", ufovComplex, map[string]bool{DimCentral: true, DimPeripheral: true}, true},
		{"peripheral wrong", ufovComplex, map[string]bool{DimCentral: true, DimPeripheral: false}, false},
		{"missing dimension", ufovComplex, map[string]bool{DimCentral: true}, false},
		{"extra dimension ignored", ufovComplex, map[string]bool{DimCentral: true, DimPeripheral: true, "bonus": false}, true},
		{"dynamic all correct", words, map[string]bool{"cat": true, "sun": true}, true},
		{"dynamic one wrong", words, map[string]bool{"cat": true, "sun": false}, false},
		{"dynamic empty", words, map[string]bool{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Reduce(tt.dims); got != tt.want {
				t.Errorf("Reduce = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCredit(t *testing.T) {
	ufovComplex, _ := Lookup(UFOVComplex)
	if got := ufovComplex.Credit(map[string]bool{DimCentral: true}); got != 0.5 {
		t.Errorf("Credit = %v, want 0.5", got)
	}
	words, _ := Lookup(WordPairs)
	if got := words.Credit(map[string]bool{"a": true, "b": true, "c": false, "d": false}); got != 0.5 {
		t.Errorf("Credit = %v, want 0.5", got)
	}
}

func TestWithOverride(t *testing.T) {
	d, _ := Lookup(DigitSpan)

	five, twenty := 5, 20
	got, err := d.WithOverride(Override{Initial: &five, TotalTrials: &twenty})
	if err != nil {
		t.Fatalf("WithOverride: %v", err)
	}
	if got.Difficulty.Initial != 5 || got.TotalTrials != 20 {
		t.Errorf("got initial=%d trials=%d, want 5, 20", got.Difficulty.Initial, got.TotalTrials)
	}
	if orig, _ := Lookup(DigitSpan); orig.Difficulty.Initial != 3 {
		t.Error("override leaked into the catalog")
	}

	zero := 0
	if _, err := d.WithOverride(Override{TotalTrials: &zero}); !errors.Is(err, difficulty.ErrInvalidConfig) {
		t.Errorf("zero trials err = %v, want ErrInvalidConfig", err)
	}
	lo := 20
	if _, err := d.WithOverride(Override{Min: &lo}); !errors.Is(err, difficulty.ErrInvalidConfig) {
		t.Errorf("min > max err = %v, want ErrInvalidConfig", err)
	}
	if !(Override{}).IsZero() {
		t.Error("empty override should be zero")
	}
}

func TestParams_Deterministic(t *testing.T) {
	for _, d := range All() {
		a := Params(d, d.Difficulty.Initial, 5, rand.New(rand.NewPCG(1, 2)))
		b := Params(d, d.Difficulty.Initial, 5, rand.New(rand.NewPCG(1, 2)))
		if a != b {
			t.Errorf("%s: specs differ for the same seed:\n%+v\n%+v", d.ID, a, b)
		}
	}
}

func TestParams_ByKind(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))

	span, _ := Lookup(DigitSpan)
	if s := Params(span, 6, 0, rng); s.SequenceLength != 6 || s.Level != 4 {
		t.Errorf("span spec = %+v, want length 6 level 4", s)
	}

	search, _ := Lookup(VisualSearch)
	s := Params(search, 5, 0, rng)
	if s.GridSize != 5 || s.DistractorCount != 24 {
		t.Errorf("search grid=%d distractors=%d, want 5, 24", s.GridSize, s.DistractorCount)
	}
	if s.TargetPosition < 0 || s.TargetPosition >= 25 {
		t.Errorf("TargetPosition = %d, out of grid", s.TargetPosition)
	}

	basic, _ := Lookup(UFOVBasic)
	if s := Params(basic, 250, 0, rng); s.StimulusDurationMs != 250 || s.PeripheralPosition != NoPosition {
		t.Errorf("ufov basic spec = %+v", s)
	}
	ufovComplex, _ := Lookup(UFOVComplex)
	if s := Params(ufovComplex, 250, 0, rng); s.PeripheralPosition < 0 || s.PeripheralPosition >= PeripheralSlots {
		t.Errorf("ufov complex peripheral = %d", s.PeripheralPosition)
	}

	stroop, _ := Lookup(Stroop)
	if s := Params(stroop, 1800, 0, rng); s.ResponseWindowMs != 1800 {
		t.Errorf("stroop window = %d, want 1800", s.ResponseWindowMs)
	}

	words, _ := Lookup(WordPairs)
	if s := Params(words, 30, 0, rng); s.PairCount != 12 {
		t.Errorf("PairCount = %d, want clamped 12", s.PairCount)
	}
}

func TestParams_NBackNoEarlyMatches(t *testing.T) {
	d, _ := Lookup(DualNBack)
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 3; i++ {
		s := Params(d, 3, i, rng)
		if s.PositionMatch || s.LetterMatch {
			t.Errorf("trial %d flagged a match before %d stimuli exist", i, s.NBack)
		}
	}
}

func TestFormatDifficulty(t *testing.T) {
	nback, _ := Lookup(DualNBack)
	grid, _ := Lookup(VisualSearch)
	ufov, _ := Lookup(UFOVBasic)

	if got := nback.FormatDifficulty(3); got != "3-back" {
		t.Errorf("got %q", got)
	}
	if got := grid.FormatDifficulty(4); got != "4x4" {
		t.Errorf("got %q", got)
	}
	if got := ufov.FormatDifficulty(250); got != "250 ms" {
		t.Errorf("got %q", got)
	}
}

func TestTrialScore(t *testing.T) {
	if got := TrialScore(3, 0.5); got != 15 {
		t.Errorf("TrialScore = %v, want 15", got)
	}
}
