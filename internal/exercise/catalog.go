package exercise

import (
	"fmt"

	"github.com/abhisek/neurogym/internal/difficulty"
)

// Exercise IDs.
const (
	DigitSpan       = "digit-span"
	DualNBack       = "dual-n-back"
	VisualSearch    = "visual-search"
	Stroop          = "stroop"
	TaskSwitching   = "task-switching"
	UFOVBasic       = "ufov-basic"
	UFOVComplex     = "ufov-complex"
	ComplexDualTask = "complex-dual-task"
	WordPairs       = "word-pairs"
)

// Dimension names reported by multi-part trials.
const (
	DimResponse   = "response"
	DimPosition   = "position"
	DimLetter     = "letter"
	DimCentral    = "central"
	DimPeripheral = "peripheral"
	DimTarget     = "target"
)

func timing(initial, min, max, step int) difficulty.Config {
	cfg := difficulty.DefaultConfig(initial, min, max)
	cfg.Step = step
	cfg.Direction = difficulty.Inverted
	return cfg
}

var catalog = []Descriptor{
	{
		ID:          DigitSpan,
		Name:        "Digit Span",
		Description: "Remember a sequence of digits and type it back.",
		Kind:        KindSpan,
		Difficulty:  difficulty.DefaultConfig(3, 3, 9),
		TotalTrials: 14,
		Dimensions:  []string{DimResponse},
		Unit:        "digits",
	},
	{
		ID:          DualNBack,
		Name:        "Dual N-Back",
		Description: "Flag when the grid position or the letter matches the one N steps back.",
		Kind:        KindNBack,
		Granularity: PerBlock,
		Difficulty:  difficulty.DefaultConfig(2, 1, 9),
		BlockPolicy: difficulty.DefaultBlockPolicy,
		TotalTrials: 100,
		BlockSize:   20,
		Dimensions:  []string{DimPosition, DimLetter},
		Unit:        "back",
	},
	{
		ID:          VisualSearch,
		Name:        "Visual Search",
		Description: "Find the odd symbol in a growing grid.",
		Kind:        KindSearch,
		Difficulty:  difficulty.DefaultConfig(difficulty.GridMin, difficulty.GridMin, difficulty.GridMax),
		TotalTrials: 20,
		Dimensions:  []string{DimTarget},
		Unit:        "cells",
	},
	{
		ID:          Stroop,
		Name:        "Stroop",
		Description: "Name the ink colour, not the word, before time runs out.",
		Kind:        KindStroop,
		Difficulty:  timing(3000, 1000, 5000, 200),
		TotalTrials: 30,
		Dimensions:  []string{DimResponse},
		Unit:        "ms",
	},
	{
		ID:          TaskSwitching,
		Name:        "Task Switching",
		Description: "Follow the cue: judge the number as odd/even or high/low.",
		Kind:        KindSwitching,
		Difficulty:  timing(1000, 200, 1500, 100),
		TotalTrials: 30,
		Dimensions:  []string{DimResponse},
		Unit:        "ms",
	},
	{
		ID:          UFOVBasic,
		Name:        "UFOV Basic",
		Description: "Identify the central object shown for a split second.",
		Kind:        KindUFOV,
		Difficulty:  difficulty.DefaultDurationConfig(500, 100, 500),
		TotalTrials: 24,
		Dimensions:  []string{DimCentral},
		Unit:        "ms",
	},
	{
		ID:          UFOVComplex,
		Name:        "UFOV Complex",
		Description: "Identify the central object and where the peripheral target appeared.",
		Kind:        KindUFOV,
		Difficulty:  difficulty.DefaultDurationConfig(500, 100, 500),
		TotalTrials: 24,
		Dimensions:  []string{DimCentral, DimPeripheral},
		Unit:        "ms",
	},
	{
		ID:          ComplexDualTask,
		Name:        "Complex Dual Task",
		Description: "Search the grid while also catching a peripheral flash.",
		Kind:        KindDualTask,
		Difficulty:  difficulty.DefaultConfig(difficulty.GridMin, difficulty.GridMin, difficulty.GridMax),
		TotalTrials: 20,
		Dimensions:  []string{DimTarget, DimPeripheral},
		Unit:        "cells",
	},
	{
		ID:          WordPairs,
		Name:        "Word Pairs",
		Description: "Study word pairs, then recall each partner.",
		Kind:        KindRecall,
		Difficulty:  difficulty.DefaultConfig(4, 2, 12),
		TotalTrials: 10,
		Unit:        "pairs",
	},
}

// All returns every registered exercise in menu order.
func All() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog)
	return out
}

// IDs returns the registered exercise IDs in menu order.
func IDs() []string {
	ids := make([]string, len(catalog))
	for i, d := range catalog {
		ids[i] = d.ID
	}
	return ids
}

// Lookup returns the descriptor registered under id.
func Lookup(id string) (Descriptor, error) {
	for _, d := range catalog {
		if d.ID == id {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("lookup %q: %w", id, ErrUnknownExercise)
}
