package exercise

import "math/rand/v2"

// NoPosition marks an unused position field in a TrialSpec.
const NoPosition = -1

// PeripheralSlots is the number of positions around the centre used by
// UFOV and dual-task trials (the eight compass directions).
const PeripheralSlots = 8

// NBackGrid is the side of the position grid used by dual n-back.
const NBackGrid = 3

const nbackMatchRate = 0.3

// TrialSpec holds the numeric parameters of one trial. It says nothing about
// the concrete symbols shown; that is left to the presenter.
type TrialSpec struct {
	Exercise   string
	Index      int
	Difficulty int
	Level      int

	SequenceLength  int
	GridSize        int
	DistractorCount int
	TargetPosition  int

	StimulusDurationMs int
	ResponseWindowMs   int

	NBack         int
	PositionMatch bool
	LetterMatch   bool

	CueIntervalMs int
	SwitchTask    bool
	Congruent     bool

	PeripheralPosition int

	PairCount int
}

// Params derives the parameters of trial trialIndex at the given difficulty.
// Only rng introduces variation; equal seeds give equal specs.
func Params(d Descriptor, difficulty, trialIndex int, rng *rand.Rand) TrialSpec {
	difficulty = d.Difficulty.Clamp(difficulty)
	spec := TrialSpec{
		Exercise:           d.ID,
		Index:              trialIndex,
		Difficulty:         difficulty,
		Level:              d.Difficulty.Level(difficulty),
		TargetPosition:     NoPosition,
		PeripheralPosition: NoPosition,
	}

	switch d.Kind {
	case KindSpan:
		spec.SequenceLength = difficulty
		spec.StimulusDurationMs = 1000 * difficulty
		spec.ResponseWindowMs = 4000 + 1000*difficulty

	case KindNBack:
		spec.NBack = difficulty
		spec.GridSize = NBackGrid
		spec.StimulusDurationMs = 500
		spec.ResponseWindowMs = 2500
		// A match needs N earlier stimuli to compare against.
		if trialIndex >= difficulty {
			spec.PositionMatch = rng.Float64() < nbackMatchRate
			spec.LetterMatch = rng.Float64() < nbackMatchRate
		}

	case KindSearch:
		spec.GridSize = difficulty
		spec.DistractorCount = difficulty*difficulty - 1
		spec.TargetPosition = rng.IntN(difficulty * difficulty)
		spec.StimulusDurationMs = 3000 + 500*difficulty
		spec.ResponseWindowMs = spec.StimulusDurationMs

	case KindStroop:
		spec.Congruent = rng.Float64() < 0.25
		spec.StimulusDurationMs = difficulty
		spec.ResponseWindowMs = difficulty

	case KindSwitching:
		spec.CueIntervalMs = difficulty
		spec.SwitchTask = trialIndex > 0 && rng.IntN(2) == 0
		spec.StimulusDurationMs = 2500
		spec.ResponseWindowMs = 2500

	case KindUFOV:
		spec.StimulusDurationMs = difficulty
		spec.ResponseWindowMs = 6000
		if d.HasDimension(DimPeripheral) {
			spec.PeripheralPosition = rng.IntN(PeripheralSlots)
		}

	case KindDualTask:
		spec.GridSize = difficulty
		spec.DistractorCount = difficulty*difficulty - 1
		spec.TargetPosition = rng.IntN(difficulty * difficulty)
		spec.PeripheralPosition = rng.IntN(PeripheralSlots)
		spec.StimulusDurationMs = 2000 + 300*difficulty
		spec.ResponseWindowMs = 8000

	case KindRecall:
		spec.PairCount = difficulty
		spec.StimulusDurationMs = 2500 * difficulty
		spec.ResponseWindowMs = 10000 + 4000*difficulty
	}
	return spec
}

// TrialScore returns the points for one trial: 10 per level, scaled by the
// fraction of dimensions answered correctly.
func TrialScore(level int, credit float64) float64 {
	return 10 * float64(level) * credit
}
