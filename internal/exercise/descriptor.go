package exercise

import (
	"errors"
	"fmt"
	"slices"

	"github.com/abhisek/neurogym/internal/difficulty"
)

// ErrUnknownExercise is returned by Lookup for an unregistered ID.
var ErrUnknownExercise = errors.New("unknown exercise")

// Kind identifies which trial generator and adapter an exercise uses.
type Kind string

const (
	KindSpan      Kind = "span"
	KindNBack     Kind = "nback"
	KindSearch    Kind = "search"
	KindStroop    Kind = "stroop"
	KindSwitching Kind = "switching"
	KindUFOV      Kind = "ufov"
	KindDualTask  Kind = "dual"
	KindRecall    Kind = "recall"
)

// Granularity says how often difficulty is adjusted.
type Granularity int

const (
	PerTrial Granularity = iota
	PerBlock
)

func (g Granularity) String() string {
	if g == PerBlock {
		return "block"
	}
	return "trial"
}

// Descriptor declares everything the engine needs to run one exercise.
type Descriptor struct {
	ID          string
	Name        string
	Description string
	Kind        Kind
	Granularity Granularity

	Difficulty  difficulty.Config
	BlockPolicy difficulty.BlockPolicy

	TotalTrials int
	BlockSize   int

	// Dimensions lists the sub-answers that must all be correct for a trial
	// to count as correct. Empty means the trial reports its own set.
	Dimensions []string

	// Unit labels the difficulty value for display.
	Unit string
}

// Override replaces selected descriptor settings. Nil fields are left alone.
type Override struct {
	Initial            *int `mapstructure:"initial"`
	Min                *int `mapstructure:"min"`
	Max                *int `mapstructure:"max"`
	Step               *int `mapstructure:"step"`
	CorrectThreshold   *int `mapstructure:"correct_threshold"`
	IncorrectThreshold *int `mapstructure:"incorrect_threshold"`
	TotalTrials        *int `mapstructure:"total_trials"`
	BlockSize          *int `mapstructure:"block_size"`
}

// IsZero reports whether the override changes nothing.
func (o Override) IsZero() bool {
	return o == Override{}
}

// WithOverride returns a copy of d with o applied and validated.
func (d Descriptor) WithOverride(o Override) (Descriptor, error) {
	set := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	set(&d.Difficulty.Initial, o.Initial)
	set(&d.Difficulty.Min, o.Min)
	set(&d.Difficulty.Max, o.Max)
	set(&d.Difficulty.Step, o.Step)
	set(&d.Difficulty.CorrectThreshold, o.CorrectThreshold)
	set(&d.Difficulty.IncorrectThreshold, o.IncorrectThreshold)
	set(&d.TotalTrials, o.TotalTrials)
	set(&d.BlockSize, o.BlockSize)

	if err := d.Validate(); err != nil {
		return Descriptor{}, fmt.Errorf("override %s: %w", d.ID, err)
	}
	return d, nil
}

// Validate checks the difficulty config and session sizing.
func (d Descriptor) Validate() error {
	if err := d.Difficulty.Validate(); err != nil {
		return err
	}
	if d.TotalTrials < 1 {
		return &difficulty.ConfigError{Field: "total_trials", Reason: fmt.Sprintf("%d is not positive", d.TotalTrials)}
	}
	if d.Granularity == PerBlock && d.BlockSize < 1 {
		return &difficulty.ConfigError{Field: "block_size", Reason: fmt.Sprintf("%d is not positive", d.BlockSize)}
	}
	return nil
}

// NewAdapter builds a fresh adapter for one session.
func (d Descriptor) NewAdapter() (difficulty.Adapter, error) {
	var (
		a   difficulty.Adapter
		err error
	)
	switch d.Kind {
	case KindSpan, KindRecall:
		a, err = adapter(difficulty.NewSpanAdapter(d.Difficulty))
	case KindNBack:
		a, err = adapter(difficulty.NewNBackAdapter(d.Difficulty, d.BlockPolicy))
	case KindSearch, KindDualTask:
		a, err = adapter(difficulty.NewGridAdapterWithConfig(d.Difficulty))
	case KindUFOV:
		a, err = adapter(difficulty.NewDurationAdapter(d.Difficulty))
	case KindStroop, KindSwitching:
		a, err = adapter(difficulty.NewTimingAdapter(d.Difficulty))
	default:
		err = fmt.Errorf("kind %q: %w", d.Kind, ErrUnknownExercise)
	}
	if err != nil {
		return nil, fmt.Errorf("new adapter for %s: %w", d.ID, err)
	}
	return a, nil
}

// adapter drops typed nils so a failed constructor yields a nil interface.
func adapter[T difficulty.Adapter](a T, err error) (difficulty.Adapter, error) {
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Reduce collapses per-dimension correctness into one flag by logical AND.
// A declared dimension missing from dims counts as incorrect. With no
// declared dimensions every reported flag must be true, and an empty report
// is incorrect.
func (d Descriptor) Reduce(dims map[string]bool) bool {
	if len(d.Dimensions) == 0 {
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
	for _, name := range d.Dimensions {
		if !dims[name] {
			return false
		}
	}
	return true
}

// HasDimension reports whether name is one of the declared dimensions.
func (d Descriptor) HasDimension(name string) bool {
	return slices.Contains(d.Dimensions, name)
}

// Credit returns the fraction of dimensions answered correctly, in [0,1].
func (d Descriptor) Credit(dims map[string]bool) float64 {
	if len(d.Dimensions) == 0 {
		if len(dims) == 0 {
			return 0
		}
		n := 0
		for _, ok := range dims {
			if ok {
				n++
			}
		}
		return float64(n) / float64(len(dims))
	}
	n := 0
	for _, name := range d.Dimensions {
		if dims[name] {
			n++
		}
	}
	return float64(n) / float64(len(d.Dimensions))
}

// FormatDifficulty renders a difficulty value with the exercise's unit.
func (d Descriptor) FormatDifficulty(v int) string {
	switch d.Kind {
	case KindNBack:
		return fmt.Sprintf("%d-back", v)
	case KindSearch, KindDualTask:
		return fmt.Sprintf("%dx%d", v, v)
	}
	if d.Unit == "" {
		return fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("%d %s", v, d.Unit)
}
