package difficulty

import (
	"fmt"
	"math"

	"github.com/abhisek/neurogym/internal/accuracy"
)

// Adapter is a controller specialized for one exercise family.
type Adapter interface {
	CurrentDifficulty() int
	RecordOutcome(o accuracy.Outcome) (Result, error)
	Stats() Stats
	History() *accuracy.History
	Direction() Direction
	Config() Config
	HardestReached() int
}

// BlockAdapter adjusts once per block of trials instead of once per trial.
type BlockAdapter interface {
	Adapter
	ProcessBlock(blockAccuracy float64) (Result, error)
}

var (
	_ Adapter      = (*SpanAdapter)(nil)
	_ BlockAdapter = (*NBackAdapter)(nil)
	_ Adapter      = (*DurationAdapter)(nil)
	_ Adapter      = (*GridAdapter)(nil)
	_ Adapter      = (*TimingAdapter)(nil)
)

// SpanAdapter tracks sequence length for span tasks.
type SpanAdapter struct {
	*Controller
}

// NewSpanAdapter creates a Standard, per-trial adapter.
func NewSpanAdapter(cfg Config) (*SpanAdapter, error) {
	cfg.Direction = Standard
	c, err := NewController(cfg)
	if err != nil {
		return nil, fmt.Errorf("create span adapter: %w", err)
	}
	return &SpanAdapter{Controller: c}, nil
}

// MaxSpanReached returns the longest sequence length reached.
func (a *SpanAdapter) MaxSpanReached() int {
	return a.maxReached
}

// BlockPolicy holds the single-shot block thresholds used by N-back. It is
// independent of the trial-level streak thresholds.
type BlockPolicy struct {
	IncreaseAt    float64
	DecreaseBelow float64
}

// DefaultBlockPolicy raises N at 90% block accuracy and lowers it below 70%.
var DefaultBlockPolicy = BlockPolicy{IncreaseAt: 0.90, DecreaseBelow: 0.70}

func (p BlockPolicy) validate() error {
	if p.DecreaseBelow < 0 || p.IncreaseAt > 1 || p.DecreaseBelow > p.IncreaseAt {
		return &ConfigError{
			Field:  "block_policy",
			Reason: fmt.Sprintf("need 0 <= decrease_below (%.2f) <= increase_at (%.2f) <= 1", p.DecreaseBelow, p.IncreaseAt),
		}
	}
	return nil
}

// NBackAdapter tracks the N level. Trials are recorded for history only;
// the level moves once per block through ProcessBlock.
type NBackAdapter struct {
	*Controller
	policy BlockPolicy
	blocks []float64
}

// NewNBackAdapter creates a Standard, per-block adapter.
func NewNBackAdapter(cfg Config, policy BlockPolicy) (*NBackAdapter, error) {
	if err := policy.validate(); err != nil {
		return nil, fmt.Errorf("create n-back adapter: %w", err)
	}
	cfg.Direction = Standard
	c, err := NewController(cfg)
	if err != nil {
		return nil, fmt.Errorf("create n-back adapter: %w", err)
	}
	return &NBackAdapter{Controller: c, policy: policy}, nil
}

// RecordOutcome appends the trial to the history without touching the level.
func (a *NBackAdapter) RecordOutcome(o accuracy.Outcome) (Result, error) {
	if !a.initialized {
		return Result{}, errNotInitialized
	}
	o.Difficulty = a.current
	a.history.Append(o)
	return a.result(a.current, false), nil
}

// RecordTrial is RecordOutcome for a plain correct flag and response time.
func (a *NBackAdapter) RecordTrial(correct bool, responseTimeMs int) (Result, error) {
	return a.RecordOutcome(accuracy.Outcome{Correct: correct, ResponseTimeMs: responseTimeMs})
}

// Record is RecordTrial; it shadows the per-trial Controller method.
func (a *NBackAdapter) Record(correct bool, responseTimeMs int) (Result, error) {
	return a.RecordTrial(correct, responseTimeMs)
}

// ProcessResult is not meaningful per trial for N-back; it records the trial.
func (a *NBackAdapter) ProcessResult(correct bool) (Result, error) {
	return a.RecordTrial(correct, accuracy.NoResponse)
}

// ProcessBlock moves N up one step if blockAccuracy reaches IncreaseAt and
// down one step if it falls below DecreaseBelow. Streak counters are unused.
func (a *NBackAdapter) ProcessBlock(blockAccuracy float64) (Result, error) {
	if !a.initialized {
		return Result{}, errNotInitialized
	}
	if math.IsNaN(blockAccuracy) || blockAccuracy < 0 || blockAccuracy > 1 {
		return Result{}, fmt.Errorf("process block: accuracy %v: %w", blockAccuracy, ErrInvalidArgument)
	}

	prev := a.current
	a.blocks = append(a.blocks, blockAccuracy)

	adjusted := false
	switch {
	case blockAccuracy >= a.policy.IncreaseAt:
		adjusted = a.move(a.cfg.Step)
	case blockAccuracy < a.policy.DecreaseBelow:
		adjusted = a.move(-a.cfg.Step)
	}
	return a.result(prev, adjusted), nil
}

// Blocks returns the accuracy of each processed block, oldest first.
func (a *NBackAdapter) Blocks() []float64 {
	out := make([]float64, len(a.blocks))
	copy(out, a.blocks)
	return out
}

// Policy returns the block thresholds in use.
func (a *NBackAdapter) Policy() BlockPolicy {
	return a.policy
}

// MaxNBackReached returns the highest N reached.
func (a *NBackAdapter) MaxNBackReached() int {
	return a.maxReached
}

const (
	// DefaultDurationStep is the presentation-time step in milliseconds.
	DefaultDurationStep = 50

	// ThresholdWindow and ThresholdAccuracy define the duration threshold
	// estimate reported by DurationAdapter.
	ThresholdWindow   = 10
	ThresholdAccuracy = 0.75
)

// DefaultDurationConfig returns an Inverted config stepping by 50ms.
func DefaultDurationConfig(initial, min, max int) Config {
	cfg := DefaultConfig(initial, min, max)
	cfg.Step = DefaultDurationStep
	cfg.Direction = Inverted
	return cfg
}

// DurationAdapter tracks stimulus presentation time. Shorter is harder.
type DurationAdapter struct {
	*Controller
}

// NewDurationAdapter creates an Inverted, per-trial adapter.
func NewDurationAdapter(cfg Config) (*DurationAdapter, error) {
	cfg.Direction = Inverted
	c, err := NewController(cfg)
	if err != nil {
		return nil, fmt.Errorf("create duration adapter: %w", err)
	}
	return &DurationAdapter{Controller: c}, nil
}

// FastestDurationReached returns the shortest presentation time reached.
func (a *DurationAdapter) FastestDurationReached() int {
	return a.minReached
}

// ThresholdDuration estimates the duration at which the player holds 75%
// accuracy over a 10-trial window. Falls back to the current duration.
func (a *DurationAdapter) ThresholdDuration() int {
	if d, ok := a.history.ThresholdCrossingDifficulty(ThresholdWindow, ThresholdAccuracy); ok {
		return d
	}
	return a.current
}

const (
	GridMin = 3
	GridMax = 7
)

// GridAdapter tracks the side length of an NxN search grid.
type GridAdapter struct {
	*Controller
}

// NewGridAdapter creates a Standard adapter over [GridMin, GridMax] with a
// unit step. initial is clamped into range.
func NewGridAdapter(initial int) *GridAdapter {
	a := &GridAdapter{Controller: &Controller{}}
	// The fixed bounds always validate.
	_ = a.Initialize(DefaultConfig(initial, GridMin, GridMax))
	return a
}

// NewGridAdapterWithConfig creates a grid adapter with caller-supplied
// thresholds. Bounds outside [GridMin, GridMax] are narrowed to it.
func NewGridAdapterWithConfig(cfg Config) (*GridAdapter, error) {
	cfg.Direction = Standard
	cfg.Min = max(cfg.Min, GridMin)
	cfg.Max = min(cfg.Max, GridMax)
	c, err := NewController(cfg)
	if err != nil {
		return nil, fmt.Errorf("create grid adapter: %w", err)
	}
	return &GridAdapter{Controller: c}, nil
}

// MaxGridSizeReached returns the largest grid side reached.
func (a *GridAdapter) MaxGridSizeReached() int {
	return a.maxReached
}

// TimingAdapter tracks a response-time budget. Less time is harder.
type TimingAdapter struct {
	*Controller
}

// NewTimingAdapter creates an Inverted, per-trial adapter.
func NewTimingAdapter(cfg Config) (*TimingAdapter, error) {
	cfg.Direction = Inverted
	c, err := NewController(cfg)
	if err != nil {
		return nil, fmt.Errorf("create timing adapter: %w", err)
	}
	return &TimingAdapter{Controller: c}, nil
}
