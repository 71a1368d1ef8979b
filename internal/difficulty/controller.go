package difficulty

import "github.com/abhisek/neurogym/internal/accuracy"

// Result reports what a single ProcessResult call did.
type Result struct {
	CurrentDifficulty    int
	PreviousDifficulty   int
	Adjusted             bool
	ConsecutiveCorrect   int
	ConsecutiveIncorrect int
}

// DifficultyState is a point-in-time view of the controller.
type DifficultyState struct {
	Current              int
	Min                  int
	Max                  int
	Step                 int
	Direction            Direction
	ConsecutiveCorrect   int
	ConsecutiveIncorrect int
	CorrectThreshold     int
	IncorrectThreshold   int
}

// Stats summarizes a controller's lifetime.
type Stats struct {
	TotalTrials          int
	Accuracy             float64
	Adjustments          int
	CurrentDifficulty    int
	InitialDifficulty    int
	MaxDifficultyReached int
	MinDifficultyReached int
}

// Controller is a bounded hysteresis state machine over a single difficulty
// value. A streak of CorrectThreshold correct results moves one step harder,
// a streak of IncorrectThreshold incorrect results moves one step easier.
// Reaching a threshold always consumes both counters, even when the move is
// clamped away at a bound.
//
// The zero value is uninitialized; call Initialize or use NewController.
// A Controller is not safe for concurrent use.
type Controller struct {
	cfg         Config
	initialized bool

	current              int
	initial              int
	consecutiveCorrect   int
	consecutiveIncorrect int
	adjustments          int
	maxReached           int
	minReached           int

	history accuracy.History
}

// NewController creates an initialized controller.
func NewController(cfg Config) (*Controller, error) {
	c := &Controller{}
	if err := c.Initialize(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// Initialize validates cfg and resets all state. Initial is clamped into
// [Min, Max]; invalid configuration is never clamped.
func (c *Controller) Initialize(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	start := cfg.Clamp(cfg.Initial)
	*c = Controller{
		cfg:         cfg,
		initialized: true,
		current:     start,
		initial:     start,
		maxReached:  start,
		minReached:  start,
	}
	return nil
}

// ProcessResult feeds one trial outcome without a response time.
func (c *Controller) ProcessResult(correct bool) (Result, error) {
	return c.RecordOutcome(accuracy.Outcome{Correct: correct, ResponseTimeMs: accuracy.NoResponse})
}

// Record feeds one trial outcome with its response time. Pass
// accuracy.NoResponse when there is none.
func (c *Controller) Record(correct bool, responseTimeMs int) (Result, error) {
	return c.RecordOutcome(accuracy.Outcome{Correct: correct, ResponseTimeMs: responseTimeMs})
}

// RecordOutcome feeds one trial outcome into the state machine and appends
// it to the history. The outcome's Difficulty is overwritten with the value
// the trial was played at.
func (c *Controller) RecordOutcome(o accuracy.Outcome) (Result, error) {
	if !c.initialized {
		return Result{}, errNotInitialized
	}

	prev := c.current
	o.Difficulty = prev

	var threshold bool
	if o.Correct {
		c.consecutiveCorrect++
		c.consecutiveIncorrect = 0
		threshold = c.consecutiveCorrect >= c.cfg.CorrectThreshold
	} else {
		c.consecutiveIncorrect++
		c.consecutiveCorrect = 0
		threshold = c.consecutiveIncorrect >= c.cfg.IncorrectThreshold
	}

	adjusted := false
	if threshold {
		delta := c.cfg.Direction.harder(c.cfg.Step)
		if !o.Correct {
			delta = -delta
		}
		adjusted = c.move(delta)
	}

	c.history.Append(o)

	return c.result(prev, adjusted), nil
}

// CurrentDifficulty returns the difficulty for the next trial.
func (c *Controller) CurrentDifficulty() int {
	return c.current
}

// SetDifficulty overrides the current value (clamped) and resets both counters.
func (c *Controller) SetDifficulty(v int) error {
	if !c.initialized {
		return errNotInitialized
	}
	c.current = c.cfg.Clamp(v)
	c.track()
	c.resetCounters()
	return nil
}

// Config returns the configuration the controller was initialized with.
func (c *Controller) Config() Config {
	return c.cfg
}

// Initialized reports whether Initialize has succeeded.
func (c *Controller) Initialized() bool {
	return c.initialized
}

// Direction returns the configured direction.
func (c *Controller) Direction() Direction {
	return c.cfg.Direction
}

// State returns a snapshot of the controller.
func (c *Controller) State() DifficultyState {
	return DifficultyState{
		Current:              c.current,
		Min:                  c.cfg.Min,
		Max:                  c.cfg.Max,
		Step:                 c.cfg.Step,
		Direction:            c.cfg.Direction,
		ConsecutiveCorrect:   c.consecutiveCorrect,
		ConsecutiveIncorrect: c.consecutiveIncorrect,
		CorrectThreshold:     c.cfg.CorrectThreshold,
		IncorrectThreshold:   c.cfg.IncorrectThreshold,
	}
}

// History returns the recorded outcomes.
func (c *Controller) History() *accuracy.History {
	return &c.history
}

// Stats summarizes the session so far.
func (c *Controller) Stats() Stats {
	return Stats{
		TotalTrials:          c.history.Len(),
		Accuracy:             c.history.Accuracy(0),
		Adjustments:          c.adjustments,
		CurrentDifficulty:    c.current,
		InitialDifficulty:    c.initial,
		MaxDifficultyReached: c.maxReached,
		MinDifficultyReached: c.minReached,
	}
}

// HardestReached returns the hardest value seen, honoring direction.
func (c *Controller) HardestReached() int {
	if c.cfg.Direction == Inverted {
		return c.minReached
	}
	return c.maxReached
}

// move applies delta with clamping, resets both counters, and reports
// whether the value changed.
func (c *Controller) move(delta int) bool {
	prev := c.current
	c.current = c.cfg.Clamp(c.current + delta)
	c.resetCounters()
	if c.current == prev {
		return false
	}
	c.adjustments++
	c.track()
	return true
}

func (c *Controller) track() {
	if c.current > c.maxReached {
		c.maxReached = c.current
	}
	if c.current < c.minReached {
		c.minReached = c.current
	}
}

func (c *Controller) resetCounters() {
	c.consecutiveCorrect = 0
	c.consecutiveIncorrect = 0
}

func (c *Controller) result(prev int, adjusted bool) Result {
	return Result{
		CurrentDifficulty:    c.current,
		PreviousDifficulty:   prev,
		Adjusted:             adjusted,
		ConsecutiveCorrect:   c.consecutiveCorrect,
		ConsecutiveIncorrect: c.consecutiveIncorrect,
	}
}
