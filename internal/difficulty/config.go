package difficulty

import "fmt"

// Direction says which way along the scale is harder.
type Direction int

const (
	// Standard: a higher value is harder (sequence length, grid size, N).
	Standard Direction = iota
	// Inverted: a lower value is harder (presentation or response time).
	Inverted
)

func (d Direction) String() string {
	switch d {
	case Standard:
		return "standard"
	case Inverted:
		return "inverted"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// harder returns the signed step that makes the task harder.
func (d Direction) harder(step int) int {
	if d == Inverted {
		return -step
	}
	return step
}

const (
	// DefaultStep is the adjustment size when none is given.
	DefaultStep = 1

	// DefaultThreshold is the streak length that triggers an adjustment.
	DefaultThreshold = 2
)

// Config parameterizes a Controller.
type Config struct {
	Initial            int
	Min                int
	Max                int
	Step               int
	CorrectThreshold   int
	IncorrectThreshold int
	Direction          Direction
}

// DefaultConfig returns a Standard config with a unit step and 2/2 thresholds.
func DefaultConfig(initial, min, max int) Config {
	return Config{
		Initial:            initial,
		Min:                min,
		Max:                max,
		Step:               DefaultStep,
		CorrectThreshold:   DefaultThreshold,
		IncorrectThreshold: DefaultThreshold,
		Direction:          Standard,
	}
}

// Validate checks bounds, thresholds and step. Initial is not checked; it is
// clamped into range on initialization.
func (c Config) Validate() error {
	switch {
	case c.Min > c.Max:
		return &ConfigError{Field: "min", Reason: fmt.Sprintf("min %d exceeds max %d", c.Min, c.Max)}
	case c.Step < 0:
		return &ConfigError{Field: "step", Reason: fmt.Sprintf("step %d is negative", c.Step)}
	case c.CorrectThreshold < 1:
		return &ConfigError{Field: "correct_threshold", Reason: fmt.Sprintf("threshold %d must be at least 1", c.CorrectThreshold)}
	case c.IncorrectThreshold < 1:
		return &ConfigError{Field: "incorrect_threshold", Reason: fmt.Sprintf("threshold %d must be at least 1", c.IncorrectThreshold)}
	case c.Direction != Standard && c.Direction != Inverted:
		return &ConfigError{Field: "direction", Reason: c.Direction.String()}
	}
	return nil
}

// Clamp bounds v to [Min, Max].
func (c Config) Clamp(v int) int {
	if v < c.Min {
		return c.Min
	}
	if v > c.Max {
		return c.Max
	}
	return v
}

// Level returns the 1-based number of steps v sits above the easiest bound,
// taking direction into account. A zero step collapses every value to level 1.
func (c Config) Level(v int) int {
	if c.Step <= 0 {
		return 1
	}
	v = c.Clamp(v)
	if c.Direction == Inverted {
		return (c.Max-v)/c.Step + 1
	}
	return (v-c.Min)/c.Step + 1
}

// Harder reports whether a is harder than b under this config's direction.
func (c Config) Harder(a, b int) bool {
	if c.Direction == Inverted {
		return a < b
	}
	return a > b
}
