package accuracy

// NoResponse marks an outcome that has no response time (e.g. the trial timed out).
const NoResponse = -1

// Outcome is the record of a single trial as seen by the difficulty engine.
type Outcome struct {
	// Correct is the reduced correctness of the trial. Multi-dimensional
	// trials arrive here already AND-ed into a single flag.
	Correct bool

	// Difficulty is the difficulty value the trial was generated at.
	Difficulty int

	// ResponseTimeMs is the response latency, or NoResponse.
	ResponseTimeMs int

	// TimedOut is kept for analytics only. A timeout is already Correct=false.
	TimedOut bool
}

// HasResponseTime reports whether the outcome carries a response time.
func (o Outcome) HasResponseTime() bool {
	return o.ResponseTimeMs >= 0
}
