package accuracy

// History is an append-only, ordered record of trial outcomes.
// The zero value is an empty history ready to use.
type History struct {
	outcomes []Outcome
}

// Append adds an outcome to the end of the history.
func (h *History) Append(o Outcome) {
	h.outcomes = append(h.outcomes, o)
}

// Len returns the number of recorded outcomes.
func (h *History) Len() int {
	return len(h.outcomes)
}

// Outcomes returns a copy of the recorded outcomes, oldest first.
func (h *History) Outcomes() []Outcome {
	out := make([]Outcome, len(h.outcomes))
	copy(out, h.outcomes)
	return out
}

// Last returns the most recent outcome.
func (h *History) Last() (Outcome, bool) {
	if len(h.outcomes) == 0 {
		return Outcome{}, false
	}
	return h.outcomes[len(h.outcomes)-1], true
}

// Accuracy is Accuracy over this history.
func (h *History) Accuracy(window int) float64 {
	return Accuracy(h.outcomes, window)
}

// ThresholdCrossingDifficulty is ThresholdCrossingDifficulty over this history.
func (h *History) ThresholdCrossingDifficulty(window int, threshold float64) (int, bool) {
	return ThresholdCrossingDifficulty(h.outcomes, window, threshold)
}

// ThresholdCrossingMax is ThresholdCrossingMax over this history.
func (h *History) ThresholdCrossingMax(window int, threshold float64) (int, bool) {
	return ThresholdCrossingMax(h.outcomes, window, threshold)
}

// Trend is Trend over this history.
func (h *History) Trend(window int) float64 {
	return Trend(h.outcomes, window)
}

// CorrectCount returns the number of correct outcomes.
func (h *History) CorrectCount() int {
	n := 0
	for _, o := range h.outcomes {
		if o.Correct {
			n++
		}
	}
	return n
}

// MaxDifficulty returns the highest difficulty recorded.
func (h *History) MaxDifficulty() (int, bool) {
	if len(h.outcomes) == 0 {
		return 0, false
	}
	hi := h.outcomes[0].Difficulty
	for _, o := range h.outcomes[1:] {
		if o.Difficulty > hi {
			hi = o.Difficulty
		}
	}
	return hi, true
}

// MinDifficulty returns the lowest difficulty recorded.
func (h *History) MinDifficulty() (int, bool) {
	if len(h.outcomes) == 0 {
		return 0, false
	}
	lo := h.outcomes[0].Difficulty
	for _, o := range h.outcomes[1:] {
		if o.Difficulty < lo {
			lo = o.Difficulty
		}
	}
	return lo, true
}

// AverageResponseMs averages response times over outcomes that have one.
// Returns 0 when none do.
func (h *History) AverageResponseMs() float64 {
	sum, n := 0, 0
	for _, o := range h.outcomes {
		if !o.HasResponseTime() {
			continue
		}
		sum += o.ResponseTimeMs
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
