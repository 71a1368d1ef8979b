package accuracy

// Accuracy returns the fraction of correct outcomes. A window <= 0 covers the
// whole history; otherwise only the last window outcomes are counted (fewer
// if the history is shorter). An empty history yields 0.
func Accuracy(outcomes []Outcome, window int) float64 {
	return rate(tail(outcomes, window))
}

// ThresholdCrossingDifficulty scans the history backward in non-overlapping
// windows of the given size, most recent first, and returns the lowest
// difficulty inside the first window whose accuracy is at least threshold.
// The boolean is false when no full window qualifies.
func ThresholdCrossingDifficulty(outcomes []Outcome, window int, threshold float64) (int, bool) {
	w, ok := crossingWindow(outcomes, window, threshold)
	if !ok {
		return 0, false
	}
	lowest := w[0].Difficulty
	for _, o := range w[1:] {
		lowest = min(lowest, o.Difficulty)
	}
	return lowest, true
}

// ThresholdCrossingMax is ThresholdCrossingDifficulty returning the highest
// difficulty of the qualifying window, for scales where higher is harder.
func ThresholdCrossingMax(outcomes []Outcome, window int, threshold float64) (int, bool) {
	w, ok := crossingWindow(outcomes, window, threshold)
	if !ok {
		return 0, false
	}
	highest := w[0].Difficulty
	for _, o := range w[1:] {
		highest = max(highest, o.Difficulty)
	}
	return highest, true
}

func crossingWindow(outcomes []Outcome, window int, threshold float64) ([]Outcome, bool) {
	if window <= 0 {
		return nil, false
	}
	for end := len(outcomes); end-window >= 0; end -= window {
		if w := outcomes[end-window : end]; rate(w) >= threshold {
			return w, true
		}
	}
	return nil, false
}

// Trend compares the last window against the window before it. Positive
// values mean accuracy is improving. Returns 0 if either window is empty.
func Trend(outcomes []Outcome, window int) float64 {
	if window <= 0 || len(outcomes) == 0 {
		return 0
	}
	recent := tail(outcomes, window)
	rest := outcomes[:len(outcomes)-len(recent)]
	previous := tail(rest, window)
	if len(previous) == 0 {
		return 0
	}
	return rate(recent) - rate(previous)
}

func tail(outcomes []Outcome, window int) []Outcome {
	if window <= 0 || window >= len(outcomes) {
		return outcomes
	}
	return outcomes[len(outcomes)-window:]
}

func rate(outcomes []Outcome) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	correct := 0
	for _, o := range outcomes {
		if o.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(outcomes))
}
