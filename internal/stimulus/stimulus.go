// Package stimulus turns the numeric trial parameters of an exercise into
// concrete terminal content and scores typed answers against it.
package stimulus

import "time"

// Ink colours used by the Stroop exercise.
const (
	Red    = "red"
	Green  = "green"
	Blue   = "blue"
	Yellow = "yellow"
)

// Frame is one screen of presentation content.
type Frame struct {
	Lines    []string
	Color    string // ink colour for the whole frame, "" for default
	Duration time.Duration
}

// Stimulus is the content of one trial. Frames are shown in order for their
// durations; then Probe is shown with Prompt while the player answers for
// at most ResponseWindow.
type Stimulus struct {
	Frames         []Frame
	Probe          Frame
	Prompt         string
	ResponseWindow time.Duration

	// Expected is the correct answer, for feedback.
	Expected string

	// SilenceIsAnswer means running out of time is scored as an empty
	// answer rather than a timeout. Used by n-back, where "no match" is
	// given by not responding.
	SilenceIsAnswer bool

	score func(answer string) map[string]bool
}

// Score returns per-dimension correctness of answer.
func (s Stimulus) Score(answer string) map[string]bool {
	if s.score == nil {
		return map[string]bool{}
	}
	return s.score(answer)
}

// DisplayDuration is the total time of the presentation frames.
func (s Stimulus) DisplayDuration() time.Duration {
	var d time.Duration
	for _, f := range s.Frames {
		d += f.Duration
	}
	return d
}
