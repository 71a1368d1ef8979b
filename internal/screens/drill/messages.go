package drill

import "github.com/abhisek/neurogym/internal/stimulus"

// Timed messages carry the trial index they were scheduled for and the timer
// generation, so a late tick from an earlier trial or from before a pause is
// ignored.

// stimulusReadyMsg is sent when the content of a trial has been built.
type stimulusReadyMsg struct {
	Trial    int
	Stimulus stimulus.Stimulus
	Err      error
}

// frameDoneMsg is sent when a presentation frame has been shown for its
// duration.
type frameDoneMsg struct {
	Trial int
	Frame int
	Gen   int
}

// deadlineMsg is sent when the response window of a trial closes.
type deadlineMsg struct {
	Trial int
	Gen   int
}

// feedbackDoneMsg is sent when the feedback display period ends.
type feedbackDoneMsg struct {
	Trial int
	Gen   int
}
