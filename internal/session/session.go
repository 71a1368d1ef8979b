package session

import (
	"fmt"
	"maps"
	"math/rand/v2"
	"time"

	"github.com/abhisek/neurogym/internal/accuracy"
	"github.com/abhisek/neurogym/internal/difficulty"
	"github.com/abhisek/neurogym/internal/exercise"
)

// Sequencer drives a single exercise session: it derives trial parameters
// from the adapter's current difficulty, feeds results back, keeps score and
// decides when the session is over.
//
// A Sequencer owns no timers and is not safe for concurrent use. The caller
// may wait arbitrarily long between NextTrialParameters and a submit.
type Sequencer struct {
	rng       *rand.Rand
	now       func() time.Time
	sessionID string

	phase        Phase
	desc         exercise.Descriptor
	adapter      difficulty.Adapter
	totalTrials  int
	stoppedEarly bool

	pending *exercise.TrialSpec
	trials  []Trial
	score   float64

	initialDifficulty int
	startedAt         time.Time
	endedAt           time.Time

	blockCorrect int
	blockTrials  int
}

// Response is the scored answer to one trial.
type Response struct {
	// Correct is used when Dimensions is nil.
	Correct bool

	// Dimensions holds per-part correctness for multi-part trials. When set,
	// the trial is correct only if every declared dimension is true.
	Dimensions map[string]bool

	// ResponseTimeMs is accuracy.NoResponse when no answer was given.
	ResponseTimeMs int

	// TimedOut marks a trial that ran out of time. It is recorded for
	// analysis only; the trial is scored as incorrect.
	TimedOut bool
}

// SubmitResult reports the effect of one submitted trial.
type SubmitResult struct {
	SessionComplete   bool
	DifficultyChanged bool
	Difficulty        int
	BlockCompleted    bool
	BlockAccuracy     float64
	TrialScore        float64
}

// StartSession begins a session of totalTrials trials of the described
// exercise. It may be called only once per sequencer.
func (s *Sequencer) StartSession(totalTrials int, d exercise.Descriptor) error {
	if s.phase != PhaseIdle {
		return fmt.Errorf("start session: sequencer is %s: %w", s.phase, ErrIllegalState)
	}
	if totalTrials < 1 {
		return fmt.Errorf("start session: %w", &difficulty.ConfigError{
			Field:  "total_trials",
			Reason: fmt.Sprintf("%d is not positive", totalTrials),
		})
	}
	if d.Granularity == exercise.PerBlock && d.BlockSize < 1 {
		return fmt.Errorf("start session: %w", &difficulty.ConfigError{
			Field:  "block_size",
			Reason: fmt.Sprintf("%d is not positive", d.BlockSize),
		})
	}

	a, err := d.NewAdapter()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	if d.Granularity == exercise.PerBlock {
		if _, ok := a.(difficulty.BlockAdapter); !ok {
			return fmt.Errorf("start session: %s adapter cannot process blocks: %w", d.ID, ErrInvalidConfig)
		}
	}

	d.TotalTrials = totalTrials
	s.desc = d
	s.adapter = a
	s.totalTrials = totalTrials
	s.trials = nil
	s.score = 0
	s.pending = nil
	s.blockCorrect, s.blockTrials = 0, 0
	s.initialDifficulty = a.CurrentDifficulty()
	s.startedAt = s.now()
	s.phase = PhaseInSession
	return nil
}

// NextTrialParameters returns the parameters of the next trial. Calling it
// again before submitting returns the same trial.
func (s *Sequencer) NextTrialParameters() (exercise.TrialSpec, error) {
	if s.phase != PhaseInSession {
		return exercise.TrialSpec{}, fmt.Errorf("next trial: sequencer is %s: %w", s.phase, ErrIllegalState)
	}
	if s.pending == nil {
		spec := exercise.Params(s.desc, s.adapter.CurrentDifficulty(), len(s.trials), s.rng)
		s.pending = &spec
	}
	return *s.pending, nil
}

// SubmitTrialResult scores the pending trial with a single correct flag.
func (s *Sequencer) SubmitTrialResult(correct bool, responseTimeMs int) (SubmitResult, error) {
	return s.Submit(Response{Correct: correct, ResponseTimeMs: responseTimeMs})
}

// SubmitDimensions scores the pending trial from per-dimension correctness.
func (s *Sequencer) SubmitDimensions(dims map[string]bool, responseTimeMs int) (SubmitResult, error) {
	if dims == nil {
		dims = map[string]bool{}
	}
	return s.Submit(Response{Dimensions: dims, ResponseTimeMs: responseTimeMs})
}

// SubmitTimeout scores the pending trial as a timeout.
func (s *Sequencer) SubmitTimeout() (SubmitResult, error) {
	return s.Submit(Response{TimedOut: true, ResponseTimeMs: accuracy.NoResponse})
}

// Submit feeds the response to the pending trial into the adapter.
func (s *Sequencer) Submit(r Response) (SubmitResult, error) {
	if s.phase != PhaseInSession {
		return SubmitResult{}, fmt.Errorf("submit trial: sequencer is %s: %w", s.phase, ErrIllegalState)
	}
	if s.pending == nil {
		return SubmitResult{}, fmt.Errorf("submit trial: no trial pending: %w", ErrIllegalState)
	}
	spec := *s.pending

	correct, credit := r.Correct, 0.0
	if r.Dimensions != nil {
		correct = s.desc.Reduce(r.Dimensions)
		credit = s.desc.Credit(r.Dimensions)
	} else if correct {
		credit = 1
	}
	if r.TimedOut {
		correct, credit = false, 0
	}

	outcome := accuracy.Outcome{
		Correct:        correct,
		ResponseTimeMs: r.ResponseTimeMs,
		TimedOut:       r.TimedOut,
	}
	res, err := s.adapter.RecordOutcome(outcome)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("submit trial: %w", err)
	}

	trialScore := exercise.TrialScore(spec.Level, credit)
	s.score += trialScore
	s.pending = nil

	out := SubmitResult{
		DifficultyChanged: res.Adjusted,
		TrialScore:        trialScore,
	}

	last := len(s.trials)+1 == s.totalTrials
	if s.desc.Granularity == exercise.PerBlock {
		s.blockTrials++
		if correct {
			s.blockCorrect++
		}
		if s.blockTrials == s.desc.BlockSize || last {
			acc, adjusted, err := s.closeBlock()
			if err != nil {
				return SubmitResult{}, fmt.Errorf("submit trial: %w", err)
			}
			out.BlockCompleted = true
			out.BlockAccuracy = acc
			out.DifficultyChanged = adjusted
		}
	}

	out.Difficulty = s.adapter.CurrentDifficulty()
	s.trials = append(s.trials, Trial{
		Spec:            spec,
		Correct:         correct,
		Dimensions:      maps.Clone(r.Dimensions),
		Credit:          credit,
		ResponseTimeMs:  r.ResponseTimeMs,
		TimedOut:        r.TimedOut,
		Score:           trialScore,
		DifficultyAfter: out.Difficulty,
		Adjusted:        out.DifficultyChanged,
		At:              s.now(),
	})

	if last {
		s.phase = PhaseComplete
		s.endedAt = s.now()
		out.SessionComplete = true
	}
	return out, nil
}

func (s *Sequencer) closeBlock() (float64, bool, error) {
	acc := float64(s.blockCorrect) / float64(s.blockTrials)
	s.blockCorrect, s.blockTrials = 0, 0
	ba := s.adapter.(difficulty.BlockAdapter)
	res, err := ba.ProcessBlock(acc)
	if err != nil {
		return 0, false, err
	}
	return acc, res.Adjusted, nil
}

// Stop ends an in-progress session early. Any partial block is discarded.
// Stopping an idle or completed sequencer is an error.
func (s *Sequencer) Stop() error {
	if s.phase != PhaseInSession {
		return fmt.Errorf("stop session: sequencer is %s: %w", s.phase, ErrIllegalState)
	}
	s.phase = PhaseComplete
	s.stoppedEarly = true
	s.pending = nil
	s.endedAt = s.now()
	return nil
}

// Phase returns the current lifecycle phase.
func (s *Sequencer) Phase() Phase { return s.phase }

// SessionID returns the session's ID.
func (s *Sequencer) SessionID() string { return s.sessionID }

// Descriptor returns the exercise being played.
func (s *Sequencer) Descriptor() exercise.Descriptor { return s.desc }

// Adapter returns the session's difficulty adapter, or nil before start.
func (s *Sequencer) Adapter() difficulty.Adapter { return s.adapter }

// TotalTrials returns the planned number of trials.
func (s *Sequencer) TotalTrials() int { return s.totalTrials }

// TrialsCompleted returns the number of trials submitted so far.
func (s *Sequencer) TrialsCompleted() int { return len(s.trials) }

// Score returns the accumulated score.
func (s *Sequencer) Score() float64 { return s.score }

// CurrentDifficulty returns the difficulty the next trial will use.
func (s *Sequencer) CurrentDifficulty() int {
	if s.adapter == nil {
		return 0
	}
	return s.adapter.CurrentDifficulty()
}

// Trials returns a copy of the played trials, oldest first.
func (s *Sequencer) Trials() []Trial {
	out := make([]Trial, len(s.trials))
	copy(out, s.trials)
	return out
}

// LastTrial returns the most recently submitted trial.
func (s *Sequencer) LastTrial() (Trial, bool) {
	if len(s.trials) == 0 {
		return Trial{}, false
	}
	return s.trials[len(s.trials)-1], true
}
