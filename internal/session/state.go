package session

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/neurogym/internal/difficulty"
	"github.com/abhisek/neurogym/internal/exercise"
)

// Errors re-exported so callers need not import the difficulty package.
var (
	ErrIllegalState  = difficulty.ErrIllegalState
	ErrInvalidConfig = difficulty.ErrInvalidConfig
)

// Phase represents the lifecycle phase of a sequencer.
type Phase int

const (
	PhaseIdle      Phase = iota // Created, no session started
	PhaseInSession              // Serving trials
	PhaseComplete               // All trials done or stopped; terminal
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseInSession:
		return "in-session"
	case PhaseComplete:
		return "complete"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Trial is one played trial as recorded by the sequencer.
type Trial struct {
	Spec            exercise.TrialSpec
	Correct         bool
	Dimensions      map[string]bool
	Credit          float64
	ResponseTimeMs  int
	TimedOut        bool
	Score           float64
	DifficultyAfter int
	Adjusted        bool
	At              time.Time
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithRand sets the source used for trial content selection.
func WithRand(r *rand.Rand) Option {
	return func(s *Sequencer) { s.rng = r }
}

// WithClock overrides time.Now for timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(s *Sequencer) { s.now = now }
}

// WithSessionID sets the session ID instead of generating a UUID.
func WithSessionID(id string) Option {
	return func(s *Sequencer) { s.sessionID = id }
}

// NewSequencer creates an idle sequencer.
func NewSequencer(opts ...Option) *Sequencer {
	s := &Sequencer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.sessionID == "" {
		s.sessionID = uuid.New().String()
	}
	return s
}
