package session

import (
	"fmt"
	"math"
	"time"

	"github.com/abhisek/neurogym/internal/accuracy"
	"github.com/abhisek/neurogym/internal/difficulty"
)

// Summary holds the aggregated result of a session.
type Summary struct {
	SessionID string
	Exercise  string

	PlannedTrials  int
	TotalTrials    int
	CorrectTrials  int
	TimedOutTrials int
	Accuracy       float64

	// AverageResponseTime is in milliseconds over trials that have one.
	AverageResponseTime float64

	InitialDifficulty    int
	FinalDifficulty      int
	MaxDifficultyReached int
	MinDifficultyReached int
	HardestReached       int
	ThresholdDifficulty  int
	Adjustments          int

	// BlockAccuracies is set for block-adjusted exercises.
	BlockAccuracies []float64

	Score        int
	Completed    bool
	StoppedEarly bool
	StartedAt    time.Time
	Duration     time.Duration
}

// FinalizeSession reduces the trials played so far into a Summary. It may be
// called while trials remain (for an early stop preview) or after
// completion, and does not change the sequencer.
func (s *Sequencer) FinalizeSession() (Summary, error) {
	if s.phase == PhaseIdle {
		return Summary{}, fmt.Errorf("finalize session: sequencer is %s: %w", s.phase, ErrIllegalState)
	}

	h := s.adapter.History()
	stats := s.adapter.Stats()
	final := s.adapter.CurrentDifficulty()

	sum := Summary{
		SessionID:           s.sessionID,
		Exercise:            s.desc.ID,
		PlannedTrials:       s.totalTrials,
		TotalTrials:         len(s.trials),
		CorrectTrials:       h.CorrectCount(),
		Accuracy:            h.Accuracy(0),
		AverageResponseTime: h.AverageResponseMs(),
		InitialDifficulty:   s.initialDifficulty,
		FinalDifficulty:     final,
		Adjustments:         stats.Adjustments,
		Score:               int(math.Round(s.score)),
		Completed:           s.phase == PhaseComplete && !s.stoppedEarly,
		StoppedEarly:        s.stoppedEarly,
		StartedAt:           s.startedAt,
	}

	for _, t := range s.trials {
		if t.TimedOut {
			sum.TimedOutTrials++
		}
	}

	// The adapter's range includes an adjustment made by the last trial,
	// which no played trial ran at.
	sum.MaxDifficultyReached = stats.MaxDifficultyReached
	sum.MinDifficultyReached = stats.MinDifficultyReached
	sum.HardestReached = sum.MaxDifficultyReached
	if s.desc.Difficulty.Direction == difficulty.Inverted {
		sum.HardestReached = sum.MinDifficultyReached
	}

	sum.ThresholdDifficulty = threshold(h, s.desc.Difficulty.Direction, final)

	if ba, ok := s.adapter.(interface{ Blocks() []float64 }); ok {
		sum.BlockAccuracies = ba.Blocks()
	}

	end := s.endedAt
	if end.IsZero() {
		end = s.now()
	}
	sum.Duration = end.Sub(s.startedAt)

	return sum, nil
}

// threshold returns the hardest difficulty inside the most recent window
// played at ThresholdAccuracy or better, or fallback when no window qualifies.
func threshold(h *accuracy.History, dir difficulty.Direction, fallback int) int {
	cross := h.ThresholdCrossingMax
	if dir == difficulty.Inverted {
		cross = h.ThresholdCrossingDifficulty
	}
	if d, ok := cross(difficulty.ThresholdWindow, difficulty.ThresholdAccuracy); ok {
		return d
	}
	return fallback
}
