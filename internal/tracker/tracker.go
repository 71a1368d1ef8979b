// Package tracker persists played trials and sessions and resolves where a
// new session of an exercise should start.
package tracker

import (
	"context"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/abhisek/neurogym/internal/exercise"
	"github.com/abhisek/neurogym/internal/session"
	"github.com/abhisek/neurogym/internal/store"
)

// SnapshotVersion is written into every levels snapshot.
const SnapshotVersion = 1

// KeepSnapshots is how many levels snapshots are retained.
const KeepSnapshots = 20

// Tracker writes events for one player. A nil snapshot repo disables level
// snapshots; starting difficulties then come from session events alone.
type Tracker struct {
	events    store.EventRepo
	snapshots store.SnapshotRepo
	logger    *zap.Logger
}

// New creates a Tracker. logger may be nil.
func New(events store.EventRepo, snapshots store.SnapshotRepo, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{events: events, snapshots: snapshots, logger: logger}
}

// Prepare returns d with its initial difficulty moved to where the player
// left off: the latest levels snapshot, else the final difficulty of the
// last finished session. The value is clamped into d's bounds. Lookup
// failures are logged and leave d unchanged.
func (t *Tracker) Prepare(ctx context.Context, d exercise.Descriptor) exercise.Descriptor {
	level, ok, err := t.Level(ctx, d.ID)
	if err != nil {
		t.logger.Warn("resolve starting difficulty", zap.String("exercise", d.ID), zap.Error(err))
		return d
	}
	if !ok {
		return d
	}
	d.Difficulty.Initial = d.Difficulty.Clamp(level)
	t.logger.Debug("resume difficulty",
		zap.String("exercise", d.ID),
		zap.Int("difficulty", d.Difficulty.Initial))
	return d
}

// Level returns the player's last known difficulty for an exercise.
func (t *Tracker) Level(ctx context.Context, exerciseID string) (int, bool, error) {
	if t.snapshots != nil {
		snap, err := t.snapshots.Latest(ctx)
		if err != nil {
			return 0, false, err
		}
		if snap != nil {
			if v, ok := snap.Data.Levels[exerciseID]; ok {
				return v, true, nil
			}
		}
	}
	return t.events.LastFinalDifficulty(ctx, exerciseID)
}

// Levels returns the latest snapshot of per-exercise levels, or an empty map.
func (t *Tracker) Levels(ctx context.Context) (map[string]int, error) {
	if t.snapshots == nil {
		return map[string]int{}, nil
	}
	snap, err := t.snapshots.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("load levels: %w", err)
	}
	if snap == nil || snap.Data.Levels == nil {
		return map[string]int{}, nil
	}
	return maps.Clone(snap.Data.Levels), nil
}

// SessionStarted records the start of the sequencer's session.
func (t *Tracker) SessionStarted(ctx context.Context, seq *session.Sequencer) error {
	d := seq.Descriptor()
	err := t.events.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID:         seq.SessionID(),
		Exercise:          d.ID,
		Action:            store.ActionStart,
		PlannedTrials:     seq.TotalTrials(),
		InitialDifficulty: seq.CurrentDifficulty(),
	})
	if err != nil {
		return fmt.Errorf("record session start: %w", err)
	}
	t.logger.Info("session started",
		zap.String("session_id", seq.SessionID()),
		zap.String("exercise", d.ID),
		zap.Int("difficulty", seq.CurrentDifficulty()),
		zap.Int("trials", seq.TotalTrials()))
	return nil
}

// TrialRecorded records one submitted trial.
func (t *Tracker) TrialRecorded(ctx context.Context, sessionID string, tr session.Trial) error {
	err := t.events.AppendTrialEvent(ctx, store.TrialEventData{
		SessionID:       sessionID,
		Exercise:        tr.Spec.Exercise,
		TrialIndex:      tr.Spec.Index,
		Difficulty:      tr.Spec.Difficulty,
		Level:           tr.Spec.Level,
		Correct:         tr.Correct,
		Credit:          tr.Credit,
		ResponseTimeMs:  tr.ResponseTimeMs,
		TimedOut:        tr.TimedOut,
		DifficultyAfter: tr.DifficultyAfter,
		Adjusted:        tr.Adjusted,
		Dimensions:      tr.Dimensions,
	})
	if err != nil {
		return fmt.Errorf("record trial %d: %w", tr.Spec.Index, err)
	}
	if tr.Adjusted {
		t.logger.Debug("difficulty adjusted",
			zap.String("session_id", sessionID),
			zap.String("exercise", tr.Spec.Exercise),
			zap.Int("from", tr.Spec.Difficulty),
			zap.Int("difficulty", tr.DifficultyAfter))
	}
	return nil
}

// SessionFinished records the summary and updates the levels snapshot.
func (t *Tracker) SessionFinished(ctx context.Context, sum session.Summary) error {
	err := t.events.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID:           sum.SessionID,
		Exercise:            sum.Exercise,
		Action:              store.ActionEnd,
		PlannedTrials:       sum.PlannedTrials,
		TotalTrials:         sum.TotalTrials,
		CorrectTrials:       sum.CorrectTrials,
		TimedOutTrials:      sum.TimedOutTrials,
		Accuracy:            sum.Accuracy,
		AvgResponseMs:       sum.AverageResponseTime,
		InitialDifficulty:   sum.InitialDifficulty,
		FinalDifficulty:     sum.FinalDifficulty,
		MaxDifficulty:       sum.MaxDifficultyReached,
		MinDifficulty:       sum.MinDifficultyReached,
		HardestDifficulty:   sum.HardestReached,
		ThresholdDifficulty: sum.ThresholdDifficulty,
		Score:               sum.Score,
		Completed:           sum.Completed,
		DurationMs:          sum.Duration.Milliseconds(),
	})
	if err != nil {
		return fmt.Errorf("record session end: %w", err)
	}

	t.logger.Info("session finished",
		zap.String("session_id", sum.SessionID),
		zap.String("exercise", sum.Exercise),
		zap.Int("trials", sum.TotalTrials),
		zap.Float64("accuracy", sum.Accuracy),
		zap.Int("difficulty", sum.FinalDifficulty),
		zap.Int("score", sum.Score),
		zap.Bool("completed", sum.Completed))

	// A session without trials says nothing about the player's level.
	if sum.TotalTrials == 0 || t.snapshots == nil {
		return nil
	}
	return t.saveLevel(ctx, sum.Exercise, sum.FinalDifficulty)
}

func (t *Tracker) saveLevel(ctx context.Context, exerciseID string, level int) error {
	levels, err := t.Levels(ctx)
	if err != nil {
		return err
	}
	levels[exerciseID] = level

	snap := &store.Snapshot{Data: store.SnapshotData{Version: SnapshotVersion, Levels: levels}}
	if err := t.snapshots.Save(ctx, snap); err != nil {
		return fmt.Errorf("save levels: %w", err)
	}
	if err := t.snapshots.Prune(ctx, KeepSnapshots); err != nil {
		t.logger.Warn("prune snapshots", zap.Error(err))
	}
	return nil
}
