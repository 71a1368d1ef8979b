package tracker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/neurogym/internal/exercise"
	"github.com/abhisek/neurogym/internal/session"
	"github.com/abhisek/neurogym/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	s, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// playSpan plays n digit-span trials, all correct or all wrong, through tr.
func playSpan(t *testing.T, tr *Tracker, d exercise.Descriptor, n int, correct bool) session.Summary {
	t.Helper()
	ctx := context.Background()

	seq := session.NewSequencer()
	require.NoError(t, seq.StartSession(n, d))
	require.NoError(t, tr.SessionStarted(ctx, seq))
	for i := 0; i < n; i++ {
		_, err := seq.NextTrialParameters()
		require.NoError(t, err)
		_, err = seq.SubmitTrialResult(correct, 900)
		require.NoError(t, err)
		last, ok := seq.LastTrial()
		require.True(t, ok)
		require.NoError(t, tr.TrialRecorded(ctx, seq.SessionID(), last))
	}
	sum, err := seq.FinalizeSession()
	require.NoError(t, err)
	require.NoError(t, tr.SessionFinished(ctx, sum))
	return sum
}

func TestPrepareWithoutHistory(t *testing.T) {
	s := openStore(t)
	tr := New(s.EventRepo(), s.SnapshotRepo(), nil)

	d, _ := exercise.Lookup(exercise.DigitSpan)
	got := tr.Prepare(context.Background(), d)
	assert.Equal(t, d.Difficulty.Initial, got.Difficulty.Initial)
}

func TestSessionRoundTrip(t *testing.T) {
	s := openStore(t)
	core, logs := observer.New(zapcore.InfoLevel)
	tr := New(s.EventRepo(), s.SnapshotRepo(), zap.New(core))
	ctx := context.Background()

	d, _ := exercise.Lookup(exercise.DigitSpan)
	sum := playSpan(t, tr, d, 6, true)
	assert.Equal(t, 6, sum.FinalDifficulty)

	sessions, err := s.EventRepo().QuerySessions(ctx, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, sum.SessionID, sessions[0].SessionID)
	assert.Equal(t, 6, sessions[0].TotalTrials)
	assert.Equal(t, 6, sessions[0].FinalDifficulty)
	assert.True(t, sessions[0].Completed)

	trials, err := s.EventRepo().SessionTrials(ctx, sum.SessionID)
	require.NoError(t, err)
	require.Len(t, trials, 6)
	assert.Equal(t, 3, trials[0].Difficulty)
	assert.True(t, trials[1].Adjusted)

	levels, err := tr.Levels(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{exercise.DigitSpan: 6}, levels)

	assert.Equal(t, 1, logs.FilterMessage("session started").Len())
	assert.Equal(t, 1, logs.FilterMessage("session finished").Len())

	// The next session resumes where this one ended.
	next := tr.Prepare(ctx, d)
	assert.Equal(t, 6, next.Difficulty.Initial)
}

func TestPrepareClampsToBounds(t *testing.T) {
	s := openStore(t)
	tr := New(s.EventRepo(), s.SnapshotRepo(), nil)
	ctx := context.Background()

	d, _ := exercise.Lookup(exercise.DigitSpan)
	playSpan(t, tr, d, 14, true)

	narrowed, err := d.WithOverride(exercise.Override{Max: intPtr(5)})
	require.NoError(t, err)
	got := tr.Prepare(ctx, narrowed)
	assert.Equal(t, 5, got.Difficulty.Initial)
}

func TestPrepareFallsBackToSessionEvents(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	// Without a snapshot repo levels come from the last session event.
	tr := New(s.EventRepo(), nil, nil)
	d, _ := exercise.Lookup(exercise.DigitSpan)
	playSpan(t, tr, d, 4, true)

	snap, err := s.SnapshotRepo().Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)

	got := tr.Prepare(ctx, d)
	assert.Equal(t, 5, got.Difficulty.Initial)
}

func TestEmptySessionKeepsLevel(t *testing.T) {
	s := openStore(t)
	tr := New(s.EventRepo(), s.SnapshotRepo(), nil)
	ctx := context.Background()

	d, _ := exercise.Lookup(exercise.DigitSpan)
	playSpan(t, tr, d, 4, true)

	seq := session.NewSequencer()
	require.NoError(t, seq.StartSession(10, tr.Prepare(ctx, d)))
	require.NoError(t, seq.Stop())
	sum, err := seq.FinalizeSession()
	require.NoError(t, err)
	require.NoError(t, tr.SessionFinished(ctx, sum))

	level, ok, err := tr.Level(ctx, exercise.DigitSpan)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5, level)
}

type failingRepo struct {
	store.EventRepo
}

func (failingRepo) LastFinalDifficulty(context.Context, string) (int, bool, error) {
	return 0, false, errors.New("db locked")
}

func TestPrepareLogsLookupFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	tr := New(failingRepo{}, nil, zap.New(core))

	d, _ := exercise.Lookup(exercise.Stroop)
	got := tr.Prepare(context.Background(), d)
	assert.Equal(t, d.Difficulty.Initial, got.Difficulty.Initial)
	assert.Equal(t, 1, logs.FilterMessage("resolve starting difficulty").Len())
}

func intPtr(v int) *int { return &v }
