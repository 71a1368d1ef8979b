package session

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/abhisek/neurogym/internal/accuracy"
	"github.com/abhisek/neurogym/internal/exercise"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func testSequencer() *Sequencer {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	return NewSequencer(
		WithRand(rand.New(rand.NewPCG(1, 1))),
		WithClock(clk.now),
		WithSessionID("test-session-id"),
	)
}

func lookup(t *testing.T, id string) exercise.Descriptor {
	t.Helper()
	d, err := exercise.Lookup(id)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func play(t *testing.T, s *Sequencer, correct bool) SubmitResult {
	t.Helper()
	if _, err := s.NextTrialParameters(); err != nil {
		t.Fatalf("NextTrialParameters: %v", err)
	}
	r, err := s.SubmitTrialResult(correct, 1000)
	if err != nil {
		t.Fatalf("SubmitTrialResult: %v", err)
	}
	return r
}

func TestSequencer_Lifecycle(t *testing.T) {
	s := testSequencer()
	if s.Phase() != PhaseIdle {
		t.Fatalf("Phase = %s, want idle", s.Phase())
	}
	if err := s.StartSession(3, lookup(t, exercise.DigitSpan)); err != nil {
		t.Fatal(err)
	}
	if s.Phase() != PhaseInSession {
		t.Fatalf("Phase = %s, want in-session", s.Phase())
	}

	for i := 0; i < 2; i++ {
		if r := play(t, s, true); r.SessionComplete {
			t.Fatalf("trial %d reported completion", i)
		}
	}
	r := play(t, s, true)
	if !r.SessionComplete {
		t.Error("last trial should complete the session")
	}
	if s.Phase() != PhaseComplete {
		t.Errorf("Phase = %s, want complete", s.Phase())
	}

	if _, err := s.NextTrialParameters(); !errors.Is(err, ErrIllegalState) {
		t.Errorf("NextTrialParameters after completion err = %v, want ErrIllegalState", err)
	}
	if err := s.StartSession(3, lookup(t, exercise.DigitSpan)); !errors.Is(err, ErrIllegalState) {
		t.Errorf("restart err = %v, want ErrIllegalState", err)
	}
}

func TestSequencer_StartErrors(t *testing.T) {
	s := testSequencer()
	if err := s.StartSession(0, lookup(t, exercise.DigitSpan)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("zero trials err = %v, want ErrInvalidConfig", err)
	}
	if s.Phase() != PhaseIdle {
		t.Errorf("failed start moved phase to %s", s.Phase())
	}

	bad := lookup(t, exercise.DigitSpan)
	bad.Difficulty.Min, bad.Difficulty.Max = 9, 3
	if err := s.StartSession(5, bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("min > max err = %v, want ErrInvalidConfig", err)
	}
}

func TestSequencer_IdleOperations(t *testing.T) {
	s := testSequencer()
	if _, err := s.NextTrialParameters(); !errors.Is(err, ErrIllegalState) {
		t.Errorf("NextTrialParameters err = %v", err)
	}
	if _, err := s.SubmitTrialResult(true, 100); !errors.Is(err, ErrIllegalState) {
		t.Errorf("SubmitTrialResult err = %v", err)
	}
	if _, err := s.FinalizeSession(); !errors.Is(err, ErrIllegalState) {
		t.Errorf("FinalizeSession err = %v", err)
	}
}

func TestSequencer_SubmitWithoutPending(t *testing.T) {
	s := testSequencer()
	if err := s.StartSession(5, lookup(t, exercise.DigitSpan)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SubmitTrialResult(true, 100); !errors.Is(err, ErrIllegalState) {
		t.Errorf("err = %v, want ErrIllegalState", err)
	}
}

func TestSequencer_PendingSpecStable(t *testing.T) {
	s := testSequencer()
	if err := s.StartSession(5, lookup(t, exercise.VisualSearch)); err != nil {
		t.Fatal(err)
	}
	a, _ := s.NextTrialParameters()
	b, _ := s.NextTrialParameters()
	if a != b {
		t.Errorf("repeated NextTrialParameters differ:\n%+v\n%+v", a, b)
	}
}

func TestSequencer_DifficultyFollowsAdapter(t *testing.T) {
	s := testSequencer()
	if err := s.StartSession(10, lookup(t, exercise.DigitSpan)); err != nil {
		t.Fatal(err)
	}
	play(t, s, true)
	r := play(t, s, true)
	if !r.DifficultyChanged || r.Difficulty != 4 {
		t.Errorf("result = %+v, want difficulty 4 changed", r)
	}
	spec, _ := s.NextTrialParameters()
	if spec.SequenceLength != 4 {
		t.Errorf("SequenceLength = %d, want 4", spec.SequenceLength)
	}
}

func TestSequencer_InvertedExercise(t *testing.T) {
	s := testSequencer()
	if err := s.StartSession(10, lookup(t, exercise.UFOVBasic)); err != nil {
		t.Fatal(err)
	}
	play(t, s, true)
	play(t, s, true)
	spec, _ := s.NextTrialParameters()
	if spec.StimulusDurationMs != 450 {
		t.Errorf("StimulusDurationMs = %d, want 450", spec.StimulusDurationMs)
	}
}

func TestSequencer_BlockGranularity(t *testing.T) {
	d := lookup(t, exercise.DualNBack)
	d.BlockSize = 4

	s := testSequencer()
	if err := s.StartSession(10, d); err != nil {
		t.Fatal(err)
	}

	// First block all correct: N goes 2 -> 3 on the fourth trial only.
	for i := 0; i < 3; i++ {
		if r := play(t, s, true); r.BlockCompleted || r.DifficultyChanged {
			t.Fatalf("trial %d: unexpected block result %+v", i, r)
		}
	}
	r := play(t, s, true)
	if !r.BlockCompleted || !r.DifficultyChanged || r.Difficulty != 3 {
		t.Fatalf("block end = %+v, want completed block raising N to 3", r)
	}
	if r.BlockAccuracy != 1 {
		t.Errorf("BlockAccuracy = %v, want 1", r.BlockAccuracy)
	}

	// Second block all wrong: back to 2.
	for i := 0; i < 4; i++ {
		r = play(t, s, false)
	}
	if r.Difficulty != 2 {
		t.Errorf("after failed block Difficulty = %d, want 2", r.Difficulty)
	}

	// Trailing partial block of two trials is processed at session end.
	play(t, s, true)
	r = play(t, s, true)
	if !r.SessionComplete || !r.BlockCompleted {
		t.Errorf("final trial = %+v, want completed session and block", r)
	}

	sum, err := s.FinalizeSession()
	if err != nil {
		t.Fatal(err)
	}
	if len(sum.BlockAccuracies) != 3 {
		t.Errorf("BlockAccuracies = %v, want 3 blocks", sum.BlockAccuracies)
	}
}

func TestSequencer_MultiDimensional(t *testing.T) {
	s := testSequencer()
	if err := s.StartSession(4, lookup(t, exercise.UFOVComplex)); err != nil {
		t.Fatal(err)
	}

	if _, err := s.NextTrialParameters(); err != nil {
		t.Fatal(err)
	}
	r, err := s.SubmitDimensions(map[string]bool{exercise.DimCentral: true, exercise.DimPeripheral: false}, 900)
	if err != nil {
		t.Fatal(err)
	}
	// Level 1 at 500ms, half credit.
	if r.TrialScore != 5 {
		t.Errorf("TrialScore = %v, want 5", r.TrialScore)
	}
	if s.Trials()[0].Correct {
		t.Error("partially correct trial must count as incorrect")
	}

	if _, err := s.NextTrialParameters(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SubmitDimensions(map[string]bool{exercise.DimCentral: true}, 900); err != nil {
		t.Fatal(err)
	}
	if s.Trials()[1].Correct {
		t.Error("missing dimension must count as incorrect")
	}
}

func TestSequencer_Timeout(t *testing.T) {
	s := testSequencer()
	if err := s.StartSession(2, lookup(t, exercise.Stroop)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.NextTrialParameters(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SubmitTimeout(); err != nil {
		t.Fatal(err)
	}
	tr := s.Trials()[0]
	if tr.Correct || !tr.TimedOut || tr.ResponseTimeMs != accuracy.NoResponse {
		t.Errorf("trial = %+v, want incorrect timeout without response time", tr)
	}
}

func TestFinalizeSession_Summary(t *testing.T) {
	s := testSequencer()
	if err := s.StartSession(6, lookup(t, exercise.DigitSpan)); err != nil {
		t.Fatal(err)
	}
	for _, ok := range []bool{true, true, true, true, false, false} {
		play(t, s, ok)
	}

	sum, err := s.FinalizeSession()
	if err != nil {
		t.Fatal(err)
	}
	if sum.SessionID != "test-session-id" || sum.Exercise != exercise.DigitSpan {
		t.Errorf("identity = (%q, %q)", sum.SessionID, sum.Exercise)
	}
	if sum.TotalTrials != 6 || sum.CorrectTrials != 4 {
		t.Errorf("trials = %d/%d, want 4/6", sum.CorrectTrials, sum.TotalTrials)
	}
	if sum.AverageResponseTime != 1000 {
		t.Errorf("AverageResponseTime = %v, want 1000", sum.AverageResponseTime)
	}
	// Played at 3,3,4,4,5,5; final after two misses is 4.
	if sum.MaxDifficultyReached != 5 || sum.MinDifficultyReached != 3 {
		t.Errorf("range = [%d,%d], want [3,5]", sum.MinDifficultyReached, sum.MaxDifficultyReached)
	}
	if sum.InitialDifficulty != 3 || sum.FinalDifficulty != 4 {
		t.Errorf("initial/final = %d/%d, want 3/4", sum.InitialDifficulty, sum.FinalDifficulty)
	}
	// Levels 1,1,2,2 correct; the misses score nothing.
	if sum.Score != 60 {
		t.Errorf("Score = %d, want 60", sum.Score)
	}
	if !sum.Completed || sum.StoppedEarly {
		t.Errorf("Completed = %v, StoppedEarly = %v", sum.Completed, sum.StoppedEarly)
	}
	if sum.Duration <= 0 {
		t.Errorf("Duration = %v, want positive", sum.Duration)
	}
}

func TestFinalizeSession_LastTrialAdjustment(t *testing.T) {
	s := testSequencer()
	d := lookup(t, exercise.DigitSpan)
	if err := s.StartSession(2, d); err != nil {
		t.Fatal(err)
	}
	play(t, s, true)
	play(t, s, true)

	sum, err := s.FinalizeSession()
	if err != nil {
		t.Fatal(err)
	}
	// Both trials ran at 3; the second one moved the span to 4.
	if sum.FinalDifficulty != 4 {
		t.Fatalf("FinalDifficulty = %d, want 4", sum.FinalDifficulty)
	}
	if sum.MaxDifficultyReached != 4 || sum.HardestReached != 4 || sum.MinDifficultyReached != 3 {
		t.Errorf("range = [%d,%d] hardest %d, want [3,4] hardest 4",
			sum.MinDifficultyReached, sum.MaxDifficultyReached, sum.HardestReached)
	}
	if got := s.Adapter().Stats().MaxDifficultyReached; got != sum.MaxDifficultyReached {
		t.Errorf("adapter max %d != summary max %d", got, sum.MaxDifficultyReached)
	}
}

func TestFinalizeSession_ThresholdFollowsDirection(t *testing.T) {
	s := testSequencer()
	if err := s.StartSession(10, lookup(t, exercise.DigitSpan)); err != nil {
		t.Fatal(err)
	}
	for range 10 {
		play(t, s, true)
	}
	sum, _ := s.FinalizeSession()
	// Played at 3,3,4,4,5,5,6,6,7,7: the hardest span held is 7, not the
	// easiest one in the window.
	if sum.ThresholdDifficulty != 7 {
		t.Errorf("span ThresholdDifficulty = %d, want 7", sum.ThresholdDifficulty)
	}

	u := testSequencer()
	if err := u.StartSession(10, lookup(t, exercise.UFOVBasic)); err != nil {
		t.Fatal(err)
	}
	for range 10 {
		play(t, u, true)
	}
	usum, _ := u.FinalizeSession()
	if usum.ThresholdDifficulty != usum.MinDifficultyReached+50 {
		t.Errorf("ufov ThresholdDifficulty = %d, want fastest played duration %d",
			usum.ThresholdDifficulty, usum.MinDifficultyReached+50)
	}
}

func TestFinalizeSession_EarlyStop(t *testing.T) {
	s := testSequencer()
	if err := s.StartSession(10, lookup(t, exercise.DigitSpan)); err != nil {
		t.Fatal(err)
	}
	play(t, s, true)

	preview, err := s.FinalizeSession()
	if err != nil {
		t.Fatal(err)
	}
	if preview.Completed || preview.TotalTrials != 1 {
		t.Errorf("preview = %+v", preview)
	}
	if s.Phase() != PhaseInSession {
		t.Error("FinalizeSession must not change the phase")
	}

	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	sum, _ := s.FinalizeSession()
	if !sum.StoppedEarly || sum.Completed {
		t.Errorf("after Stop: StoppedEarly = %v, Completed = %v", sum.StoppedEarly, sum.Completed)
	}
	if err := s.Stop(); !errors.Is(err, ErrIllegalState) {
		t.Errorf("second Stop err = %v, want ErrIllegalState", err)
	}
}

func TestFinalizeSession_NoTrials(t *testing.T) {
	s := testSequencer()
	if err := s.StartSession(5, lookup(t, exercise.UFOVBasic)); err != nil {
		t.Fatal(err)
	}
	sum, err := s.FinalizeSession()
	if err != nil {
		t.Fatal(err)
	}
	if sum.Accuracy != 0 || sum.MaxDifficultyReached != 500 || sum.HardestReached != 500 {
		t.Errorf("empty summary = %+v", sum)
	}
}
