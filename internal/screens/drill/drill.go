// Package drill is the screen that plays one exercise session: it shows
// each trial's stimulus, collects the typed answer within the response
// window and feeds the result back into the session sequencer.
package drill

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/neurogym/internal/accuracy"
	"github.com/abhisek/neurogym/internal/exercise"
	"github.com/abhisek/neurogym/internal/router"
	"github.com/abhisek/neurogym/internal/screen"
	"github.com/abhisek/neurogym/internal/screens/summary"
	"github.com/abhisek/neurogym/internal/session"
	"github.com/abhisek/neurogym/internal/stimulus"
	"github.com/abhisek/neurogym/internal/ui/components"
	"github.com/abhisek/neurogym/internal/ui/layout"
)

// FeedbackDelay is how long the verdict of a trial stays on screen unless a
// key is pressed.
const FeedbackDelay = 1200 * time.Millisecond

// Recorder persists session progress. *tracker.Tracker implements it.
type Recorder interface {
	Prepare(ctx context.Context, d exercise.Descriptor) exercise.Descriptor
	SessionStarted(ctx context.Context, seq *session.Sequencer) error
	TrialRecorded(ctx context.Context, sessionID string, tr session.Trial) error
	SessionFinished(ctx context.Context, sum session.Summary) error
}

// Presenter turns trial parameters into content. *stimulus.Builder
// implements it.
type Presenter interface {
	Build(ctx context.Context, d exercise.Descriptor, spec exercise.TrialSpec) (stimulus.Stimulus, error)
}

type phase int

const (
	phaseLoading phase = iota
	phasePresenting
	phaseAnswering
	phaseFeedback
	phaseFinished
)

// feedback is the outcome of the last submitted trial.
type feedback struct {
	trial  session.Trial
	result session.SubmitResult
}

// DrillScreen plays one session of an exercise.
type DrillScreen struct {
	desc      exercise.Descriptor
	recorder  Recorder
	presenter Presenter
	logger    *zap.Logger
	now       func() time.Time
	rng       *rand.Rand
	trials    int

	seq         *session.Sequencer
	phase       phase
	spec        exercise.TrialSpec
	stim        stimulus.Stimulus
	frame       int
	answerStart time.Time
	input       components.AnswerInput
	last        feedback

	// timers is bumped whenever outstanding ticks must be ignored.
	timers      int
	confirmQuit bool
	pausedAt    time.Time
	errMsg      string
}

var _ screen.Screen = (*DrillScreen)(nil)
var _ screen.KeyHintProvider = (*DrillScreen)(nil)
var _ screen.EscapeHandler = (*DrillScreen)(nil)
var _ screen.StatusProvider = (*DrillScreen)(nil)

// Option configures a DrillScreen.
type Option func(*DrillScreen)

// WithTrials overrides the exercise's default session length.
func WithTrials(n int) Option {
	return func(s *DrillScreen) { s.trials = n }
}

// WithClock sets the time source for response times.
func WithClock(now func() time.Time) Option {
	return func(s *DrillScreen) { s.now = now }
}

// WithRand sets the source of trial parameter variation.
func WithRand(r *rand.Rand) Option {
	return func(s *DrillScreen) { s.rng = r }
}

// New creates a DrillScreen for d. logger may be nil.
func New(d exercise.Descriptor, recorder Recorder, presenter Presenter, logger *zap.Logger, opts ...Option) *DrillScreen {
	s := &DrillScreen{
		desc:      d,
		recorder:  recorder,
		presenter: presenter,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	seqOpts := []session.Option{session.WithClock(s.now)}
	if s.rng != nil {
		seqOpts = append(seqOpts, session.WithRand(s.rng))
	}
	s.seq = session.NewSequencer(seqOpts...)
	return s
}

// Init resolves the starting difficulty, starts the session and builds
// the first trial.
func (s *DrillScreen) Init() tea.Cmd {
	ctx := context.Background()
	d := s.recorder.Prepare(ctx, s.desc)

	trials := s.trials
	if trials <= 0 {
		trials = d.TotalTrials
	}
	if err := s.seq.StartSession(trials, d); err != nil {
		s.fail("start session", err)
		return nil
	}
	s.desc = s.seq.Descriptor()
	if err := s.recorder.SessionStarted(ctx, s.seq); err != nil {
		s.logger.Warn("record session start", zap.String("session_id", s.seq.SessionID()), zap.Error(err))
	}
	return s.nextTrial()
}

func (s *DrillScreen) Title() string {
	return s.desc.Name
}

// HandlesEscape keeps Esc for the quit confirmation while a session runs.
func (s *DrillScreen) HandlesEscape() bool {
	return s.phase != phaseFinished
}

func (s *DrillScreen) Status() string {
	if s.seq.Phase() == session.PhaseIdle {
		return ""
	}
	return fmt.Sprintf("%s  ·  %.0f pts", s.desc.FormatDifficulty(s.seq.CurrentDifficulty()), s.seq.Score())
}

func (s *DrillScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	case s.phase == phaseAnswering:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Quit"},
		}
	case s.phase == phaseFeedback:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Quit"}}
}

func (s *DrillScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case stimulusReadyMsg:
		return s, s.handleStimulus(msg)
	case frameDoneMsg:
		if !s.live(msg.Gen) {
			return s, nil
		}
		return s, s.handleFrameDone(msg)
	case deadlineMsg:
		if !s.live(msg.Gen) {
			return s, nil
		}
		return s, s.handleDeadline(msg)
	case feedbackDoneMsg:
		if s.live(msg.Gen) && s.phase == phaseFeedback && msg.Trial == s.last.trial.Spec.Index {
			return s, s.advance()
		}
		return s, nil
	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}

	if s.phase == phaseAnswering {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// nextTrial fetches the next trial parameters and builds its content in
// the background.
func (s *DrillScreen) nextTrial() tea.Cmd {
	spec, err := s.seq.NextTrialParameters()
	if err != nil {
		s.fail("next trial", err)
		return nil
	}
	s.phase = phaseLoading
	s.spec = spec

	presenter, d := s.presenter, s.desc
	return func() tea.Msg {
		st, err := presenter.Build(context.Background(), d, spec)
		return stimulusReadyMsg{Trial: spec.Index, Stimulus: st, Err: err}
	}
}

func (s *DrillScreen) handleStimulus(msg stimulusReadyMsg) tea.Cmd {
	if s.phase != phaseLoading || msg.Trial != s.spec.Index {
		return nil
	}
	if msg.Err != nil {
		s.fail("prepare trial", msg.Err)
		return nil
	}
	s.stim = msg.Stimulus
	s.frame = 0
	if len(s.stim.Frames) == 0 {
		return s.startAnswer()
	}
	s.phase = phasePresenting
	return s.frameTick()
}

// live reports whether a tick of generation gen may still act. Nothing is
// timed while the quit prompt is open.
func (s *DrillScreen) live(gen int) bool {
	return !s.confirmQuit && gen == s.timers
}

func (s *DrillScreen) frameTick() tea.Cmd {
	trial, frame, gen := s.spec.Index, s.frame, s.timers
	return tea.Tick(s.stim.Frames[frame].Duration, func(time.Time) tea.Msg {
		return frameDoneMsg{Trial: trial, Frame: frame, Gen: gen}
	})
}

func (s *DrillScreen) deadlineTick(d time.Duration) tea.Cmd {
	trial, gen := s.spec.Index, s.timers
	return tea.Tick(d, func(time.Time) tea.Msg {
		return deadlineMsg{Trial: trial, Gen: gen}
	})
}

func (s *DrillScreen) feedbackTick() tea.Cmd {
	trial, gen := s.last.trial.Spec.Index, s.timers
	return tea.Tick(FeedbackDelay, func(time.Time) tea.Msg {
		return feedbackDoneMsg{Trial: trial, Gen: gen}
	})
}

func (s *DrillScreen) handleFrameDone(msg frameDoneMsg) tea.Cmd {
	if s.phase != phasePresenting || msg.Trial != s.spec.Index || msg.Frame != s.frame {
		return nil
	}
	s.frame++
	if s.frame < len(s.stim.Frames) {
		return s.frameTick()
	}
	return s.startAnswer()
}

// startAnswer shows the probe and opens the response window.
func (s *DrillScreen) startAnswer() tea.Cmd {
	s.phase = phaseAnswering
	s.input = components.NewAnswerInput("type your answer", 64)
	s.answerStart = s.now()

	cmds := []tea.Cmd{s.input.Focus()}
	if s.stim.ResponseWindow > 0 {
		cmds = append(cmds, s.deadlineTick(s.stim.ResponseWindow))
	}
	return tea.Batch(cmds...)
}

// pause opens the quit prompt and stops the clock of the current trial.
func (s *DrillScreen) pause() {
	s.confirmQuit = true
	s.timers++
	s.pausedAt = s.now()
}

// resume closes the quit prompt and re-arms the timer of the current phase.
// A frame is shown again in full; the response window keeps the time that
// was left, and the pause does not count toward the response time.
func (s *DrillScreen) resume() tea.Cmd {
	s.confirmQuit = false
	s.timers++
	paused := s.now().Sub(s.pausedAt)

	switch s.phase {
	case phasePresenting:
		return s.frameTick()
	case phaseAnswering:
		elapsed := s.pausedAt.Sub(s.answerStart)
		s.answerStart = s.answerStart.Add(paused)
		if s.stim.ResponseWindow > 0 {
			return s.deadlineTick(max(s.stim.ResponseWindow-elapsed, 0))
		}
	case phaseFeedback:
		return s.feedbackTick()
	}
	return nil
}

// handleDeadline closes the response window. Exercises where silence is a
// valid answer score what was typed; the rest record a timeout.
func (s *DrillScreen) handleDeadline(msg deadlineMsg) tea.Cmd {
	if s.phase != phaseAnswering || msg.Trial != s.spec.Index {
		return nil
	}
	if s.stim.SilenceIsAnswer {
		return s.submit(session.Response{
			Dimensions:     s.stim.Score(s.input.Value()),
			ResponseTimeMs: accuracy.NoResponse,
		})
	}
	return s.submit(session.Response{ResponseTimeMs: accuracy.NoResponse, TimedOut: true})
}

func (s *DrillScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	if s.errMsg != "" {
		return s.stop()
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			return s.stop()
		case "n", "N", "esc":
			return s.resume()
		}
		return nil
	}

	if key == "esc" && s.phase != phaseFinished {
		s.pause()
		return nil
	}

	switch s.phase {
	case phaseFeedback:
		return s.advance()
	case phaseAnswering:
		if key == "enter" {
			answer := s.input.Value()
			if strings.TrimSpace(answer) == "" && !s.stim.SilenceIsAnswer {
				return nil
			}
			return s.submit(session.Response{
				Dimensions:     s.stim.Score(answer),
				ResponseTimeMs: int(s.now().Sub(s.answerStart).Milliseconds()),
			})
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd
	}
	return nil
}

// submit scores the pending trial, records it and shows feedback.
func (s *DrillScreen) submit(r session.Response) tea.Cmd {
	res, err := s.seq.Submit(r)
	if err != nil {
		s.fail("submit trial", err)
		return nil
	}
	tr, _ := s.seq.LastTrial()
	if err := s.recorder.TrialRecorded(context.Background(), s.seq.SessionID(), tr); err != nil {
		s.logger.Warn("record trial",
			zap.String("session_id", s.seq.SessionID()),
			zap.Int("trial", tr.Spec.Index),
			zap.Error(err))
	}
	if res.DifficultyChanged {
		s.logger.Debug("difficulty changed",
			zap.String("exercise", s.desc.ID),
			zap.Int("difficulty", res.Difficulty))
	}

	s.input.Mark(tr.Correct)
	s.last = feedback{trial: tr, result: res}
	s.phase = phaseFeedback

	return s.feedbackTick()
}

// advance leaves the feedback of the last trial.
func (s *DrillScreen) advance() tea.Cmd {
	if s.last.result.SessionComplete {
		return s.finish()
	}
	return s.nextTrial()
}

// stop ends the session early.
func (s *DrillScreen) stop() tea.Cmd {
	if s.seq.Phase() == session.PhaseInSession {
		if err := s.seq.Stop(); err != nil {
			s.logger.Warn("stop session", zap.Error(err))
		}
	}
	return s.finish()
}

// finish records the session and replaces this screen with its summary.
func (s *DrillScreen) finish() tea.Cmd {
	if s.seq.Phase() == session.PhaseIdle {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}
	sum, err := s.seq.FinalizeSession()
	if err != nil {
		s.logger.Error("finalize session", zap.String("exercise", s.desc.ID), zap.Error(err))
		return func() tea.Msg { return router.PopScreenMsg{} }
	}
	if err := s.recorder.SessionFinished(context.Background(), sum); err != nil {
		s.logger.Warn("record session end", zap.String("session_id", sum.SessionID), zap.Error(err))
	}
	s.phase = phaseFinished
	s.errMsg = ""

	next := summary.New(sum, s.desc)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *DrillScreen) fail(op string, err error) {
	s.logger.Error(op, zap.String("exercise", s.desc.ID), zap.Error(err))
	s.errMsg = fmt.Sprintf("%s: %v", op, err)
}
