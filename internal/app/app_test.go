package app

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/neurogym/internal/exercise"
	"github.com/abhisek/neurogym/internal/router"
	"github.com/abhisek/neurogym/internal/screen"
	"github.com/abhisek/neurogym/internal/session"
	"github.com/abhisek/neurogym/internal/stimulus"
)

type nopRecorder struct{}

func (nopRecorder) Prepare(_ context.Context, d exercise.Descriptor) exercise.Descriptor { return d }
func (nopRecorder) SessionStarted(context.Context, *session.Sequencer) error { return nil }
func (nopRecorder) TrialRecorded(context.Context, string, session.Trial) error { return nil }
func (nopRecorder) SessionFinished(context.Context, session.Summary) error { return nil }

// escScreen optionally claims Esc.
type escScreen struct {
	claim bool
	esc   int
}

func (s *escScreen) Init() tea.Cmd { return nil }
func (s *escScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		s.esc++
	}
	return s, nil
}
func (s *escScreen) View(int, int) string { return "esc screen" }
func (s *escScreen) Title() string { return "Esc" }
func (s *escScreen) HandlesEscape() bool { return s.claim }

func testModel(t *testing.T) AppModel {
	t.Helper()
	return newAppModel(Deps{
		Exercises: exercise.All(),
		Recorder:  nopRecorder{},
		Presenter: stimulus.NewBuilder(nil, nil),
	})
}

func TestEscPopsScreens(t *testing.T) {
	m := testModel(t)
	s := &escScreen{}
	m.router.Push(s)

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
	if s.esc != 0 {
		t.Error("screen should not see Esc")
	}
}

func TestEscHandledByScreen(t *testing.T) {
	m := testModel(t)
	s := &escScreen{claim: true}
	m.router.Push(s)

	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if s.esc != 1 {
		t.Errorf("screen saw Esc %d times, want 1", s.esc)
	}
	if m.router.Depth() != 2 {
		t.Errorf("depth = %d, want 2", m.router.Depth())
	}
}

func TestEscAtRootDoesNothing(t *testing.T) {
	m := testModel(t)
	if _, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape}); cmd != nil {
		t.Error("Esc on the menu should do nothing")
	}
}

func TestStartExercise(t *testing.T) {
	d, err := exercise.Lookup(exercise.Stroop)
	if err != nil {
		t.Fatal(err)
	}
	m := newAppModel(Deps{
		Exercises: exercise.All(),
		Recorder:  nopRecorder{},
		Presenter: stimulus.NewBuilder(nil, nil),
		Start:     &d,
	})
	if m.Init() == nil {
		t.Fatal("expected start command")
	}
}

func TestView(t *testing.T) {
	m := testModel(t)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	v := updated.(AppModel).View()
	if !strings.Contains(v.Content, "neurogym") {
		t.Error("header missing")
	}

	updated, _ = m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(updated.(AppModel).View().Content, "Terminal too small") {
		t.Error("expected too-small message")
	}
}
