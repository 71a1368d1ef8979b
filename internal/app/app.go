package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/neurogym/internal/exercise"
	"github.com/abhisek/neurogym/internal/router"
	"github.com/abhisek/neurogym/internal/screen"
	"github.com/abhisek/neurogym/internal/screens/drill"
	"github.com/abhisek/neurogym/internal/screens/history"
	"github.com/abhisek/neurogym/internal/screens/menu"
	"github.com/abhisek/neurogym/internal/screens/workout"
	"github.com/abhisek/neurogym/internal/session"
	"github.com/abhisek/neurogym/internal/store"
	"github.com/abhisek/neurogym/internal/ui/layout"
)

// Deps wires the screens to storage and content.
type Deps struct {
	// Exercises are the playable descriptors with config overrides applied.
	Exercises []exercise.Descriptor

	Recorder  drill.Recorder
	Levels    menu.LevelSource
	Presenter drill.Presenter
	Events    store.EventRepo
	Planner   session.Planner
	Logger    *zap.Logger

	// Trials overrides the session length of every exercise when positive.
	Trials int

	// Start opens this exercise right away when set.
	Start *exercise.Descriptor
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	start  tea.Cmd
	width  int
	height int
}

// newAppModel creates an AppModel with the menu as its bottom screen.
func newAppModel(deps Deps) AppModel {
	launch := func(d exercise.Descriptor) screen.Screen {
		return drill.New(d, deps.Recorder, deps.Presenter, deps.Logger, drill.WithTrials(deps.Trials))
	}
	home := menu.New(menu.Deps{
		Exercises: deps.Exercises,
		Levels:    deps.Levels,
		Launch:    launch,
		Workout: func() screen.Screen {
			return workout.New(deps.Planner, deps.Events, launch)
		},
		History: func() screen.Screen {
			return history.New(deps.Events)
		},
	})

	m := AppModel{router: router.New(home)}
	cmds := []tea.Cmd{home.Init()}
	if deps.Start != nil {
		first := launch(*deps.Start)
		cmds = append(cmds, func() tea.Msg { return router.PushScreenMsg{Screen: first} })
	}
	m.start = tea.Batch(cmds...)
	return m
}

func (m AppModel) Init() tea.Cmd {
	return m.start
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	var title, status string
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}
	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = append(kp.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program.
func Run(deps Deps) error {
	p := tea.NewProgram(newAppModel(deps))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
