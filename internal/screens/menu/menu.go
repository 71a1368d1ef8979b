// Package menu is the home screen: the exercise list with the player's
// current level for each, plus workout and history entries.
package menu

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/neurogym/internal/exercise"
	"github.com/abhisek/neurogym/internal/router"
	"github.com/abhisek/neurogym/internal/screen"
	"github.com/abhisek/neurogym/internal/screens/workout"
	"github.com/abhisek/neurogym/internal/ui/components"
	"github.com/abhisek/neurogym/internal/ui/theme"
)

// LevelSource reports the last known difficulty per exercise.
// *tracker.Tracker implements it.
type LevelSource interface {
	Levels(ctx context.Context) (map[string]int, error)
}

// Deps are the screens and data the menu opens.
type Deps struct {
	Exercises []exercise.Descriptor
	Levels    LevelSource
	Launch    workout.Launcher
	Workout   func() screen.Screen
	History   func() screen.Screen
}

type levelsLoadedMsg struct {
	Levels map[string]int
	Err    error
}

// MenuScreen is the main menu.
type MenuScreen struct {
	deps   Deps
	levels map[string]int
	menu   components.Menu
	errMsg string
}

var _ screen.Screen = (*MenuScreen)(nil)
var _ screen.Refresher = (*MenuScreen)(nil)

// New creates a MenuScreen.
func New(deps Deps) *MenuScreen {
	m := &MenuScreen{deps: deps}
	m.menu = components.NewMenu(m.items())
	return m
}

func (m *MenuScreen) Init() tea.Cmd {
	return m.Refresh()
}

// Refresh reloads the levels shown next to each exercise.
func (m *MenuScreen) Refresh() tea.Cmd {
	src := m.deps.Levels
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		levels, err := src.Levels(context.Background())
		return levelsLoadedMsg{Levels: levels, Err: err}
	}
}

func (m *MenuScreen) Title() string {
	return "Home"
}

func (m *MenuScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(levelsLoadedMsg); ok {
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.levels = msg.Levels
		selected := m.menu.Selected
		m.menu = components.NewMenu(m.items())
		m.menu.Selected = selected
		return m, nil
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *MenuScreen) items() []components.MenuItem {
	push := func(open func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			next := open()
			return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}
	}

	items := make([]components.MenuItem, 0, len(m.deps.Exercises)+3)
	for _, d := range m.deps.Exercises {
		detail := "new"
		if level, ok := m.levels[d.ID]; ok {
			detail = d.FormatDifficulty(level)
		}
		items = append(items, components.MenuItem{
			Label:  d.Name,
			Detail: detail,
			Action: push(func() screen.Screen { return m.deps.Launch(d) }),
		})
	}
	items = append(items,
		components.MenuItem{Label: "Workout", Detail: "planned set", Action: push(m.deps.Workout), Disabled: m.deps.Workout == nil},
		components.MenuItem{Label: "History", Action: push(m.deps.History), Disabled: m.deps.History == nil},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	)
	return items
}

// selectedExercise returns the highlighted exercise, if any.
func (m *MenuScreen) selectedExercise() (exercise.Descriptor, bool) {
	if m.menu.Selected < len(m.deps.Exercises) {
		return m.deps.Exercises[m.menu.Selected], true
	}
	return exercise.Descriptor{}, false
}

func (m *MenuScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Title.Render("Choose an exercise")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Subtitle.Render("Difficulty follows your performance, trial by trial.")))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, m.menu.View()))

	if d, ok := m.selectedExercise(); ok {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render(d.Description)))
	}
	if m.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Error).Render("Levels unavailable: "+m.errMsg)))
	}
	return b.String()
}
