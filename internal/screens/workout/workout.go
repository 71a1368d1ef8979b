// Package workout shows a planned set of exercises and launches them in
// order.
package workout

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/neurogym/internal/exercise"
	"github.com/abhisek/neurogym/internal/router"
	"github.com/abhisek/neurogym/internal/screen"
	"github.com/abhisek/neurogym/internal/session"
	"github.com/abhisek/neurogym/internal/store"
	"github.com/abhisek/neurogym/internal/ui/components"
	"github.com/abhisek/neurogym/internal/ui/layout"
	"github.com/abhisek/neurogym/internal/ui/theme"
)

// Launcher creates the screen that plays one exercise.
type Launcher func(d exercise.Descriptor) screen.Screen

type planLoadedMsg struct {
	Plan *session.Plan
	Err  error
}

type progressLoadedMsg struct {
	Done map[string]bool
	Err  error
}

// WorkoutScreen lists the slots of a workout plan. An exercise counts as
// done once a session of it has finished after the workout began.
type WorkoutScreen struct {
	planner   session.Planner
	eventRepo store.EventRepo
	launch    Launcher
	now       func() time.Time

	startedAt time.Time
	plan      *session.Plan
	done      map[string]bool
	selected  int
	errMsg    string
}

var _ screen.Screen = (*WorkoutScreen)(nil)
var _ screen.KeyHintProvider = (*WorkoutScreen)(nil)
var _ screen.Refresher = (*WorkoutScreen)(nil)

// New creates a WorkoutScreen.
func New(planner session.Planner, eventRepo store.EventRepo, launch Launcher) *WorkoutScreen {
	return &WorkoutScreen{
		planner:   planner,
		eventRepo: eventRepo,
		launch:    launch,
		now:       time.Now,
		done:      make(map[string]bool),
	}
}

func (s *WorkoutScreen) Init() tea.Cmd {
	s.startedAt = s.now()
	planner := s.planner
	return func() tea.Msg {
		plan, err := planner.BuildPlan(context.Background())
		return planLoadedMsg{Plan: plan, Err: err}
	}
}

// Refresh reloads which exercises have been played since the workout
// began.
func (s *WorkoutScreen) Refresh() tea.Cmd {
	repo, from := s.eventRepo, s.startedAt
	return func() tea.Msg {
		sessions, err := repo.QuerySessions(context.Background(), store.QueryOpts{From: from})
		if err != nil {
			return progressLoadedMsg{Err: err}
		}
		done := make(map[string]bool, len(sessions))
		for _, sess := range sessions {
			if sess.TotalTrials > 0 {
				done[sess.Exercise] = true
			}
		}
		return progressLoadedMsg{Done: done}
	}
}

func (s *WorkoutScreen) Title() string {
	return "Workout"
}

func (s *WorkoutScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Play"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *WorkoutScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case planLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.plan = msg.Plan
		return s, nil

	case progressLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.done = msg.Done
		s.selected = s.nextPending()
		return s, nil

	case tea.KeyMsg:
		if s.plan == nil {
			return s, nil
		}
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.plan.Slots)-1 {
				s.selected++
			}
		case "enter":
			if s.selected < len(s.plan.Slots) {
				next := s.launch(s.plan.Slots[s.selected].Exercise)
				return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			}
		}
	}
	return s, nil
}

// nextPending returns the first slot not yet played, or the current
// selection when all are done.
func (s *WorkoutScreen) nextPending() int {
	if s.plan == nil {
		return 0
	}
	for i, slot := range s.plan.Slots {
		if !s.done[slot.Exercise.ID] {
			return i
		}
	}
	return s.selected
}

// Complete reports whether every slot has been played.
func (s *WorkoutScreen) Complete() bool {
	if s.plan == nil || len(s.plan.Slots) == 0 {
		return false
	}
	for _, slot := range s.plan.Slots {
		if !s.done[slot.Exercise.ID] {
			return false
		}
	}
	return true
}

func (s *WorkoutScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if s.plan == nil {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Planning your workout...")
	}
	if len(s.plan.Slots) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No exercises to plan.")
	}

	items := make([]components.MenuItem, len(s.plan.Slots))
	played := 0
	for i, slot := range s.plan.Slots {
		mark := "○"
		if s.done[slot.Exercise.ID] {
			mark = "●"
			played++
		}
		items[i] = components.MenuItem{
			Label:  fmt.Sprintf("%s %s", mark, slot.Exercise.Name),
			Detail: slotDetail(slot),
		}
	}
	menu := components.Menu{Items: items, Selected: s.selected}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Title.Render("Today's workout")))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, menu.View()))
	b.WriteString("\n")

	bar := components.ProgressBar{Label: "Done", Done: played, Total: len(s.plan.Slots), Width: min(width-8, 50)}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	if s.Complete() {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Correct.Render("Workout complete!")))
	}
	return b.String()
}

func slotDetail(slot session.PlanSlot) string {
	switch slot.Category {
	case session.CategoryNew:
		return "new"
	case session.CategoryBooster:
		return fmt.Sprintf("booster · %.0f%%", slot.Accuracy*100)
	default:
		return fmt.Sprintf("review · %.0f%%", slot.Accuracy*100)
	}
}
