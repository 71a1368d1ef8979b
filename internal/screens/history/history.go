package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/neurogym/internal/exercise"
	"github.com/abhisek/neurogym/internal/router"
	"github.com/abhisek/neurogym/internal/screen"
	"github.com/abhisek/neurogym/internal/store"
	"github.com/abhisek/neurogym/internal/ui/layout"
	"github.com/abhisek/neurogym/internal/ui/theme"
)

// Limit is how many sessions the screen lists.
const Limit = 50

type historyLoadedMsg struct {
	Sessions []store.SessionRecord
	Err      error
}

type trialsLoadedMsg struct {
	SessionID string
	Trials    []store.TrialRecord
	Err       error
}

// HistoryScreen lists finished sessions. Enter expands a session into its
// difficulty trajectory.
type HistoryScreen struct {
	eventRepo store.EventRepo
	sessions  []store.SessionRecord
	trials    map[string][]store.TrialRecord
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		trials:    make(map[string][]store.TrialRecord),
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		sessions, err := repo.QuerySessions(context.Background(), store.QueryOpts{Limit: Limit})
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case trialsLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.trials[msg.SessionID] = msg.Trials
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
		case "enter":
			if s.selected >= len(s.sessions) {
				return s, nil
			}
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, s.loadTrials(s.sessions[s.selected].SessionID)
		}
	}
	return s, nil
}

// loadTrials fetches the trials of a session once.
func (s *HistoryScreen) loadTrials(sessionID string) tea.Cmd {
	if _, ok := s.trials[sessionID]; ok {
		return nil
	}
	repo := s.eventRepo
	return func() tea.Msg {
		trials, err := repo.SessionTrials(context.Background(), sessionID)
		return trialsLoadedMsg{SessionID: sessionID, Trials: trials, Err: err}
	}
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Pick an exercise to start!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(prefix+sessionLine(sess))))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				theme.Hint.Render("    "+trajectory(sess, s.trials[sess.SessionID]))))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func sessionLine(sess store.SessionRecord) string {
	name := sess.Exercise
	format := func(v int) string { return fmt.Sprintf("%d", v) }
	if d, err := exercise.Lookup(sess.Exercise); err == nil {
		name = d.Name
		format = d.FormatDifficulty
	}
	secs := sess.DurationMs / 1000
	line := fmt.Sprintf("%s  %-18s %s  %2d trials  %3.0f%%  %s → %s",
		sess.Timestamp.Local().Format("Jan 02 15:04"),
		name,
		fmt.Sprintf("%d:%02d", secs/60, secs%60),
		sess.TotalTrials,
		sess.Accuracy*100,
		format(sess.InitialDifficulty),
		format(sess.FinalDifficulty))
	if !sess.Completed {
		line += "  (stopped)"
	}
	return line
}

// trajectory renders the difficulty each trial was played at, marking
// misses.
func trajectory(sess store.SessionRecord, trials []store.TrialRecord) string {
	if trials == nil {
		return "Loading trials..."
	}
	if len(trials) == 0 {
		return "No trials recorded"
	}
	parts := make([]string, len(trials))
	for i, t := range trials {
		mark := ""
		switch {
		case t.TimedOut:
			mark = "⏱"
		case !t.Correct:
			mark = "✗"
		}
		parts[i] = fmt.Sprintf("%d%s", t.Difficulty, mark)
	}
	return fmt.Sprintf("Score %d  ·  %s", sess.Score, strings.Join(parts, " "))
}
