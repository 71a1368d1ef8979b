package summary

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/neurogym/internal/difficulty"
	"github.com/abhisek/neurogym/internal/exercise"
	"github.com/abhisek/neurogym/internal/router"
	"github.com/abhisek/neurogym/internal/screen"
	"github.com/abhisek/neurogym/internal/session"
	"github.com/abhisek/neurogym/internal/ui/layout"
	"github.com/abhisek/neurogym/internal/ui/theme"
)

// SummaryScreen displays the result of one finished session.
type SummaryScreen struct {
	summary session.Summary
	desc    exercise.Descriptor
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. desc formats difficulty values.
func New(sum session.Summary, desc exercise.Descriptor) *SummaryScreen {
	return &SummaryScreen{summary: sum, desc: desc}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	center := func(st lipgloss.Style, text string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, st.Render(text)) + "\n"
	}

	var b strings.Builder

	heading := "Session complete!"
	if sum.StoppedEarly {
		heading = "Session stopped"
	}
	b.WriteString(center(theme.Title, heading))
	b.WriteString(center(theme.Subtitle, fmt.Sprintf("%s  ·  %s", s.desc.Name, formatDuration(sum.Duration))))
	b.WriteString("\n")

	stats := fmt.Sprintf("Trials: %d/%d    Correct: %d    Accuracy: %.0f%%    Score: %d",
		sum.TotalTrials, sum.PlannedTrials, sum.CorrectTrials, sum.Accuracy*100, sum.Score)
	b.WriteString(center(theme.Body, stats))
	if sum.AverageResponseTime > 0 {
		b.WriteString(center(theme.Hint, fmt.Sprintf("Average response %.0f ms", sum.AverageResponseTime)))
	}
	if sum.TimedOutTrials > 0 {
		b.WriteString(center(theme.Hint, fmt.Sprintf("%d trial(s) ran out of time", sum.TimedOutTrials)))
	}
	b.WriteString("\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 60)))
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), "Difficulty"))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider) + "\n\n")

	if sum.TotalTrials == 0 {
		b.WriteString(center(theme.Hint, "No trials were played."))
		return b.String()
	}

	level := fmt.Sprintf("%s → %s", s.desc.FormatDifficulty(sum.InitialDifficulty), s.desc.FormatDifficulty(sum.FinalDifficulty))
	style := theme.Body
	switch {
	case s.harder(sum.FinalDifficulty, sum.InitialDifficulty):
		style = theme.Correct
	case s.harder(sum.InitialDifficulty, sum.FinalDifficulty):
		style = theme.Incorrect
	}
	b.WriteString(center(style, level))
	b.WriteString(center(theme.Body, fmt.Sprintf("Hardest reached: %s    Adjustments: %d",
		s.desc.FormatDifficulty(sum.HardestReached), sum.Adjustments)))

	if len(sum.BlockAccuracies) > 0 {
		parts := make([]string, len(sum.BlockAccuracies))
		for i, a := range sum.BlockAccuracies {
			parts[i] = fmt.Sprintf("%.0f%%", a*100)
		}
		b.WriteString(center(theme.Hint, "Blocks: "+strings.Join(parts, "  ")))
	}
	return b.String()
}

// harder reports whether a is a harder setting than b.
func (s *SummaryScreen) harder(a, b int) bool {
	if s.desc.Difficulty.Direction == difficulty.Inverted {
		return a < b
	}
	return a > b
}

func formatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
