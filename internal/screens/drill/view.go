package drill

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/neurogym/internal/stimulus"
	"github.com/abhisek/neurogym/internal/ui/components"
	"github.com/abhisek/neurogym/internal/ui/theme"
)

func (s *DrillScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, height, s.errMsg)
	}
	if s.confirmQuit {
		return renderQuitConfirm(width, height)
	}

	var b strings.Builder
	b.WriteString(s.renderInfo(width))

	switch s.phase {
	case phaseLoading:
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Hint.Render("Get ready...")))
	case phasePresenting:
		if s.frame < len(s.stim.Frames) {
			b.WriteString(renderFrame(width, s.stim.Frames[s.frame]))
		}
	case phaseAnswering:
		b.WriteString(s.renderAnswer(width))
	case phaseFeedback:
		b.WriteString(s.renderFeedback(width))
	}
	return b.String()
}

// renderInfo is the exercise line and progress bar above the stimulus.
func (s *DrillScreen) renderInfo(width int) string {
	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + s.desc.Name)
	right := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Level %s  ", s.desc.FormatDifficulty(s.seq.CurrentDifficulty())))

	line := left
	if pad := width - lipgloss.Width(left) - lipgloss.Width(right); pad > 0 {
		line += strings.Repeat(" ", pad) + right
	}

	bar := components.ProgressBar{
		Label: "  Trial",
		Done:  s.seq.TrialsCompleted(),
		Total: s.seq.TotalTrials(),
		Width: max(width-4, 20),
	}
	return line + "\n" + bar.View() + "\n\n"
}

// renderFrame draws one frame of content in the stimulus box.
func renderFrame(width int, f stimulus.Frame) string {
	if len(f.Lines) == 0 {
		return ""
	}
	style := theme.Stimulus
	if f.Color != "" {
		style = style.Foreground(theme.Ink(f.Color))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(strings.Join(f.Lines, "\n"))) + "\n\n"
}

func (s *DrillScreen) renderAnswer(width int) string {
	var b strings.Builder
	b.WriteString(renderFrame(width, s.stim.Probe))
	if s.stim.Prompt != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Body.Render(s.stim.Prompt)))
		b.WriteString("\n\n")
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.input.View()))
	if s.stim.ResponseWindow > 0 {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Hint.Render(fmt.Sprintf("%.1fs to answer", s.stim.ResponseWindow.Seconds()))))
	}
	return b.String()
}

func (s *DrillScreen) renderFeedback(width int) string {
	tr, res := s.last.trial, s.last.result
	center := func(st lipgloss.Style, text string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, st.Render(text)) + "\n"
	}

	var b strings.Builder
	switch {
	case tr.Correct:
		b.WriteString(center(theme.Correct, "Correct!"))
	case tr.TimedOut:
		b.WriteString(center(theme.Incorrect, "Time's up"))
	default:
		b.WriteString(center(theme.Incorrect, "Not quite"))
	}
	if !tr.Correct && s.stim.Expected != "" {
		b.WriteString(center(theme.Hint, "Answer: "+s.stim.Expected))
	}
	if tr.Score > 0 {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Accent), fmt.Sprintf("+%.0f", tr.Score)))
	}
	b.WriteString("\n")

	if res.BlockCompleted {
		b.WriteString(center(theme.Body, fmt.Sprintf("Block accuracy %.0f%%", res.BlockAccuracy*100)))
	}
	if res.DifficultyChanged {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true),
			"Level now "+s.desc.FormatDifficulty(res.Difficulty)))
	}
	return b.String()
}

func renderQuitConfirm(width, height int) string {
	box := theme.Card.Render(
		theme.Body.Bold(true).Render("End this session?") + "\n\n" +
			theme.Hint.Render("Trials played so far are kept.") + "\n\n" +
			theme.Body.Render("Y = end    N = keep going"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func renderError(width, height int, msg string) string {
	text := theme.Incorrect.Render("Something went wrong") + "\n\n" +
		lipgloss.NewStyle().Foreground(theme.TextDim).Width(min(width-8, 70)).Render(msg) + "\n\n" +
		theme.Hint.Render("Press any key to go back")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text)
}
