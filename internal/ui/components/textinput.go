package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/neurogym/internal/ui/theme"
)

// AnswerInput wraps bubbles/textinput for typed trial answers. Once
// marked it stops accepting keys and shows the verdict.
type AnswerInput struct {
	Model  textinput.Model
	marked bool
	ok     bool
}

// NewAnswerInput creates a focused answer input.
func NewAnswerInput(placeholder string, limit int) AnswerInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	if limit > 0 {
		ti.CharLimit = limit
	}
	ti.Focus()
	return AnswerInput{Model: ti}
}

// Focus returns the cursor blink command.
func (a AnswerInput) Focus() tea.Cmd {
	return a.Model.Focus()
}

// Update forwards key messages to the underlying input until marked.
func (a AnswerInput) Update(msg tea.Msg) (AnswerInput, tea.Cmd) {
	if a.marked {
		return a, nil
	}
	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	return a, cmd
}

// View renders the input followed by the verdict once marked.
func (a AnswerInput) View() string {
	view := a.Model.View()
	if a.marked {
		if a.ok {
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		} else {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return view
}

// Value returns the typed answer.
func (a AnswerInput) Value() string {
	return a.Model.Value()
}

// Mark freezes the input and records whether the answer was correct.
func (a *AnswerInput) Mark(ok bool) {
	a.marked = true
	a.ok = ok
	a.Model.Blur()
}

// Marked reports whether Mark has been called.
func (a AnswerInput) Marked() bool {
	return a.marked
}
