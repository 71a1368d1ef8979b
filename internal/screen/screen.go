package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/neurogym/internal/ui/layout"
)

// Screen is one page of the application.
type Screen interface {
	// Init returns the command to run when the screen is shown.
	Init() tea.Cmd

	// Update handles a message and returns the updated screen.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the content area (without header and footer).
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// EscapeHandler is implemented by screens that handle Esc themselves
// instead of letting the app pop them.
type EscapeHandler interface {
	HandlesEscape() bool
}

// Refresher is implemented by screens that reload their data when they
// become active again after a covering screen is popped.
type Refresher interface {
	Refresh() tea.Cmd
}

// StatusProvider is implemented by screens that show a status string on
// the right of the header.
type StatusProvider interface {
	Status() string
}
