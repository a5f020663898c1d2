package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/solho/setlist/internal/tui/styles"
)

// Status shows request progress while the chat service works.
type Status struct {
	spinner spinner.Model
	text    string
	active  bool
}

// NewStatus creates a new status component.
func NewStatus() *Status {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)
	return &Status{spinner: s}
}

// Spinner exposes the underlying spinner model for tick updates.
func (s *Status) Spinner() *spinner.Model {
	return &s.spinner
}

// Start activates the status line with initial text.
func (s *Status) Start(text string) {
	s.active = true
	s.text = text
}

// SetText updates the progress text.
func (s *Status) SetText(text string) {
	s.text = text
}

// Stop clears the status line.
func (s *Status) Stop() {
	s.active = false
	s.text = ""
}

// Active reports whether a request is in flight.
func (s *Status) Active() bool {
	return s.active
}

// Render renders the status line, empty when inactive.
func (s *Status) Render() string {
	if !s.active {
		return ""
	}
	return s.spinner.View() + " " + styles.Muted.Render(s.text)
}
