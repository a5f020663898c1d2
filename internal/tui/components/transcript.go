package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/solho/setlist/internal/chat"
	"github.com/solho/setlist/internal/tui/styles"
)

// Transcript displays the conversation history.
type Transcript struct {
	offset int // Lines scrolled up from the bottom
}

// NewTranscript creates a new transcript component.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// ScrollUp scrolls toward older messages.
func (t *Transcript) ScrollUp() {
	t.offset++
}

// ScrollDown scrolls toward newer messages.
func (t *Transcript) ScrollDown() {
	if t.offset > 0 {
		t.offset--
	}
}

// ScrollToBottom jumps to the newest message.
func (t *Transcript) ScrollToBottom() {
	t.offset = 0
}

var (
	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Primary)

	assistantLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(styles.SpotifyGreen)

	modeStyle = lipgloss.NewStyle().
			Foreground(styles.TextDim).
			Italic(true)
)

// Render renders the transcript panel.
func (t *Transcript) Render(messages []chat.Message, width, height int) string {
	var lines []string

	for _, msg := range messages {
		label := assistantLabelStyle.Render("setlist")
		if msg.Role == chat.RoleUser {
			label = userLabelStyle.Render("you")
		}
		if msg.Mode != "" {
			label += " " + modeStyle.Render("["+msg.Mode+"]")
		}
		lines = append(lines, label)

		for _, line := range wrapText(msg.Text, width-2) {
			lines = append(lines, "  "+line)
		}
		for _, img := range msg.Images {
			lines = append(lines, "  "+styles.Dim.Render(img))
		}
		lines = append(lines, "")
	}

	if len(lines) == 0 {
		lines = []string{
			styles.Muted.Render("Ask for a playlist to get started. For example:"),
			"",
			"  " + styles.Dim.Render("an hour of rainy day jazz"),
			"  " + styles.Dim.Render("upbeat songs for a morning run"),
			"  " + styles.Dim.Render("podcasts about space, newest first"),
		}
	}

	// Clamp the scroll offset and show the last page of lines.
	maxOffset := len(lines) - height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if t.offset > maxOffset {
		t.offset = maxOffset
	}

	end := len(lines) - t.offset
	start := end - height
	if start < 0 {
		start = 0
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Render(strings.Join(lines[start:end], "\n"))
}

// wrapText wraps text to the given width on word boundaries.
func wrapText(text string, width int) []string {
	if width < 10 {
		width = 10
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		if paragraph == "" {
			lines = append(lines, "")
			continue
		}

		var line strings.Builder
		for _, word := range strings.Fields(paragraph) {
			if line.Len() > 0 && line.Len()+1+len(word) > width {
				lines = append(lines, line.String())
				line.Reset()
			}
			if line.Len() > 0 {
				line.WriteString(" ")
			}
			line.WriteString(word)
		}
		if line.Len() > 0 {
			lines = append(lines, line.String())
		}
	}
	return lines
}
