package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/solho/setlist/internal/core"
	"github.com/solho/setlist/internal/tui/styles"
)

// PlayerBar displays the active playback session at the bottom of the
// screen.
type PlayerBar struct{}

// NewPlayerBar creates a new player bar component.
func NewPlayerBar() *PlayerBar {
	return &PlayerBar{}
}

// Render renders the player bar for the given session and last known
// position.
func (p *PlayerBar) Render(session core.Session, position, duration time.Duration, width int) string {
	if !session.Active() {
		return lipgloss.NewStyle().
			Width(width).
			Padding(0, 1).
			Render(styles.Dim.Render("Nothing playing"))
	}

	icon := styles.StatusIcon(!session.Paused)

	title := "…"
	if session.CurrentTrack != nil {
		title = session.CurrentTrack.Name
		if session.CurrentTrack.Artist != "" {
			title += " — " + session.CurrentTrack.Artist
		}
	}

	counter := ""
	if session.TotalTracks > 0 {
		counter = styles.Muted.Render(fmt.Sprintf("Track %d of %d", session.TrackIndex+1, session.TotalTracks))
	}

	progress := ""
	if duration > 0 {
		barWidth := width - lipgloss.Width(title) - lipgloss.Width(counter) - 24
		if barWidth > 10 {
			percent := float64(position) / float64(duration) * 100
			progress = fmt.Sprintf("%s %s %s",
				formatDuration(position),
				styles.ProgressBar(percent, barWidth),
				formatDuration(duration))
		} else {
			progress = fmt.Sprintf("%s / %s", formatDuration(position), formatDuration(duration))
		}
	}

	parts := []string{icon, styles.Title.Render(title)}
	if counter != "" {
		parts = append(parts, counter)
	}
	if progress != "" {
		parts = append(parts, progress)
	}

	line := parts[0]
	for _, part := range parts[1:] {
		line += "  " + part
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Render(line)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d", m, s)
}
