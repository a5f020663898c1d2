package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/solho/setlist/internal/chat"
	"github.com/solho/setlist/internal/core"
	"github.com/solho/setlist/internal/player"
	"github.com/solho/setlist/internal/tui/components"
	"github.com/solho/setlist/internal/tui/styles"
)

// App holds everything the chat screen needs: the conversation, the
// playback controller, and the live state feed from the backend.
type App struct {
	Session    *chat.Session
	Controller *player.Controller
	States     <-chan core.StateChange

	// SpotifyToken supplies the user token forwarded to the chat
	// service so it can read the user's library. May be nil.
	SpotifyToken func(ctx context.Context) (string, error)

	RefreshRate time.Duration
}

// Model is the main TUI model.
type Model struct {
	app *App

	width  int
	height int

	input      textinput.Model
	transcript *components.Transcript
	status     *components.Status
	playerBar  *components.PlayerBar

	messages []chat.Message
	chatCh   chan tea.Msg

	position time.Duration
	duration time.Duration

	showHelp bool

	lastError   error
	errorExpiry time.Time

	quitting bool
}

// NewModel creates the chat model.
func NewModel(app *App) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask for a playlist..."
	ti.CharLimit = 500
	ti.Width = 60
	ti.Focus()

	return Model{
		app:        app,
		input:      ti,
		transcript: components.NewTranscript(),
		status:     components.NewStatus(),
		playerBar:  components.NewPlayerBar(),
		messages:   app.Session.Messages(),
	}
}

// Messages
type tickMsg time.Time
type chatStatusMsg string
type chatDoneMsg struct {
	reply chat.Message
	err   error
}
type stateChangeMsg core.StateChange
type playbackStartedMsg struct{ err error }
type errMsg error

func (m Model) tick() tea.Cmd {
	rate := m.app.RefreshRate
	if rate <= 0 {
		rate = time.Second
	}
	return tea.Tick(rate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// sendChat runs the chat round-trip off the UI loop, forwarding
// progress into chatCh as it arrives.
func (m Model) sendChat(text string) tea.Cmd {
	ch := m.chatCh
	app := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		token := ""
		if app.SpotifyToken != nil {
			token, _ = app.SpotifyToken(ctx)
		}

		reply, err := app.Session.Ask(ctx, text, token, func(status string) {
			ch <- chatStatusMsg(status)
		})
		ch <- chatDoneMsg{reply: reply, err: err}
		return nil
	}
}

func (m Model) waitChat() tea.Cmd {
	ch := m.chatCh
	return func() tea.Msg {
		return <-ch
	}
}

func (m Model) waitState() tea.Cmd {
	if m.app.States == nil {
		return nil
	}
	ch := m.app.States
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return stateChangeMsg(s)
	}
}

// startPlayback hands the reply's track list to the controller.
func (m Model) startPlayback(playlistID string, uris []string) tea.Cmd {
	ctrl := m.app.Controller
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return playbackStartedMsg{err: ctrl.PlayTracks(ctx, playlistID, uris, 0)}
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.tick(),
		m.waitState(),
		m.status.Spinner().Tick,
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 6
		return m, nil

	case tickMsg:
		if m.lastError != nil && time.Now().After(m.errorExpiry) {
			m.lastError = nil
		}
		return m, m.tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		*m.status.Spinner(), cmd = m.status.Spinner().Update(msg)
		return m, cmd

	case chatStatusMsg:
		m.status.SetText(string(msg))
		return m, m.waitChat()

	case chatDoneMsg:
		m.status.Stop()
		m.chatCh = nil
		if msg.err != nil {
			m.messages = m.app.Session.Messages()
			m.input.SetValue(m.app.Session.RestoreInput())
			m.lastError = msg.err
			m.errorExpiry = time.Now().Add(5 * time.Second)
			return m, nil
		}
		m.messages = m.app.Session.Messages()
		m.transcript.ScrollToBottom()

		// A reply carrying track links starts playback of those tracks.
		if uris := core.ExtractURIs(msg.reply.Text); len(uris) > 0 {
			return m, m.startPlayback(msg.reply.ID, uris)
		}
		return m, nil

	case playbackStartedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			m.errorExpiry = time.Now().Add(5 * time.Second)
		}
		return m, nil

	case stateChangeMsg:
		m.position = msg.Position
		m.duration = msg.Duration
		return m, m.waitState()

	case errMsg:
		m.lastError = msg
		m.errorExpiry = time.Now().Add(5 * time.Second)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "ctrl+g":
			m.showHelp = false
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		if m.input.Value() != "" {
			m.input.SetValue("")
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case "ctrl+g":
		m.showHelp = true
		return m, nil

	case "enter":
		text := m.input.Value()
		if text == "" || m.status.Active() {
			return m, nil
		}
		m.input.SetValue("")
		m.chatCh = make(chan tea.Msg, 16)
		m.status.Start("Sending...")
		// Show the user's message immediately; the session appends its
		// own copy once the request starts.
		m.messages = append(m.app.Session.Messages(), chat.Message{
			Role:      chat.RoleUser,
			Text:      text,
			Timestamp: time.Now(),
		})
		m.transcript.ScrollToBottom()
		return m, tea.Batch(m.sendChat(text), m.waitChat())

	case "ctrl+t":
		return m, m.controllerCmd(m.app.Controller.TogglePlay)

	case "ctrl+n":
		return m, m.controllerCmd(m.app.Controller.NextTrack)

	case "ctrl+b":
		return m, m.controllerCmd(m.app.Controller.PreviousTrack)

	case "pgup":
		m.transcript.ScrollUp()
		return m, nil

	case "pgdown":
		m.transcript.ScrollDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) controllerCmd(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			return errMsg(err)
		}
		return nil
	}
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	// Layout from the bottom up: player bar, input, status, transcript.
	playerBar := m.playerBar.Render(m.app.Controller.Session(), m.position, m.duration, m.width)
	inputLine := lipgloss.NewStyle().Padding(0, 1).Render("> " + m.input.View())
	statusLine := m.renderStatusLine()

	chromeHeight := lipgloss.Height(playerBar) + lipgloss.Height(inputLine) + lipgloss.Height(statusLine)
	transcript := m.transcript.Render(m.messages, m.width-2, m.height-chromeHeight-1)

	return lipgloss.JoinVertical(lipgloss.Left,
		transcript,
		statusLine,
		inputLine,
		playerBar,
	)
}

func (m Model) renderStatusLine() string {
	var status string
	switch {
	case m.lastError != nil:
		status = styles.Paused.Render("Error: " + m.lastError.Error())
	case m.status.Active():
		status = m.status.Render()
	default:
		status = styles.Dim.Render("enter:send  ctrl+t:play/pause  ctrl+n:next  ctrl+b:previous  ctrl+g:help  esc:quit")
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Setlist - Keyboard Shortcuts"
	divider := styles.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Chat
  ────
  Enter        Send message
  PgUp/PgDn    Scroll transcript
  Esc          Clear input / quit

  Playback
  ────────
  Ctrl+T       Play/Pause
  Ctrl+N       Next track
  Ctrl+B       Previous track

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

// Run starts the chat TUI.
func Run(app *App) error {
	model := NewModel(app)
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err := p.Run()
	return err
}
