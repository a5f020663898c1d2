package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/solho/setlist/internal/browser"
	"github.com/solho/setlist/internal/chat"
	"github.com/solho/setlist/internal/core"
	"github.com/solho/setlist/internal/embedhost"
	"github.com/solho/setlist/internal/player"
	"github.com/solho/setlist/internal/positions"
	"github.com/solho/setlist/internal/spotify/client"
	"github.com/solho/setlist/internal/tui"
	"github.com/spf13/cobra"
)

var chatSessionID string

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"ui", "tui"},
	Short:   "Open the chat interface",
	Long: `Open the interactive chat interface.

Describe what you want to hear and the reply's tracks start playing
through the configured backend. Running 'setlist' with no command
does the same thing.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSessionID, "session", "s", "", "resume an existing chat session")
	rootCmd.AddCommand(chatCmd)
	rootCmd.RunE = runChat
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := newLogger()

	spotifyClient, err := spotifyClientFromConfig()
	if err != nil {
		return err
	}

	store, err := positions.NewStore("")
	if err != nil {
		return fmt.Errorf("failed to open position store: %w", err)
	}

	backend, cleanup, err := buildBackend(ctx, spotifyClient)
	if err != nil {
		return err
	}
	defer cleanup()

	// The TUI gets its own state feed alongside the controller's.
	states := make(chan core.StateChange, 16)
	backend.OnStateChange(func(s core.StateChange) {
		select {
		case states <- s:
		default:
		}
	})

	controller := player.NewController(backend, store)
	controller.SetLogger(logger)
	defer func() { _ = controller.Close() }()

	chatClient := chat.NewClient(cfg.Chat.BaseURL)
	chatClient.SetLogger(logger)

	var session *chat.Session
	if chatSessionID != "" {
		session = chat.ResumeSession(chatClient, chatSessionID)
		if err := session.LoadHistory(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not load session history: %v\n", err)
		}
	} else {
		session = chat.NewSession(chatClient)
	}

	app := &tui.App{
		Session:    session,
		Controller: controller,
		States:     states,
		SpotifyToken: func(ctx context.Context) (string, error) {
			return spotifyClient.AccessToken(ctx)
		},
		RefreshRate: time.Duration(cfg.TUI.RefreshInterval) * time.Millisecond,
	}

	return tui.Run(app)
}

// buildBackend constructs the playback backend named in the config.
// The returned cleanup stops whatever the backend started.
func buildBackend(ctx context.Context, spotifyClient *client.Client) (player.Backend, func(), error) {
	logger := newLogger()

	switch cfg.Player.Backend {
	case "connect":
		backend := player.NewConnectBackend(spotifyClient)
		backend.SetLogger(logger)

		deviceID, err := resolveDevice(ctx, spotifyClient)
		if err != nil {
			return nil, nil, err
		}
		backend.SetDevice(deviceID)

		pollCtx, cancel := context.WithCancel(context.Background())
		backend.Start(pollCtx)
		return backend, cancel, nil

	default: // embed
		host, err := embedhost.NewHost(cfg.Player.EmbedPort)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start embed host: %w", err)
		}
		host.SetLogger(logger)

		token, err := spotifyClient.AccessToken(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get access token: %w", err)
		}
		host.SetToken(token)
		host.Start()

		backend := player.NewEmbedBackend(host)
		backend.SetLogger(logger)
		backend.SetResolver(player.NewAPIResolver(spotifyClient))

		fmt.Fprintf(os.Stderr, "Opening player page at %s\n", host.URL())
		if err := browser.Open(host.URL()); err != nil {
			fmt.Fprintf(os.Stderr, "Could not open browser. Visit %s manually.\n", host.URL())
		}

		return backend, func() {}, nil
	}
}
