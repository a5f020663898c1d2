package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/solho/setlist/internal/chat"
	"github.com/solho/setlist/internal/core"
	"github.com/spf13/cobra"
)

var (
	askSession string
	askPlay    bool
	askNoStream bool
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask the playlist service for music",
	Long: `Sends one request to the playlist chat service and prints the reply.

When --play is set and the reply contains Spotify track links, playback
of those tracks starts on your active Spotify device.

Examples:
  setlist ask "an hour of rainy day jazz"
  setlist ask --play "upbeat 80s road trip songs"
  setlist ask --session 1a2b3c "more like the last one"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "continue an existing chat session")
	askCmd.Flags().BoolVarP(&askPlay, "play", "p", false, "start playback of returned tracks")
	askCmd.Flags().BoolVar(&askNoStream, "no-stream", false, "disable streaming progress output")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	message := strings.Join(args, " ")

	chatClient := chat.NewClient(cfg.Chat.BaseURL)
	chatClient.SetLogger(newLogger())

	var session *chat.Session
	if askSession != "" {
		session = chat.ResumeSession(chatClient, askSession)
	} else {
		session = chat.NewSession(chatClient)
	}

	// Forward the user's Spotify token when available so the service
	// can read their library. Not being authenticated is fine here.
	token := ""
	if spotifyClient, err := spotifyClientFromConfig(); err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		token, _ = spotifyClient.AccessToken(ctx)
		cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var reply chat.Message
	var err error
	if cfg.Chat.Stream && !askNoStream {
		reply, err = session.Ask(ctx, message, token, func(status string) {
			fmt.Fprintf(os.Stderr, "… %s\n", status)
		})
	} else {
		reply, err = session.AskOnce(ctx, message, token)
	}
	if err != nil {
		return err
	}

	uris := core.ExtractURIs(reply.Text)

	if JSONOutput() {
		output := map[string]interface{}{
			"response":   reply.Text,
			"session_id": session.ID(),
			"track_uris": uris,
		}
		if reply.Mode != "" {
			output["mode"] = reply.Mode
		}
		if len(reply.Images) > 0 {
			output["images"] = reply.Images
		}
		if err := json.NewEncoder(os.Stdout).Encode(output); err != nil {
			return err
		}
	} else {
		fmt.Println(reply.Text)
		if session.ID() != "" {
			fmt.Fprintf(os.Stderr, "\nsession: %s\n", session.ID())
		}
	}

	if askPlay && len(uris) > 0 {
		return playURIs(ctx, uris)
	}

	return nil
}
