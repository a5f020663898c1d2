package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/solho/setlist/internal/core"
	slerrors "github.com/solho/setlist/internal/errors"
	"github.com/solho/setlist/internal/spotify/client"
	"github.com/solho/setlist/internal/wizard"
	"github.com/spf13/cobra"
)

var playDevice string

var playCmd = &cobra.Command{
	Use:   "play <uri-or-url>...",
	Short: "Play tracks on a Spotify device",
	Long: `Plays the given tracks or episodes on a Spotify Connect device.

Accepts spotify:track:... URIs or open.spotify.com links; links found
inside pasted text are extracted automatically.

Examples:
  setlist play spotify:track:4cOdK2wGLETKBW3PvgPWqT
  setlist play "https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT"
  setlist play --device Kitchen spotify:track:abc spotify:track:def`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&playDevice, "device", "d", "", "target device name or ID")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	uris := core.ExtractURIs(strings.Join(args, " "))
	if len(uris) == 0 {
		// Bare URIs don't match the link pattern; accept them directly.
		for _, arg := range args {
			if core.Kind(arg) != core.KindUnknown {
				uris = append(uris, arg)
			}
		}
	}
	if len(uris) == 0 {
		return fmt.Errorf("no playable tracks in arguments")
	}

	ctx := context.Background()
	return playURIs(ctx, uris)
}

// playURIs starts playback of the URIs on the configured or selected
// device.
func playURIs(ctx context.Context, uris []string) error {
	spotifyClient, err := spotifyClientFromConfig()
	if err != nil {
		return err
	}

	deviceID, err := resolveDevice(ctx, spotifyClient)
	if err != nil {
		return err
	}

	opts := &client.PlayOptions{URIs: uris}
	if err := spotifyClient.Play(ctx, deviceID, opts); err != nil {
		if client.IsNoActiveDeviceError(err) {
			return slerrors.ErrNoActiveDevice
		}
		return fmt.Errorf("failed to start playback: %w", err)
	}

	fmt.Printf("Playing %d track(s)\n", len(uris))
	return nil
}

// resolveDevice picks the target device: the --device flag, the
// configured device, the single active device, or an interactive
// picker. Returns empty for "whatever device is active".
func resolveDevice(ctx context.Context, spotifyClient *client.Client) (string, error) {
	want := playDevice
	if want == "" {
		want = cfg.Player.Device
	}

	devices, err := spotifyClient.GetDevices(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get devices: %w", err)
	}

	if want != "" {
		for _, d := range devices {
			if d.ID == want || strings.EqualFold(d.Name, want) {
				return d.ID, nil
			}
		}
		return "", fmt.Errorf("%w: %s", slerrors.ErrDeviceNotFound, want)
	}

	coreDevices := make([]core.Device, len(devices))
	for i, d := range devices {
		coreDevices[i] = core.Device{
			ID:       d.ID,
			Name:     d.Name,
			Type:     core.DeviceType(d.Type),
			IsActive: d.IsActive,
		}
	}

	if !wizard.NeedsDevice("", coreDevices) {
		if active := wizard.GetActiveDevice(coreDevices); active != nil {
			return active.ID, nil
		}
	}

	interactive := wizard.NewInteractive()
	interactive.SetDevices(coreDevices)
	selected, err := interactive.PromptDevice()
	if err != nil {
		return "", err
	}
	if selected == nil {
		// Non-interactive with no clear target: let Spotify pick the
		// active device.
		return "", nil
	}
	return selected.ID, nil
}
