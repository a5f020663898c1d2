package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available playback devices",
	Long:  `Lists the Spotify Connect devices available to your account.`,
	RunE:  runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	spotifyClient, err := spotifyClientFromConfig()
	if err != nil {
		return err
	}

	devices, err := spotifyClient.GetDevices(ctx)
	if err != nil {
		return fmt.Errorf("failed to get devices: %w", err)
	}

	if len(devices) == 0 {
		if JSONOutput() {
			return json.NewEncoder(os.Stdout).Encode([]interface{}{})
		}
		fmt.Println("No devices found. Make sure Spotify is open on at least one device.")
		return nil
	}

	if JSONOutput() {
		output := make([]map[string]interface{}, 0, len(devices))
		for _, d := range devices {
			item := map[string]interface{}{
				"id":        d.ID,
				"name":      d.Name,
				"type":      d.Type,
				"is_active": d.IsActive,
			}
			if d.VolumePercent != nil {
				item["volume"] = *d.VolumePercent
			}
			output = append(output, item)
		}
		return json.NewEncoder(os.Stdout).Encode(output)
	}

	table := NewTable("", "NAME", "TYPE", "ID")
	for _, d := range devices {
		table.Row(StatusIcon(d.IsActive), d.Name, d.Type, TruncateString(d.ID, 16))
	}
	table.Flush()

	return nil
}
