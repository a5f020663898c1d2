package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/solho/setlist/internal/config"
	"github.com/solho/setlist/internal/logging"
	"github.com/solho/setlist/internal/spotify/auth"
	"github.com/solho/setlist/internal/spotify/client"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	jsonOut bool
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "setlist",
	Short: "Chat your way to a Spotify playlist",
	Long: `Setlist turns natural-language playlist requests into Spotify playback.

Describe what you want to hear, and the playlist service picks the
tracks; setlist queues them up and plays them through the Spotify
embed widget or a Spotify Connect device.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.setlistrc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}

// newLogger builds a logger honoring the log config and --verbose.
func newLogger() *log.Logger {
	out := os.Stderr
	if cfg != nil && cfg.Log.File != "" {
		if f, err := os.OpenFile(cfg.Log.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
			out = f
		}
	}

	logger := logging.New(out)
	level := "info"
	if cfg != nil && cfg.Log.Level != "" {
		level = cfg.Log.Level
	}
	if verbose {
		level = "debug"
	}
	logger.SetLevel(logging.ParseLevel(level))
	return logger
}

// spotifyClientFromConfig builds an authenticated Spotify client, or
// an error explaining what setup is missing.
func spotifyClientFromConfig() (*client.Client, error) {
	if cfg.Spotify.ClientID == "" {
		return nil, fmt.Errorf("spotify.client_id not configured. Set it in ~/.setlistrc or via SETLIST_SPOTIFY_CLIENT_ID")
	}

	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token storage: %w", err)
	}

	c := client.New(cfg.Spotify.ClientID, storage)
	c.SetLogger(newLogger())
	if err := c.LoadToken(); err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if !c.HasToken() {
		return nil, fmt.Errorf("not authenticated. Run 'setlist auth login' first")
	}

	return c, nil
}
