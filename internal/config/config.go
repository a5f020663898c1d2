package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.setlistrc, $XDG_CONFIG_HOME/setlist/config.toml, ~/.config/setlist/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	// Try loading from file
	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Apply defaults, then environment variable overrides
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".setlistrc"),
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "setlist", "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Spotify
	if v := os.Getenv("SETLIST_SPOTIFY_CLIENT_ID"); v != "" {
		cfg.Spotify.ClientID = v
	}
	if v := os.Getenv("SETLIST_SPOTIFY_REDIRECT_URI"); v != "" {
		cfg.Spotify.RedirectURI = v
	}

	// Chat
	if v := os.Getenv("SETLIST_CHAT_BASE_URL"); v != "" {
		cfg.Chat.BaseURL = v
	}

	// Player
	if v := os.Getenv("SETLIST_PLAYER_BACKEND"); v != "" {
		cfg.Player.Backend = v
	}
	if v := os.Getenv("SETLIST_PLAYER_DEVICE"); v != "" {
		cfg.Player.Device = v
	}
	if v := os.Getenv("SETLIST_PLAYER_EMBED_PORT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Player.EmbedPort = i
		}
	}

	// TUI
	if v := os.Getenv("SETLIST_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}
	if v := os.Getenv("SETLIST_TUI_REFRESH_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.TUI.RefreshInterval = i
		}
	}

	// Log
	if v := os.Getenv("SETLIST_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SETLIST_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
