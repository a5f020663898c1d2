package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			RedirectURI: "http://127.0.0.1:8888/callback",
		},
		Chat: ChatConfig{
			BaseURL: "http://127.0.0.1:8000",
			Stream:  true,
		},
		Player: PlayerConfig{
			Backend:      "embed",
			EmbedPort:    8890,
			PollInterval: 1000,
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Spotify
	if c.Spotify.RedirectURI == "" {
		c.Spotify.RedirectURI = d.Spotify.RedirectURI
	}

	// Chat
	if c.Chat.BaseURL == "" {
		c.Chat.BaseURL = d.Chat.BaseURL
		c.Chat.Stream = d.Chat.Stream
	}

	// Player
	if c.Player.Backend == "" {
		c.Player.Backend = d.Player.Backend
	}
	if c.Player.EmbedPort == 0 {
		c.Player.EmbedPort = d.Player.EmbedPort
	}
	if c.Player.PollInterval == 0 {
		c.Player.PollInterval = d.Player.PollInterval
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
