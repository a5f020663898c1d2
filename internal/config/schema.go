package config

// Config is the root configuration structure.
type Config struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Chat    ChatConfig    `toml:"chat"`
	Player  PlayerConfig  `toml:"player"`
	TUI     TUIConfig     `toml:"tui"`
	Log     LogConfig     `toml:"log"`
}

// SpotifyConfig holds Spotify API settings.
type SpotifyConfig struct {
	ClientID    string `toml:"client_id"`
	RedirectURI string `toml:"redirect_uri"`
}

// ChatConfig holds playlist chat service settings.
type ChatConfig struct {
	BaseURL string `toml:"base_url"`
	Stream  bool   `toml:"stream"`
}

// PlayerConfig holds playback settings.
type PlayerConfig struct {
	Backend      string `toml:"backend"` // embed, connect
	Device       string `toml:"device"`  // Connect device id or name
	EmbedPort    int    `toml:"embed_port"`
	PollInterval int    `toml:"poll_interval"` // milliseconds
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme"`
	RefreshInterval int    `toml:"refresh_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
