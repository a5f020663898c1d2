package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	if cfg.Spotify.RedirectURI == "" {
		t.Error("RedirectURI default not applied")
	}
	if cfg.Chat.BaseURL == "" {
		t.Error("Chat.BaseURL default not applied")
	}
	if !cfg.Chat.Stream {
		t.Error("Chat.Stream should default to true")
	}
	if cfg.Player.Backend != "embed" {
		t.Errorf("Player.Backend = %q, want embed", cfg.Player.Backend)
	}
	if cfg.Player.EmbedPort == 0 {
		t.Error("Player.EmbedPort default not applied")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestApplyDefaultsKeepsExisting(t *testing.T) {
	cfg := &Config{
		Player: PlayerConfig{Backend: "connect", EmbedPort: 9000},
		Log:    LogConfig{Level: "debug"},
	}
	cfg.ApplyDefaults()

	if cfg.Player.Backend != "connect" {
		t.Errorf("Player.Backend = %q, want connect", cfg.Player.Backend)
	}
	if cfg.Player.EmbedPort != 9000 {
		t.Errorf("Player.EmbedPort = %d, want 9000", cfg.Player.EmbedPort)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[spotify]
client_id = "abc123"

[chat]
base_url = "http://localhost:9999"
stream = true

[player]
backend = "connect"
device = "Kitchen"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Spotify.ClientID != "abc123" {
		t.Errorf("ClientID = %q", cfg.Spotify.ClientID)
	}
	if cfg.Chat.BaseURL != "http://localhost:9999" {
		t.Errorf("Chat.BaseURL = %q", cfg.Chat.BaseURL)
	}
	if cfg.Player.Backend != "connect" || cfg.Player.Device != "Kitchen" {
		t.Errorf("Player = %+v", cfg.Player)
	}
	// Defaults still fill unset fields
	if cfg.Player.EmbedPort == 0 {
		t.Error("Player.EmbedPort default not applied")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SETLIST_SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SETLIST_CHAT_BASE_URL", "http://env:1234")
	t.Setenv("SETLIST_PLAYER_BACKEND", "connect")
	t.Setenv("SETLIST_LOG_LEVEL", "debug")

	cfg := &Config{}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	if cfg.Spotify.ClientID != "env-id" {
		t.Errorf("ClientID = %q, want env-id", cfg.Spotify.ClientID)
	}
	if cfg.Chat.BaseURL != "http://env:1234" {
		t.Errorf("Chat.BaseURL = %q", cfg.Chat.BaseURL)
	}
	if cfg.Player.Backend != "connect" {
		t.Errorf("Player.Backend = %q", cfg.Player.Backend)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad backend",
			mutate:  func(c *Config) { c.Player.Backend = "cassette" },
			wantErr: "invalid backend",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Player.EmbedPort = 70000 },
			wantErr: "embed_port",
		},
		{
			name:    "bad chat scheme",
			mutate:  func(c *Config) { c.Chat.BaseURL = "ftp://example.com" },
			wantErr: "base_url scheme",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "bad theme",
			mutate:  func(c *Config) { c.TUI.Theme = "solarized" },
			wantErr: "invalid theme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
