package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.accom/config.toml shared by the
// relay daemon and the session client.
type Config struct {
	DefaultSession string `toml:"default_session"`
	Relay          Relay  `toml:"relay"`
	Client         Client `toml:"client"`
}

// Relay configures the world relay daemon.
type Relay struct {
	ListenAddr string `toml:"listen_addr"`
	WorldDB    string `toml:"world_db"` // empty = <base dir>/world.db
}

// Client configures a player session client.
type Client struct {
	RelayURL         string `toml:"relay_url"`
	User             string `toml:"user"`
	Actor            string `toml:"actor"` // actor id controlled at startup
	AlarmHideSeconds int    `toml:"alarm_hide_seconds"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DefaultSession: "main",
		Relay: Relay{
			ListenAddr: "127.0.0.1:7619",
		},
		Client: Client{
			RelayURL:         "http://127.0.0.1:7619",
			AlarmHideSeconds: 8,
		},
	}
}

// Load reads config from the given path, layering it over defaults.
// Returns an error if the file is missing or malformed.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault reads config from path, falling back to defaults when
// the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
