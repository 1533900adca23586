package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database   DatabaseConfig   `toml:"database"`
	Server     ServerConfig     `toml:"server"`
	Automation AutomationConfig `toml:"automation"`
	Platforms  PlatformsConfig  `toml:"platforms"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// AutomationConfig contains settings for the automated action engine.
type AutomationConfig struct {
	AllowDebugActions bool `toml:"allow_debug_actions"`
}

// PlatformsConfig contains per-platform API credentials.
type PlatformsConfig struct {
	Spotify    ClientCredentialsConfig `toml:"spotify"`
	Tidal      ClientCredentialsConfig `toml:"tidal"`
	AppleMusic AppleMusicConfig        `toml:"apple_music"`
	Steam      SteamConfig             `toml:"steam"`
}

// ClientCredentialsConfig contains OAuth client-credentials settings shared by
// Spotify and Tidal.
type ClientCredentialsConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// AppleMusicConfig contains Apple Music developer-token settings.
type AppleMusicConfig struct {
	KeyID   string `toml:"key_id"`
	KeyPath string `toml:"key_path"`
	TeamID  string `toml:"team_id"`
}

// SteamConfig contains Steam Web API settings.
type SteamConfig struct {
	APIKey string `toml:"api_key"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidArgument)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
