package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config represents the complete mira-bridge configuration.
type Config struct {
	Service    ServiceConfig    `yaml:"service"`
	State      StateConfig      `yaml:"state"`
	API        APIConfig        `yaml:"api"`
	Platform   PlatformConfig   `yaml:"platform"`
	Navigation NavigationConfig `yaml:"navigation"`
	Window     WindowConfig     `yaml:"window"`

	// ConfigDir is the directory the config was loaded from. Empty when
	// running on built-in defaults.
	ConfigDir string `yaml:"-"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// StateConfig defines where the bridge keeps its state.
type StateConfig struct {
	Path             string        `yaml:"path"`
	HistoryRetention time.Duration `yaml:"history_retention"`
	// LockPath defaults to mira-bridge.lock next to Path.
	LockPath string `yaml:"lock_path,omitempty"`
}

// APIConfig defines HTTP API server settings.
type APIConfig struct {
	Listen string        `yaml:"listen"`
	Auth   APIAuthConfig `yaml:"auth"`
	CORS   CORSConfig    `yaml:"cors"`
}

// APIAuthConfig defines API authentication settings. Tokens may also be
// supplied by tokens.yaml in the config directory.
type APIAuthConfig struct {
	Tokens []APIToken `yaml:"tokens,omitempty"`
}

// APIToken defines a bearer token and its scopes.
type APIToken struct {
	Token  string   `yaml:"token"`
	Scopes []string `yaml:"scopes"`
}

// CORSConfig lists the webview origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// PlatformConfig selects the OS strategy and overrides its tools.
type PlatformConfig struct {
	// Family is auto, windows, darwin or linux.
	Family   string `yaml:"family"`
	Launcher string `yaml:"launcher,omitempty"`
	Opener   string `yaml:"opener,omitempty"`
}

// NavigationConfig tunes in-app navigation.
type NavigationConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	// MissingWindow is ignore or fail.
	MissingWindow string `yaml:"missing_window"`
}

// WindowConfig tunes the remote host window.
type WindowConfig struct {
	Title string `yaml:"title"`
	// AckTimeout > 0 makes window commands wait for the UI's ack.
	AckTimeout time.Duration `yaml:"ack_timeout"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      "mira-bridge",
			LogLevel:  "info",
			LogFormat: "json",
		},
		State: StateConfig{
			Path:             filepath.Join(defaultDataDir(), "state.db"),
			HistoryRetention: 30 * 24 * time.Hour,
		},
		API: APIConfig{
			Listen: "127.0.0.1:7420",
			CORS: CORSConfig{
				AllowedOrigins: []string{"tauri://localhost", "http://tauri.localhost", "http://localhost:1420"},
			},
		},
		Platform: PlatformConfig{
			Family: "auto",
		},
		Navigation: NavigationConfig{
			Timeout:       5 * time.Second,
			MissingWindow: "ignore",
		},
		Window: WindowConfig{
			Title: "Mira Launcher",
		},
	}
}

// LockFile returns the instance lock path.
func (c *Config) LockFile() string {
	if c.State.LockPath != "" {
		return c.State.LockPath
	}
	return filepath.Join(filepath.Dir(c.State.Path), "mira-bridge.lock")
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "mira-bridge")
	}
	return "./data"
}
