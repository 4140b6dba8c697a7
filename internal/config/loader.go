package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mattjoyce/mira-bridge/internal/auth"
	"github.com/mattjoyce/mira-bridge/internal/navigate"
	"github.com/mattjoyce/mira-bridge/internal/platform"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// tokensFile is the shape of tokens.yaml.
type tokensFile struct {
	Tokens []APIToken `yaml:"tokens"`
}

// Loaded is a validated configuration plus non-fatal findings.
type Loaded struct {
	*Config
	Files     *ConfigFiles
	Integrity *IntegrityResult
}

// Load reads the configuration at path, a config.yaml file or a directory
// containing one. Values not present in the file keep their defaults.
func Load(path string) (*Loaded, error) {
	files, err := ResolveFiles(path)
	if err != nil {
		return nil, err
	}

	integrity, err := VerifyIntegrity(files)
	if err != nil {
		return nil, fmt.Errorf("integrity check: %w", err)
	}
	if !integrity.Passed {
		return nil, fmt.Errorf("integrity verification failed:\n  %s\nRun 'mira-bridge config lock' to authorize the current state",
			strings.Join(integrity.Errors, "\n  "))
	}

	cfg := Defaults()
	if err := decodeFile(files.Config, cfg); err != nil {
		return nil, err
	}
	if files.Tokens != "" {
		var tf tokensFile
		if err := decodeFile(files.Tokens, &tf); err != nil {
			return nil, err
		}
		cfg.API.Auth.Tokens = append(cfg.API.Auth.Tokens, tf.Tokens...)
	}
	cfg.ConfigDir = files.Root
	resolvePaths(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &Loaded{Config: cfg, Files: files, Integrity: integrity}, nil
}

// LoadOrDefault loads explicit when given, otherwise the discovered config,
// otherwise the built-in defaults.
func LoadOrDefault(explicit string) (*Loaded, error) {
	path := explicit
	if path == "" {
		found, err := Discover()
		if errors.Is(err, ErrNotFound) {
			cfg := Defaults()
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return &Loaded{Config: cfg, Integrity: &IntegrityResult{Passed: true}}, nil
		}
		if err != nil {
			return nil, err
		}
		path = found
	}
	return Load(path)
}

func decodeFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	dec := yaml.NewDecoder(strings.NewReader(interpolateEnv(string(data))))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// resolvePaths anchors relative state paths at the config directory.
func resolvePaths(cfg *Config) {
	if cfg.ConfigDir == "" {
		return
	}
	if cfg.State.Path != "" && !filepath.IsAbs(cfg.State.Path) {
		cfg.State.Path = filepath.Join(cfg.ConfigDir, cfg.State.Path)
	}
	if cfg.State.LockPath != "" && !filepath.IsAbs(cfg.State.LockPath) {
		cfg.State.LockPath = filepath.Join(cfg.ConfigDir, cfg.State.LockPath)
	}
}

// interpolateEnv replaces ${VAR} with environment variable values.
// Undefined variables are left as-is (not expanded).
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return match
	})
}

// Validate checks cfg for values the bridge cannot run with.
func Validate(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(cfg.Service.LogLevel)] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}
	switch cfg.Service.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("service.log_format must be json or text (got %q)", cfg.Service.LogFormat)
	}

	if cfg.State.Path == "" {
		return fmt.Errorf("state.path is required")
	}
	if cfg.State.HistoryRetention < 0 {
		return fmt.Errorf("state.history_retention must not be negative")
	}

	if _, _, err := net.SplitHostPort(cfg.API.Listen); err != nil {
		return fmt.Errorf("api.listen %q: %w", cfg.API.Listen, err)
	}
	for i, tok := range cfg.API.Auth.Tokens {
		if tok.Token == "" {
			return fmt.Errorf("api.auth.tokens[%d].token is required", i)
		}
		if m := envVarPattern.FindStringSubmatch(tok.Token); m != nil {
			return fmt.Errorf("api.auth.tokens[%d].token: environment variable ${%s} is not set", i, m[1])
		}
		if len(tok.Scopes) == 0 {
			return fmt.Errorf("api.auth.tokens[%d].scopes must be non-empty", i)
		}
		for _, s := range tok.Scopes {
			if !auth.KnownScope(s) {
				return fmt.Errorf("api.auth.tokens[%d]: unknown scope %q", i, s)
			}
		}
	}
	if len(cfg.API.Auth.Tokens) == 0 && !IsLoopback(cfg.API.Listen) {
		return fmt.Errorf("api.listen %q is not loopback; configure api.auth.tokens", cfg.API.Listen)
	}

	if _, err := platform.ParseFamily(cfg.Platform.Family, runtime.GOOS); err != nil {
		return fmt.Errorf("platform.family: %w", err)
	}

	if cfg.Navigation.Timeout < 0 {
		return fmt.Errorf("navigation.timeout must not be negative")
	}
	if _, err := navigate.ParsePolicy(cfg.Navigation.MissingWindow); err != nil {
		return fmt.Errorf("navigation.missing_window: %w", err)
	}

	if cfg.Window.AckTimeout < 0 {
		return fmt.Errorf("window.ack_timeout must not be negative")
	}
	return nil
}

// IsLoopback reports whether a listen address only accepts local peers.
func IsLoopback(listen string) bool {
	host, _, err := net.SplitHostPort(listen)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// AuthTokens converts configured tokens for the auth package.
func (c *Config) AuthTokens() []auth.TokenConfig {
	out := make([]auth.TokenConfig, 0, len(c.API.Auth.Tokens))
	for _, t := range c.API.Auth.Tokens {
		out = append(out, auth.TokenConfig{Token: t.Token, Scopes: t.Scopes})
	}
	return out
}
