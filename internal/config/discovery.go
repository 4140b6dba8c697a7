package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EnvConfig names the environment variable that points at a config file
// or directory.
const EnvConfig = "MIRA_BRIDGE_CONFIG"

// ErrNotFound is returned by Discover when no config exists anywhere.
var ErrNotFound = errors.New("no config found")

// File names inside a config directory.
const (
	ConfigFileName   = "config.yaml"
	TokensFileName   = "tokens.yaml"
	ChecksumFileName = ".checksums"
)

// FileTier describes how strictly a file's checksum is enforced.
type FileTier int

const (
	// TierOperational mismatches are warnings.
	TierOperational FileTier = iota
	// TierHighSecurity mismatches refuse to load.
	TierHighSecurity
)

// ConfigFiles is the set of files that make up one configuration.
type ConfigFiles struct {
	Root   string
	Config string
	// Tokens is empty when tokens.yaml does not exist.
	Tokens string
}

// AllFiles returns every present file, root config first.
func (f *ConfigFiles) AllFiles() []string {
	files := []string{f.Config}
	if f.Tokens != "" {
		files = append(files, f.Tokens)
	}
	return files
}

// HighSecurityFiles returns present files whose tampering must block startup.
func (f *ConfigFiles) HighSecurityFiles() []string {
	if f.Tokens == "" {
		return nil
	}
	return []string{f.Tokens}
}

// FileTier classifies path.
func (f *ConfigFiles) FileTier(path string) FileTier {
	if path == f.Tokens && f.Tokens != "" {
		return TierHighSecurity
	}
	return TierOperational
}

// ResolveFiles turns a config file or directory path into its ConfigFiles.
func ResolveFiles(path string) (*ConfigFiles, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\nHint: check the path or set $%s", abs, EnvConfig)
	}

	cf := &ConfigFiles{}
	if info.IsDir() {
		cf.Root = abs
		cf.Config = filepath.Join(abs, ConfigFileName)
		if !fileExists(cf.Config) {
			return nil, fmt.Errorf("directory provided but %s not found: %s", ConfigFileName, cf.Config)
		}
	} else {
		cf.Root = filepath.Dir(abs)
		cf.Config = abs
	}
	if tokens := filepath.Join(cf.Root, TokensFileName); fileExists(tokens) {
		cf.Tokens = tokens
	}
	return cf, nil
}

// Discover finds the config file by checking, in order, $MIRA_BRIDGE_CONFIG,
// ~/.config/mira-bridge/config.yaml and ./config.yaml.
func Discover() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("$%s points at %q, which does not exist", EnvConfig, p)
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "mira-bridge", ConfigFileName)
		if fileExists(p) {
			return p, nil
		}
	}

	if fileExists(ConfigFileName) {
		return ConfigFileName, nil
	}

	return "", fmt.Errorf("%w (checked: $%s, ~/.config/mira-bridge/%s, ./%s)", ErrNotFound, EnvConfig, ConfigFileName, ConfigFileName)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
