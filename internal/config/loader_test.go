package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
		checkFn func(t *testing.T, cfg *Config)
	}{
		{
			name: "empty file keeps defaults",
			yaml: "",
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.API.Listen != "127.0.0.1:7420" {
					t.Errorf("api.listen = %q", cfg.API.Listen)
				}
				if cfg.Navigation.Timeout != 5*time.Second {
					t.Errorf("navigation.timeout = %v", cfg.Navigation.Timeout)
				}
				if cfg.Navigation.MissingWindow != "ignore" {
					t.Errorf("navigation.missing_window = %q", cfg.Navigation.MissingWindow)
				}
				if cfg.Window.Title != "Mira Launcher" {
					t.Errorf("window.title = %q", cfg.Window.Title)
				}
			},
		},
		{
			name: "overrides and relative state path",
			yaml: `
service:
  log_level: debug
  log_format: text
state:
  path: ./state.db
  history_retention: 48h
navigation:
  timeout: 2s
  missing_window: fail
window:
  title: Mira Dev
  ack_timeout: 750ms
platform:
  family: linux
  launcher: gio
`,
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.Service.LogLevel != "debug" || cfg.Service.LogFormat != "text" {
					t.Errorf("service = %+v", cfg.Service)
				}
				if !filepath.IsAbs(cfg.State.Path) || filepath.Base(cfg.State.Path) != "state.db" {
					t.Errorf("state.path = %q, want absolute under config dir", cfg.State.Path)
				}
				if filepath.Dir(cfg.State.Path) != cfg.ConfigDir {
					t.Errorf("state.path %q not anchored at %q", cfg.State.Path, cfg.ConfigDir)
				}
				if cfg.State.HistoryRetention != 48*time.Hour {
					t.Errorf("history_retention = %v", cfg.State.HistoryRetention)
				}
				if cfg.Navigation.Timeout != 2*time.Second || cfg.Navigation.MissingWindow != "fail" {
					t.Errorf("navigation = %+v", cfg.Navigation)
				}
				if cfg.Window.AckTimeout != 750*time.Millisecond || cfg.Window.Title != "Mira Dev" {
					t.Errorf("window = %+v", cfg.Window)
				}
				if cfg.Platform.Launcher != "gio" {
					t.Errorf("platform.launcher = %q", cfg.Platform.Launcher)
				}
			},
		},
		{
			name: "env var interpolation",
			yaml: `
state:
  path: ${MIRA_TEST_DB}
`,
			env: map[string]string{"MIRA_TEST_DB": "/tmp/mira-test.db"},
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.State.Path != "/tmp/mira-test.db" {
					t.Errorf("state.path = %q", cfg.State.Path)
				}
			},
		},
		{
			name:    "unknown field rejected",
			yaml:    "plugins_dir: ./plugins\n",
			wantErr: "field plugins_dir not found",
		},
		{
			name:    "bad log level",
			yaml:    "service:\n  log_level: loud\n",
			wantErr: "service.log_level",
		},
		{
			name:    "bad missing window policy",
			yaml:    "navigation:\n  missing_window: panic\n",
			wantErr: "navigation.missing_window",
		},
		{
			name:    "bad platform family",
			yaml:    "platform:\n  family: plan9\n",
			wantErr: "platform.family",
		},
		{
			name:    "non-loopback listener without tokens",
			yaml:    "api:\n  listen: 0.0.0.0:7420\n",
			wantErr: "not loopback",
		},
		{
			name: "non-loopback listener with tokens",
			yaml: `
api:
  listen: 0.0.0.0:7420
  auth:
    tokens:
      - token: abc123
        scopes: ["invoke"]
`,
			checkFn: func(t *testing.T, cfg *Config) {
				if len(cfg.AuthTokens()) != 1 {
					t.Errorf("tokens = %+v", cfg.API.Auth.Tokens)
				}
			},
		},
		{
			name: "unset token variable",
			yaml: `
api:
  auth:
    tokens:
      - token: ${MIRA_TEST_UNSET_TOKEN}
        scopes: ["*"]
`,
			wantErr: "MIRA_TEST_UNSET_TOKEN",
		},
		{
			name: "unknown scope",
			yaml: `
api:
  auth:
    tokens:
      - token: abc
        scopes: ["admin"]
`,
			wantErr: `unknown scope "admin"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			dir := t.TempDir()
			writeTestFile(t, filepath.Join(dir, ConfigFileName), tt.yaml)

			loaded, err := Load(dir)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("Load() succeeded, want error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Load() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			tt.checkFn(t, loaded.Config)
		})
	}
}

func TestLoadMergesLockedTokens(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, ConfigFileName), "service:\n  name: test\n")
	writeTestFile(t, filepath.Join(dir, TokensFileName), "tokens:\n  - token: from-file\n    scopes: [\"events:ro\"]\n")

	files, err := ResolveFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Lock(files, false); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(filepath.Join(dir, ConfigFileName))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	tokens := loaded.AuthTokens()
	if len(tokens) != 1 || tokens[0].Token != "from-file" {
		t.Fatalf("tokens = %+v", tokens)
	}
	if !loaded.Integrity.Manifest {
		t.Error("expected manifest to be found")
	}
}

func TestLoadRefusesUnlockedTokens(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, ConfigFileName), "")
	writeTestFile(t, filepath.Join(dir, TokensFileName), "tokens: []\n")

	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "integrity verification failed") {
		t.Fatalf("Load() error = %v, want integrity failure", err)
	}
}

func TestLoadOrDefaultWithoutConfig(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	loaded, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault() failed: %v", err)
	}
	if loaded.Files != nil {
		t.Errorf("Files = %+v, want nil on defaults", loaded.Files)
	}
	if loaded.Service.Name != "mira-bridge" {
		t.Errorf("service.name = %q", loaded.Service.Name)
	}
}

func TestIsLoopback(t *testing.T) {
	tests := map[string]bool{
		"127.0.0.1:7420": true,
		"localhost:80":   true,
		"[::1]:7420":     true,
		"0.0.0.0:7420":   false,
		"10.0.0.5:7420":  false,
		":7420":          false,
		"garbage":        false,
	}
	for listen, want := range tests {
		if got := IsLoopback(listen); got != want {
			t.Errorf("IsLoopback(%q) = %v, want %v", listen, got, want)
		}
	}
}

func TestLockFile(t *testing.T) {
	cfg := Defaults()
	cfg.State.Path = "/var/lib/mira/state.db"
	if got := cfg.LockFile(); got != "/var/lib/mira/mira-bridge.lock" {
		t.Errorf("LockFile() = %q", got)
	}
	cfg.State.LockPath = "/run/mira.lock"
	if got := cfg.LockFile(); got != "/run/mira.lock" {
		t.Errorf("LockFile() = %q", got)
	}
}
