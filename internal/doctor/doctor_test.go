package doctor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mattjoyce/mira-bridge/internal/auth"
	"github.com/mattjoyce/mira-bridge/internal/config"
	"github.com/mattjoyce/mira-bridge/internal/lock"
	"github.com/mattjoyce/mira-bridge/internal/storage"
)

func validLoaded(t *testing.T) *config.Loaded {
	t.Helper()
	cfg := config.Defaults()
	cfg.Platform.Family = "linux"
	cfg.State.Path = filepath.Join(t.TempDir(), "state.db")
	return &config.Loaded{Config: cfg, Integrity: &config.IntegrityResult{Passed: true}}
}

func allTools(name string) (string, error) { return "/usr/bin/" + name, nil }

func localFS(string) error { return nil }

func newDoctor(l *config.Loaded, opts ...Option) *Doctor {
	base := []Option{WithGOOS("linux"), WithLookPath(allTools), WithFilesystemCheck(localFS)}
	return New(l, append(base, opts...)...)
}

func hasIssue(issues []Issue, category, substr string) bool {
	for _, i := range issues {
		if i.Category == category && strings.Contains(i.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()
	r := newDoctor(validLoaded(t)).Validate()
	if !r.Valid {
		t.Fatalf("expected valid, got errors: %v", r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", r.Warnings)
	}
}

func TestValidate_MissingLauncher(t *testing.T) {
	t.Parallel()
	l := validLoaded(t)
	l.Platform.Opener = "gio"

	lookPath := func(name string) (string, error) {
		if name == "open" {
			return "", errors.New("executable file not found in $PATH")
		}
		return "/usr/bin/" + name, nil
	}
	r := newDoctor(l, WithLookPath(lookPath)).Validate()

	if r.Valid {
		t.Fatal("expected invalid")
	}
	if !hasIssue(r.Errors, "platform", "open not found") {
		t.Fatalf("errors = %v", r.Errors)
	}
	if hasIssue(r.Errors, "platform", "gio") {
		t.Fatalf("gio is available: %v", r.Errors)
	}
}

func TestValidate_ForeignFamilyWarns(t *testing.T) {
	t.Parallel()
	l := validLoaded(t)
	l.Platform.Family = "windows"

	called := false
	lookPath := func(name string) (string, error) {
		called = true
		return "", fmt.Errorf("missing %s", name)
	}
	r := newDoctor(l, WithLookPath(lookPath)).Validate()

	if !r.Valid {
		t.Fatalf("errors = %v", r.Errors)
	}
	if called {
		t.Fatal("tools of a foreign family must not be looked up")
	}
	if !hasIssue(r.Warnings, "platform", "does not match the host OS") {
		t.Fatalf("warnings = %v", r.Warnings)
	}
}

func TestValidate_NetworkState(t *testing.T) {
	t.Parallel()
	r := newDoctor(validLoaded(t), WithFilesystemCheck(func(p string) error {
		return fmt.Errorf("state database %q is on network filesystem %q", p, "nfs")
	})).Validate()

	if r.Valid || !hasIssue(r.Errors, "state", "network filesystem") {
		t.Fatalf("result = %+v", r)
	}
}

func TestValidate_UnknownFilesystemWarns(t *testing.T) {
	t.Parallel()
	r := newDoctor(validLoaded(t), WithFilesystemCheck(func(string) error {
		return fmt.Errorf("detect: %w", storage.ErrFilesystemUnknown)
	})).Validate()

	if !r.Valid || !hasIssue(r.Warnings, "state", "cannot determine") {
		t.Fatalf("result = %+v", r)
	}
}

func TestValidate_Exposure(t *testing.T) {
	t.Parallel()
	l := validLoaded(t)
	l.API.Listen = "0.0.0.0:7420"
	l.API.Auth.Tokens = []config.APIToken{{Token: "abc", Scopes: []string{auth.ScopeAll}}}
	l.API.CORS.AllowedOrigins = []string{"*"}

	r := newDoctor(l).Validate()

	if !r.Valid {
		t.Fatalf("errors = %v", r.Errors)
	}
	for _, want := range []string{"reachable from the network", "wildcard scope", "wildcard origin"} {
		if !hasIssue(r.Warnings, "api", want) {
			t.Errorf("missing warning %q in %v", want, r.Warnings)
		}
	}
}

func TestValidate_InvalidConfigReported(t *testing.T) {
	t.Parallel()
	l := validLoaded(t)
	l.Navigation.MissingWindow = "explode"

	r := newDoctor(l).Validate()

	if r.Valid || !hasIssue(r.Errors, "config", "navigation.missing_window") {
		t.Fatalf("result = %+v", r)
	}
}

func TestValidate_TimeoutOrdering(t *testing.T) {
	t.Parallel()
	l := validLoaded(t)
	l.Navigation.Timeout = time.Second
	l.Window.AckTimeout = 2 * time.Second

	r := newDoctor(l).Validate()

	if !hasIssue(r.Warnings, "navigation", "shorter than window.ack_timeout") {
		t.Fatalf("warnings = %v", r.Warnings)
	}
}

func TestValidate_Integrity(t *testing.T) {
	t.Parallel()
	l := validLoaded(t)
	l.Files = &config.ConfigFiles{Root: t.TempDir()}
	l.Integrity = &config.IntegrityResult{Passed: true, Warnings: []string{"hash mismatch for config.yaml"}}

	r := newDoctor(l).Validate()

	if !hasIssue(r.Warnings, "integrity", "hash mismatch") || !hasIssue(r.Warnings, "integrity", "config lock") {
		t.Fatalf("warnings = %v", r.Warnings)
	}
}

func TestValidate_RunningInstance(t *testing.T) {
	t.Parallel()
	l := validLoaded(t)
	held, err := lock.AcquirePIDLock(l.LockFile())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = held.Release() })

	r := newDoctor(l).Validate()

	if !r.Valid || !hasIssue(r.Warnings, "lock", "holds the lock") {
		t.Fatalf("result = %+v", r)
	}
}

func TestFormatHuman(t *testing.T) {
	t.Parallel()
	ok := FormatHuman(&Result{Valid: true})
	if ok != "Configuration valid.\n" {
		t.Fatalf("got %q", ok)
	}

	out := FormatHuman(&Result{
		Valid:    false,
		Errors:   []Issue{{Category: "platform", Field: "platform.launcher", Message: "open not found"}},
		Warnings: []Issue{{Category: "api", Message: "exposed"}},
	})
	for _, want := range []string{
		"Configuration invalid (1 error(s), 1 warning(s))",
		"ERROR [platform] platform.launcher: open not found",
		"WARN  [api] exposed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	t.Parallel()
	out, err := FormatJSON(&Result{Valid: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"valid": true`) {
		t.Fatalf("got %s", out)
	}
}
