// Package doctor checks that a mira-bridge configuration can actually run
// on this host: platform tools, state location, exposure and lock state.
package doctor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/mattjoyce/mira-bridge/internal/auth"
	"github.com/mattjoyce/mira-bridge/internal/config"
	"github.com/mattjoyce/mira-bridge/internal/lock"
	"github.com/mattjoyce/mira-bridge/internal/platform"
	"github.com/mattjoyce/mira-bridge/internal/storage"
)

// Result holds the outcome of a validation run.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Issue describes a single validation error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// Doctor validates a loaded configuration against the host.
type Doctor struct {
	loaded   *config.Loaded
	goos     string
	lookPath func(string) (string, error)
	checkFS  func(string) error
	tryLock  func(string) (*lock.PIDLock, error)
}

// Option configures a Doctor.
type Option func(*Doctor)

// WithLookPath replaces exec.LookPath.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(d *Doctor) { d.lookPath = fn }
}

// WithFilesystemCheck replaces storage.CheckLocalFilesystem.
func WithFilesystemCheck(fn func(string) error) Option {
	return func(d *Doctor) { d.checkFS = fn }
}

// WithGOOS overrides the host OS.
func WithGOOS(goos string) Option {
	return func(d *Doctor) { d.goos = goos }
}

// New creates a Doctor for a loaded config.
func New(loaded *config.Loaded, opts ...Option) *Doctor {
	d := &Doctor{
		loaded:   loaded,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		checkFS:  storage.CheckLocalFilesystem,
		tryLock:  lock.AcquirePIDLock,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Validate runs all checks and returns a result.
func (d *Doctor) Validate() *Result {
	r := &Result{Valid: true}

	d.validateConfig(r)
	d.reportIntegrity(r)
	d.validatePlatformTools(r)
	d.validateState(r)
	d.warnExposure(r)
	d.warnTimeouts(r)
	d.warnRunningInstance(r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

// validateConfig re-runs config validation so a hand-built config is checked too.
func (d *Doctor) validateConfig(r *Result) {
	if err := config.Validate(d.loaded.Config); err != nil {
		d.addError(r, "config", "", err.Error())
	}
}

func (d *Doctor) reportIntegrity(r *Result) {
	ir := d.loaded.Integrity
	if ir == nil {
		return
	}
	for _, w := range ir.Warnings {
		d.addWarning(r, "integrity", "", w)
	}
	for _, e := range ir.Errors {
		d.addError(r, "integrity", "", e)
	}
	if d.loaded.Files != nil && !ir.Manifest {
		d.addWarning(r, "integrity", "", "no .checksums manifest; run 'mira-bridge config lock' to pin the config")
	}
}

// validatePlatformTools checks that the launcher and opener utilities the
// strategy invokes are on PATH.
func (d *Doctor) validatePlatformTools(r *Result) {
	cfg := d.loaded.Config
	family, err := platform.ParseFamily(cfg.Platform.Family, d.goos)
	if err != nil {
		// Reported by validateConfig.
		return
	}
	if family != platform.FamilyOf(d.goos) {
		d.addWarning(r, "platform", "platform.family",
			fmt.Sprintf("family %q does not match the host OS %q", family, d.goos))
		return
	}

	strategy := platform.New(family, platform.Options{Launcher: cfg.Platform.Launcher, Opener: cfg.Platform.Opener})
	checks := []struct {
		field string
		inv   platform.Invocation
	}{
		{"platform.launcher", strategy.Launch("sample")},
		{"platform.opener", strategy.Open("sample")},
		{"", strategy.Command("sample", nil)},
	}
	seen := map[string]bool{}
	for _, c := range checks {
		name := c.inv.Name
		if name == "sample" || seen[name] {
			continue
		}
		seen[name] = true
		if _, err := d.lookPath(name); err != nil {
			d.addError(r, "platform", c.field, fmt.Sprintf("%s not found on PATH: %v", name, err))
		}
	}
}

func (d *Doctor) validateState(r *Result) {
	path := d.loaded.State.Path
	if path == "" {
		return
	}
	err := d.checkFS(path)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrFilesystemUnknown):
		d.addWarning(r, "state", "state.path", "cannot determine the filesystem type on this platform")
	default:
		d.addError(r, "state", "state.path", err.Error())
	}
}

// warnExposure flags listeners and tokens that widen who can launch programs.
func (d *Doctor) warnExposure(r *Result) {
	cfg := d.loaded.Config
	if !config.IsLoopback(cfg.API.Listen) {
		d.addWarning(r, "api", "api.listen",
			fmt.Sprintf("%s is reachable from the network; any token holder with invoke can run commands", cfg.API.Listen))
	}
	for i, tok := range cfg.API.Auth.Tokens {
		for _, s := range tok.Scopes {
			if strings.TrimSpace(s) == auth.ScopeAll {
				d.addWarning(r, "api", fmt.Sprintf("api.auth.tokens[%d].scopes", i),
					"wildcard scope grants every route; prefer invoke, window, events:ro, history:ro")
			}
		}
	}
	for _, origin := range cfg.API.CORS.AllowedOrigins {
		if origin == "*" {
			d.addWarning(r, "api", "api.cors.allowed_origins", "wildcard origin lets any web page call the bridge")
		}
	}
}

func (d *Doctor) warnTimeouts(r *Result) {
	cfg := d.loaded.Config
	if cfg.Window.AckTimeout > 0 && cfg.Navigation.Timeout > 0 && cfg.Navigation.Timeout < cfg.Window.AckTimeout {
		d.addWarning(r, "navigation", "navigation.timeout",
			fmt.Sprintf("navigation.timeout (%s) is shorter than window.ack_timeout (%s); slow acks will fail navigation",
				cfg.Navigation.Timeout, cfg.Window.AckTimeout))
	}
}

// warnRunningInstance tries the instance lock without keeping it.
func (d *Doctor) warnRunningInstance(r *Result) {
	l, err := d.tryLock(d.loaded.LockFile())
	if err == nil {
		_ = l.Release()
		return
	}
	if errors.Is(err, lock.ErrLocked) {
		d.addWarning(r, "lock", "state.lock_path", err.Error())
		return
	}
	d.addError(r, "lock", "state.lock_path", err.Error())
}

// FormatHuman returns a human-readable validation report.
func FormatHuman(r *Result) string {
	var b strings.Builder

	if r.Valid && len(r.Warnings) == 0 {
		b.WriteString("Configuration valid.\n")
		return b.String()
	}

	if r.Valid && len(r.Warnings) > 0 {
		b.WriteString("Configuration valid")
		fmt.Fprintf(&b, " (%d warning(s))\n", len(r.Warnings))
	}

	if !r.Valid {
		fmt.Fprintf(&b, "Configuration invalid (%d error(s), %d warning(s))\n", len(r.Errors), len(r.Warnings))
	}

	for _, e := range r.Errors {
		if e.Field != "" {
			fmt.Fprintf(&b, "  ERROR [%s] %s: %s\n", e.Category, e.Field, e.Message)
		} else {
			fmt.Fprintf(&b, "  ERROR [%s] %s\n", e.Category, e.Message)
		}
	}
	for _, w := range r.Warnings {
		if w.Field != "" {
			fmt.Fprintf(&b, "  WARN  [%s] %s: %s\n", w.Category, w.Field, w.Message)
		} else {
			fmt.Fprintf(&b, "  WARN  [%s] %s\n", w.Category, w.Message)
		}
	}

	return b.String()
}

// FormatJSON returns the result as indented JSON.
func FormatJSON(r *Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
