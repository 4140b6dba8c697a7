// Package navigate drives the UI to one of its top-level views and brings
// the main window to the front.
package navigate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mattjoyce/mira-bridge/internal/log"
	"github.com/mattjoyce/mira-bridge/internal/protocol"
	"github.com/mattjoyce/mira-bridge/internal/window"
)

// Target is a navigable view.
type Target string

const (
	Settings  Target = "settings"
	Plugins   Target = "plugins"
	Downloads Target = "downloads"
	About     Target = "about"
)

type targetInfo struct {
	action  string
	success string
}

var targets = map[Target]targetInfo{
	Settings:  {action: "open-settings", success: "已打开设置"},
	Plugins:   {action: "open-plugins", success: "已打开插件"},
	Downloads: {action: "open-downloads", success: "已打开下载"},
	About:     {action: "open-about", success: "已打开关于"},
}

// Targets lists every target in a stable order.
func Targets() []Target {
	return []Target{Settings, Plugins, Downloads, About}
}

// ParseAction maps an action name such as "open-settings" to its target.
// Matching is exact.
func ParseAction(name string) (Target, bool) {
	for t, info := range targets {
		if info.action == name {
			return t, true
		}
	}
	return "", false
}

// Valid reports whether t is a known target.
func (t Target) Valid() bool {
	_, ok := targets[t]
	return ok
}

// Action returns the action name that selects t.
func (t Target) Action() string {
	return targets[t].action
}

// SuccessMessage is reported after navigating to t.
func (t Target) SuccessMessage() string {
	return targets[t].success
}

// Script is the JavaScript that moves the hash router to t.
func (t Target) Script() string {
	return fmt.Sprintf("window.location.hash = '#/%s'", t)
}

// Policy decides what happens when there is no main window.
type Policy string

const (
	// PolicyIgnore reports success without touching the UI.
	PolicyIgnore Policy = "ignore"
	// PolicyFail reports a failure.
	PolicyFail Policy = "fail"
)

// ParsePolicy accepts "", "ignore" and "fail".
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyIgnore:
		return PolicyIgnore, nil
	case PolicyFail:
		return PolicyFail, nil
	default:
		return "", fmt.Errorf("invalid missing-window policy %q (want ignore or fail)", s)
	}
}

// DefaultTimeout bounds the three window steps of a navigation.
const DefaultTimeout = 5 * time.Second

// Step failure prefixes.
const (
	prefixNavigate = "导航失败"
	prefixShow     = "显示窗口失败"
	prefixFocus    = "聚焦窗口失败"
)

// Signaler performs navigation against the host's main window.
type Signaler struct {
	host    window.Host
	policy  Policy
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Signaler.
type Option func(*Signaler)

// WithPolicy sets the missing-window policy.
func WithPolicy(p Policy) Option {
	return func(s *Signaler) {
		s.policy = p
	}
}

// WithTimeout bounds the window steps. Non-positive values disable the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Signaler) {
		s.timeout = d
	}
}

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Signaler) {
		s.logger = l
	}
}

// New returns a Signaler for host.
func New(host window.Host, opts ...Option) *Signaler {
	s := &Signaler{
		host:    host,
		policy:  PolicyIgnore,
		timeout: DefaultTimeout,
		logger:  log.WithComponent("navigate"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NavigateAction resolves name and navigates to its target.
func (s *Signaler) NavigateAction(ctx context.Context, name string) protocol.Result {
	t, ok := ParseAction(name)
	if !ok {
		return protocol.Failuref("unknown function: %s", name)
	}
	return s.Navigate(ctx, t)
}

// Navigate sets the UI route for t, then shows and focuses the main window.
// The first failing step ends the sequence.
func (s *Signaler) Navigate(ctx context.Context, t Target) protocol.Result {
	if !t.Valid() {
		return protocol.Failuref("unknown target: %s", t)
	}

	w, ok := s.host.MainWindow()
	if !ok {
		if s.policy == PolicyFail {
			s.logger.WarnContext(ctx, "navigation without main window", "target", string(t))
			return protocol.Failure(window.ErrNoWindow.Error())
		}
		s.logger.InfoContext(ctx, "no main window, navigation skipped", "target", string(t))
		return protocol.Success(t.SuccessMessage())
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	steps := []struct {
		prefix string
		run    func(context.Context) error
	}{
		{prefixNavigate, func(ctx context.Context) error { return w.Eval(ctx, t.Script()) }},
		{prefixShow, w.Show},
		{prefixFocus, w.SetFocus},
	}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			s.logger.WarnContext(ctx, "navigation step failed", "target", string(t), "step", step.prefix, "error", err)
			return protocol.Failuref("%s: %v", step.prefix, err)
		}
	}

	s.logger.InfoContext(ctx, "navigated", "target", string(t))
	return protocol.Success(t.SuccessMessage())
}
