// Package devtools gates the webview developer tools behind the debug build.
package devtools

import (
	"context"
	"log/slog"

	"github.com/mattjoyce/mira-bridge/internal/buildinfo"
	"github.com/mattjoyce/mira-bridge/internal/log"
	"github.com/mattjoyce/mira-bridge/internal/platform"
	"github.com/mattjoyce/mira-bridge/internal/protocol"
	"github.com/mattjoyce/mira-bridge/internal/window"
)

const (
	// UnavailableMessage is reported by Open in release builds.
	UnavailableMessage = "開發者工具僅在調試模式下可用"
	// OpenedMessage is reported after the devtools were opened.
	OpenedMessage = "開發者工具已開啟"
	// ShortcutAction is the action name the UI binds to the accelerator.
	ShortcutAction = "open_devtools"
)

// Accelerator returns the devtools shortcut for family.
func Accelerator(family platform.Family) string {
	if family == platform.Darwin {
		return "Cmd+Alt+I"
	}
	return "F12"
}

// Controller opens devtools and registers their shortcut.
type Controller struct {
	host    window.Host
	family  platform.Family
	enabled bool
	logger  *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithEnabled overrides the build's debug flag.
func WithEnabled(enabled bool) Option {
	return func(c *Controller) {
		c.enabled = enabled
	}
}

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// New returns a Controller, enabled only in debug builds.
func New(host window.Host, family platform.Family, opts ...Option) *Controller {
	c := &Controller{
		host:    host,
		family:  family,
		enabled: buildinfo.Debug,
		logger:  log.WithComponent("devtools"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether devtools are available.
func (c *Controller) Enabled() bool {
	return c.enabled
}

// Open opens the devtools of the main window.
func (c *Controller) Open(ctx context.Context) protocol.Result {
	if !c.enabled {
		return protocol.Failure(UnavailableMessage)
	}
	w, ok := c.host.MainWindow()
	if !ok {
		return protocol.Failure(window.ErrNoWindow.Error())
	}
	if err := w.OpenDevtools(ctx); err != nil {
		c.logger.WarnContext(ctx, "open devtools failed", "error", err)
		return protocol.Failure(err.Error())
	}
	return protocol.Success(OpenedMessage)
}

// RegisterShortcut binds the platform accelerator on w. It does nothing in
// release builds.
func (c *Controller) RegisterShortcut(ctx context.Context, w window.Window) error {
	if !c.enabled {
		return nil
	}
	accel := Accelerator(c.family)
	if err := w.RegisterShortcut(ctx, accel, ShortcutAction); err != nil {
		c.logger.WarnContext(ctx, "failed to register devtools shortcut", "accelerator", accel, "error", err)
		return err
	}
	c.logger.DebugContext(ctx, "devtools shortcut registered", "accelerator", accel)
	return nil
}
