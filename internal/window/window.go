// Package window models the host application window the bridge drives:
// showing and focusing it, evaluating script in its webview, and the
// debug-only devtools affordances.
//
// The window itself lives in the UI process. Remote implements Host and
// Window by streaming commands to that process over server-sent events
// and, optionally, waiting for it to acknowledge each one.
package window

//go:generate mockgen -destination=mocks/mock_window.go -package=mocks github.com/mattjoyce/mira-bridge/internal/window Window,Host

import (
	"context"
	"errors"
)

var (
	// ErrNoWindow is returned when no UI stream is attached.
	ErrNoWindow = errors.New("main window not available")
	// ErrStale is returned by a handle whose UI stream has detached.
	ErrStale = errors.New("window handle is stale")
	// ErrAckTimeout is returned when the UI does not acknowledge a command in time.
	ErrAckTimeout = errors.New("window command not acknowledged")
	// ErrUnknownCommand is returned by Ack for ids with no pending command.
	ErrUnknownCommand = errors.New("unknown window command")
)

// Window is the main application window.
type Window interface {
	Show(ctx context.Context) error
	SetFocus(ctx context.Context) error
	SetTitle(ctx context.Context, title string) error
	Eval(ctx context.Context, script string) error
	OpenDevtools(ctx context.Context) error
	RegisterShortcut(ctx context.Context, accelerator, action string) error
}

// Host resolves the main window. ok is false when no window exists.
type Host interface {
	MainWindow() (Window, bool)
}

// Operation names, as they appear on the wire prefixed with "window.".
const (
	OpShow             = "show"
	OpSetFocus         = "set_focus"
	OpSetTitle         = "set_title"
	OpEval             = "eval"
	OpOpenDevtools     = "open_devtools"
	OpRegisterShortcut = "register_shortcut"
)

// EventType returns the SSE event name for op.
func EventType(op string) string {
	return "window." + op
}
