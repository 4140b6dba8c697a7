// Package router classifies quick-search action requests by kind and hands
// them to the component that can carry them out.
package router

import (
	"context"
	"log/slog"

	"github.com/mattjoyce/mira-bridge/internal/log"
	"github.com/mattjoyce/mira-bridge/internal/protocol"
)

// Router is the Dispatcher backed by a launcher, an opener and a navigator.
type Router struct {
	launcher  Launcher
	opener    Opener
	navigator Navigator
	logger    *slog.Logger
}

var _ Dispatcher = (*Router)(nil)

// Option configures a Router.
type Option func(*Router)

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		r.logger = l
	}
}

// New creates a Router.
func New(launcher Launcher, opener Opener, navigator Navigator, opts ...Option) *Router {
	r := &Router{
		launcher:  launcher,
		opener:    opener,
		navigator: navigator,
		logger:    log.WithComponent("router"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dispatch validates req for its kind and delegates it. Validation failures
// are returned before any collaborator is called.
func (r *Router) Dispatch(ctx context.Context, req protocol.ActionRequest) protocol.Result {
	r.logger.InfoContext(ctx, "action request received",
		"kind", string(req.Kind),
		"title", req.Title,
		"target", req.Target(),
		"category", req.Category,
	)

	switch req.Kind {
	case protocol.KindApplication:
		if req.Path == "" {
			return protocol.Failure("path required")
		}
		return r.launcher.Launch(ctx, req.Path)
	case protocol.KindFile:
		if req.Path == "" {
			return protocol.Failure("path required")
		}
		return r.opener.Open(ctx, req.Path)
	case protocol.KindFunction:
		if req.ActionName == "" {
			return protocol.Failure("action required")
		}
		return r.navigator.NavigateAction(ctx, req.ActionName)
	default:
		return protocol.Failuref("unknown kind: %s", req.Kind)
	}
}
