// Package bridge is the set of operations the UI can invoke: launching
// applications, running commands, acting on quick-search results, opening
// files, and the debug helpers. Every action is timed, logged, counted,
// recorded in history and published as an activity event.
package bridge

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mattjoyce/mira-bridge/internal/events"
	"github.com/mattjoyce/mira-bridge/internal/history"
	"github.com/mattjoyce/mira-bridge/internal/log"
	"github.com/mattjoyce/mira-bridge/internal/protocol"
	"github.com/mattjoyce/mira-bridge/internal/sysinfo"
	"github.com/mattjoyce/mira-bridge/internal/window"
)

// Entry point names, shared with the RPC surface.
const (
	EntryLaunchApp         = "launch_app"
	EntryExecuteCommand    = "execute_command"
	EntryExecuteAsync      = "execute_command_async"
	EntryQuickSearchResult = "handle_quick_search_result"
	EntryOpenFile          = "open_file"
	EntryShowInFileManager = "show_in_file_manager"
	EntryOpenDevtools      = "open_devtools"
	EntryIsDebugMode       = "is_debug_mode"
	EntrySystemInfo        = "get_system_info"
)

// DefaultTitle is applied to the main window when the UI attaches.
const DefaultTitle = "Mira Launcher"

// Runner runs commands and launches applications (process.Executor).
type Runner interface {
	Execute(ctx context.Context, program string, args []string) protocol.Result
	Start(ctx context.Context, program string, args []string) protocol.Result
	Launch(ctx context.Context, path string) protocol.Result
}

// Opener opens and reveals files (opener.Opener).
type Opener interface {
	Open(ctx context.Context, path string) protocol.Result
	Reveal(ctx context.Context, path string) protocol.Result
}

// Dispatcher routes quick-search results (router.Router).
type Dispatcher interface {
	Dispatch(ctx context.Context, req protocol.ActionRequest) protocol.Result
}

// Devtools is the debug-gated devtools controller (devtools.Controller).
type Devtools interface {
	Enabled() bool
	Open(ctx context.Context) protocol.Result
	RegisterShortcut(ctx context.Context, w window.Window) error
}

// History records completed calls (history.Store).
type History interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
}

// Metrics counts completed calls (metrics.Recorder).
type Metrics interface {
	ObserveDispatch(entry, kind string, ok bool, d time.Duration)
}

// Publisher fans out activity (events.Hub).
type Publisher interface {
	Publish(eventType string, data any) events.Event
}

// Deps are the collaborators of a Service. History, Metrics and Events are
// optional.
type Deps struct {
	Runner     Runner
	Opener     Opener
	Dispatcher Dispatcher
	Devtools   Devtools
	History    History
	Metrics    Metrics
	Events     Publisher
}

// Service implements the invokable bridge operations.
type Service struct {
	deps    Deps
	title   string
	collect func(context.Context) (sysinfo.Info, error)
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTitle overrides the window title set on attach.
func WithTitle(title string) Option {
	return func(s *Service) {
		if strings.TrimSpace(title) != "" {
			s.title = title
		}
	}
}

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// New creates a Service.
func New(deps Deps, opts ...Option) *Service {
	s := &Service{
		deps:    deps,
		title:   DefaultTitle,
		collect: sysinfo.Collect,
		logger:  log.WithComponent("bridge"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LaunchApp starts the application at path.
func (s *Service) LaunchApp(ctx context.Context, path string) protocol.Result {
	path = strings.TrimSpace(path)
	return s.track(ctx, EntryLaunchApp, string(protocol.KindApplication), path, func() protocol.Result {
		if path == "" {
			return protocol.Failure("path required")
		}
		return s.deps.Runner.Launch(ctx, path)
	})
}

// ExecuteCommand runs program with args and waits for it.
func (s *Service) ExecuteCommand(ctx context.Context, program string, args []string) protocol.Result {
	return s.track(ctx, EntryExecuteCommand, "", program, func() protocol.Result {
		return s.deps.Runner.Execute(ctx, program, args)
	})
}

// ExecuteCommandAsync starts program with args without waiting for it.
func (s *Service) ExecuteCommandAsync(ctx context.Context, program string, args []string) protocol.Result {
	return s.track(ctx, EntryExecuteAsync, "", program, func() protocol.Result {
		return s.deps.Runner.Start(ctx, program, args)
	})
}

// HandleQuickSearchResult acts on a selected quick-search result.
func (s *Service) HandleQuickSearchResult(ctx context.Context, req protocol.ActionRequest) protocol.Result {
	return s.track(ctx, EntryQuickSearchResult, string(req.Kind), req.Target(), func() protocol.Result {
		return s.deps.Dispatcher.Dispatch(ctx, req)
	})
}

// OpenFile opens path with the OS default handler.
func (s *Service) OpenFile(ctx context.Context, path string) protocol.Result {
	path = strings.TrimSpace(path)
	return s.track(ctx, EntryOpenFile, string(protocol.KindFile), path, func() protocol.Result {
		if path == "" {
			return protocol.Failure("path required")
		}
		return s.deps.Opener.Open(ctx, path)
	})
}

// ShowInFileManager reveals path in the platform file manager.
func (s *Service) ShowInFileManager(ctx context.Context, path string) protocol.Result {
	path = strings.TrimSpace(path)
	return s.track(ctx, EntryShowInFileManager, string(protocol.KindFile), path, func() protocol.Result {
		if path == "" {
			return protocol.Failure("path required")
		}
		return s.deps.Opener.Reveal(ctx, path)
	})
}

// OpenDevtools opens the webview devtools in debug builds.
func (s *Service) OpenDevtools(ctx context.Context) protocol.Result {
	return s.track(ctx, EntryOpenDevtools, "", "", func() protocol.Result {
		return s.deps.Devtools.Open(ctx)
	})
}

// IsDebugMode reports whether this is a debug build.
func (s *Service) IsDebugMode() bool {
	return s.deps.Devtools.Enabled()
}

// SystemInfo describes the host. The summary is always available; the
// detailed fields are best effort.
func (s *Service) SystemInfo(ctx context.Context) (sysinfo.Info, protocol.Result) {
	info, err := s.collect(ctx)
	if err != nil {
		s.logger.DebugContext(ctx, "host details unavailable", "error", err)
	}
	return info, protocol.Success(info.Summary())
}

// WindowAttached prepares a freshly attached main window. It is the
// window.Remote attach hook.
func (s *Service) WindowAttached(ctx context.Context, w window.Window) {
	if err := w.SetTitle(ctx, s.title); err != nil {
		s.logger.WarnContext(ctx, "failed to set window title", "error", err)
	}
	if err := s.deps.Devtools.RegisterShortcut(ctx, w); err != nil {
		s.logger.WarnContext(ctx, "failed to register devtools shortcut", "error", err)
	}
	if s.deps.Events != nil {
		s.deps.Events.Publish(events.TypeWindowAttached, map[string]any{"title": s.title})
	}
}

func (s *Service) track(ctx context.Context, entry, kind, target string, run func() protocol.Result) protocol.Result {
	reqID := middleware.GetReqID(ctx)
	logger := s.logger
	if reqID != "" {
		logger = logger.With("request_id", reqID)
	}

	start := time.Now()
	res := run()
	elapsed := time.Since(start)

	if res.OK {
		logger.InfoContext(ctx, "call succeeded", "entry", entry, "target", target, "duration_ms", elapsed.Milliseconds())
	} else {
		logger.WarnContext(ctx, "call failed", "entry", entry, "target", target, "duration_ms", elapsed.Milliseconds(), "error", res.Message)
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveDispatch(entry, kind, res.OK, elapsed)
	}

	rec := history.Entry{
		Entry:     entry,
		Kind:      kind,
		Target:    target,
		OK:        res.OK,
		Message:   res.Message,
		Duration:  elapsed,
		RequestID: reqID,
	}
	if s.deps.History != nil {
		stored, err := s.deps.History.Record(context.WithoutCancel(ctx), rec)
		if err != nil {
			logger.ErrorContext(ctx, "failed to record dispatch", "entry", entry, "error", err)
		} else {
			rec = stored
		}
	}

	if s.deps.Events != nil {
		s.deps.Events.Publish(events.TypeDispatch, events.Dispatch{
			ID:         rec.ID,
			Entry:      entry,
			Kind:       kind,
			Target:     target,
			OK:         res.OK,
			Message:    res.Message,
			DurationMS: elapsed.Milliseconds(),
		})
	}
	return res
}
