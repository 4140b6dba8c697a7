// Package api is the HTTP surface of the bridge: invoke calls from the UI,
// the host-window command stream, activity events, history and metrics.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/mattjoyce/mira-bridge/internal/auth"
	"github.com/mattjoyce/mira-bridge/internal/events"
	"github.com/mattjoyce/mira-bridge/internal/history"
	"github.com/mattjoyce/mira-bridge/internal/protocol"
	"github.com/mattjoyce/mira-bridge/internal/sysinfo"
	"github.com/mattjoyce/mira-bridge/internal/window"
)

// Bridge is the set of invokable operations (bridge.Service).
type Bridge interface {
	LaunchApp(ctx context.Context, path string) protocol.Result
	ExecuteCommand(ctx context.Context, program string, args []string) protocol.Result
	ExecuteCommandAsync(ctx context.Context, program string, args []string) protocol.Result
	HandleQuickSearchResult(ctx context.Context, req protocol.ActionRequest) protocol.Result
	OpenFile(ctx context.Context, path string) protocol.Result
	ShowInFileManager(ctx context.Context, path string) protocol.Result
	OpenDevtools(ctx context.Context) protocol.Result
	IsDebugMode() bool
	SystemInfo(ctx context.Context) (sysinfo.Info, protocol.Result)
}

// WindowStreams is the UI side of the remote host window (window.Remote).
type WindowStreams interface {
	Attach() (<-chan window.Command, func())
	Ack(id string, ack window.Ack) error
	Streams() int
}

// EventStream is the activity hub (events.Hub).
type EventStream interface {
	Publish(eventType string, data any) events.Event
	Subscribe() (<-chan events.Event, func())
	SnapshotSince(lastID int64) []events.Event
}

// HistoryReader lists recent dispatches (history.Store).
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// Config holds API server configuration.
type Config struct {
	Listen string
	// Tokens are the scoped bearer tokens. With none configured every
	// request is treated as fully authorized.
	Tokens         []auth.TokenConfig
	AllowedOrigins []string
	Version        string
	// KeepAlive is the SSE comment interval. Zero means 15s.
	KeepAlive time.Duration
}

// Deps are the collaborators behind the routes. History and Metrics are
// optional.
type Deps struct {
	Bridge  Bridge
	Window  WindowStreams
	Events  EventStream
	History HistoryReader
	Metrics http.Handler
}

// Server represents the HTTP API server.
type Server struct {
	config    Config
	deps      Deps
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time
}

// New creates a new API server instance.
func New(config Config, deps Deps, logger *slog.Logger) *Server {
	if config.KeepAlive <= 0 {
		config.KeepAlive = 15 * time.Second
	}
	return &Server{
		config:    config,
		deps:      deps,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: the SSE streams stay open for the UI's lifetime.
		IdleTimeout: 60 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	s.logger.Info("API server starting", "listen", ln.Addr().String(), "auth", !s.authDisabled())

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("API server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Last-Event-ID"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}).Handler)

	// Unauthenticated ops endpoints.
	r.Get("/healthz", s.handleHealthz)
	r.Get("/openapi.json", s.handleOpenAPI)
	if s.deps.Metrics != nil {
		r.Handle("/metrics", s.deps.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.With(s.requireScopes(auth.ScopeInvoke)).Post("/invoke/{command}", s.handleInvoke)
		r.With(s.requireScopes(auth.ScopeWindow)).Get("/window/stream", s.handleWindowStream)
		r.With(s.requireScopes(auth.ScopeWindow)).Post("/window/ack/{id}", s.handleWindowAck)
		r.With(s.requireScopes(auth.ScopeEventsRO)).Get("/events", s.handleEvents)
		r.With(s.requireScopes(auth.ScopeHistoryRO)).Get("/history", s.handleHistory)
	})

	return r
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
