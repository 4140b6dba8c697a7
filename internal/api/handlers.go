package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mattjoyce/mira-bridge/internal/bridge"
	"github.com/mattjoyce/mira-bridge/internal/protocol"
)

// maxBodyBytes bounds invoke and ack bodies.
const maxBodyBytes = 1 << 20

// errBadArgs marks a body the handler could not decode.
var errBadArgs = errors.New("invalid arguments")

// command describes one invokable entry point.
type command struct {
	summary string
	// args is a sample of the argument object, used for the OpenAPI schema.
	args any
	run  func(s *Server, r *http.Request, body []byte) (any, error)
}

var commands = map[string]command{
	bridge.EntryLaunchApp: {
		summary: "Start an application by path",
		args:    LaunchAppArgs{},
		run: func(s *Server, r *http.Request, body []byte) (any, error) {
			var a LaunchAppArgs
			if err := decodeArgs(body, &a); err != nil {
				return nil, err
			}
			path := a.AppPath
			if strings.TrimSpace(path) == "" {
				path = a.Path
			}
			return s.deps.Bridge.LaunchApp(r.Context(), path), nil
		},
	},
	bridge.EntryExecuteCommand: {
		summary: "Run a command and wait for it to exit",
		args:    ExecuteCommandArgs{},
		run: func(s *Server, r *http.Request, body []byte) (any, error) {
			var a ExecuteCommandArgs
			if err := decodeArgs(body, &a); err != nil {
				return nil, err
			}
			return s.deps.Bridge.ExecuteCommand(r.Context(), a.Command, a.Args), nil
		},
	},
	bridge.EntryExecuteAsync: {
		summary: "Start a command without waiting for it",
		args:    ExecuteCommandArgs{},
		run: func(s *Server, r *http.Request, body []byte) (any, error) {
			var a ExecuteCommandArgs
			if err := decodeArgs(body, &a); err != nil {
				return nil, err
			}
			return s.deps.Bridge.ExecuteCommandAsync(r.Context(), a.Command, a.Args), nil
		},
	},
	bridge.EntryQuickSearchResult: {
		summary: "Act on a selected quick-search result",
		args:    QuickSearchArgs{},
		run: func(s *Server, r *http.Request, body []byte) (any, error) {
			var a QuickSearchArgs
			if err := decodeArgs(body, &a); err != nil {
				return nil, err
			}
			req, err := protocol.ParseActionRequest(a.Result)
			if err != nil {
				return nil, fmt.Errorf("%w: result: %v", errBadArgs, err)
			}
			return s.deps.Bridge.HandleQuickSearchResult(r.Context(), req), nil
		},
	},
	bridge.EntryOpenFile: {
		summary: "Open a file with the default application",
		args:    OpenFileArgs{},
		run: func(s *Server, r *http.Request, body []byte) (any, error) {
			var a OpenFileArgs
			if err := decodeArgs(body, &a); err != nil {
				return nil, err
			}
			return s.deps.Bridge.OpenFile(r.Context(), a.Path), nil
		},
	},
	bridge.EntryShowInFileManager: {
		summary: "Reveal a file in the platform file manager",
		args:    OpenFileArgs{},
		run: func(s *Server, r *http.Request, body []byte) (any, error) {
			var a OpenFileArgs
			if err := decodeArgs(body, &a); err != nil {
				return nil, err
			}
			return s.deps.Bridge.ShowInFileManager(r.Context(), a.Path), nil
		},
	},
	bridge.EntryOpenDevtools: {
		summary: "Open the webview developer tools (debug builds)",
		run: func(s *Server, r *http.Request, _ []byte) (any, error) {
			return s.deps.Bridge.OpenDevtools(r.Context()), nil
		},
	},
	bridge.EntryIsDebugMode: {
		summary: "Report whether this is a debug build",
		run: func(s *Server, _ *http.Request, _ []byte) (any, error) {
			return protocol.Envelope{Status: protocol.StatusOK, Value: s.deps.Bridge.IsDebugMode()}, nil
		},
	},
	bridge.EntrySystemInfo: {
		summary: "Describe the host system",
		run: func(s *Server, r *http.Request, _ []byte) (any, error) {
			info, res := s.deps.Bridge.SystemInfo(r.Context())
			return protocol.Envelope{Status: protocol.StatusOK, Message: res.Message, Info: info}, nil
		},
	},
}

// commandNames returns the invokable entry points in sorted order.
func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decodeArgs accepts an empty body as an empty argument object.
func decodeArgs(body []byte, out any) error {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", errBadArgs, err)
	}
	return nil
}

// handleInvoke handles POST /invoke/{command}. Success and Failure are both
// 200: the Result is the payload.
func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "command")
	cmd, ok := commands[name]
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown command: %s", name))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	resp, err := cmd.run(s, r, body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleHealthz handles GET /healthz (no auth).
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := HealthzResponse{
		Status:        "ok",
		Version:       s.config.Version,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}
	if s.deps.Window != nil {
		resp.WindowStreams = s.deps.Window.Streams()
	}
	if s.deps.Bridge != nil {
		resp.Debug = s.deps.Bridge.IsDebugMode()
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleHistory handles GET /history?limit=N.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		s.writeError(w, http.StatusServiceUnavailable, "history is not enabled")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := s.deps.History.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to read history", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	respondJSON(w, http.StatusOK, HistoryResponse{Entries: entries})
}

func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}
