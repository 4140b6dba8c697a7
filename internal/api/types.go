package api

import (
	"encoding/json"

	"github.com/mattjoyce/mira-bridge/internal/history"
)

// LaunchAppArgs is the body of POST /invoke/launch_app.
type LaunchAppArgs struct {
	AppPath string `json:"appPath"`
	Path    string `json:"path"`
}

// ExecuteCommandArgs is the body of POST /invoke/execute_command and
// /invoke/execute_command_async.
type ExecuteCommandArgs struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

// QuickSearchArgs is the body of POST /invoke/handle_quick_search_result.
type QuickSearchArgs struct {
	Result json.RawMessage `json:"result"`
}

// OpenFileArgs is the body of POST /invoke/open_file and
// /invoke/show_in_file_manager.
type OpenFileArgs struct {
	Path string `json:"path"`
}

// HistoryResponse is returned by GET /history.
type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
}

// ErrorResponse is returned on errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	WindowStreams int    `json:"window_streams"`
	Debug         bool   `json:"debug"`
}
