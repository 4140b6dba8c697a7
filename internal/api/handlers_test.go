package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mattjoyce/mira-bridge/internal/auth"
	"github.com/mattjoyce/mira-bridge/internal/events"
	"github.com/mattjoyce/mira-bridge/internal/history"
	"github.com/mattjoyce/mira-bridge/internal/log"
	"github.com/mattjoyce/mira-bridge/internal/protocol"
	"github.com/mattjoyce/mira-bridge/internal/sysinfo"
	"github.com/mattjoyce/mira-bridge/internal/window"
)

// fakeBridge records calls and returns canned results.
type fakeBridge struct {
	mu    sync.Mutex
	calls []string
	last  []any
	debug bool
	res   protocol.Result
}

func (f *fakeBridge) record(name string, args ...any) protocol.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	f.last = args
	return f.res
}

func (f *fakeBridge) LaunchApp(_ context.Context, path string) protocol.Result {
	return f.record("launch_app", path)
}

func (f *fakeBridge) ExecuteCommand(_ context.Context, program string, args []string) protocol.Result {
	return f.record("execute_command", program, args)
}

func (f *fakeBridge) ExecuteCommandAsync(_ context.Context, program string, args []string) protocol.Result {
	return f.record("execute_command_async", program, args)
}

func (f *fakeBridge) ShowInFileManager(_ context.Context, path string) protocol.Result {
	return f.record("show_in_file_manager", path)
}

func (f *fakeBridge) HandleQuickSearchResult(_ context.Context, req protocol.ActionRequest) protocol.Result {
	return f.record("handle_quick_search_result", req)
}

func (f *fakeBridge) OpenFile(_ context.Context, path string) protocol.Result {
	return f.record("open_file", path)
}

func (f *fakeBridge) OpenDevtools(context.Context) protocol.Result {
	return f.record("open_devtools")
}

func (f *fakeBridge) IsDebugMode() bool { return f.debug }

func (f *fakeBridge) SystemInfo(context.Context) (sysinfo.Info, protocol.Result) {
	info := sysinfo.Info{OS: "linux", Arch: "amd64"}
	return info, protocol.Success(info.Summary())
}

type fakeHistory struct {
	entries []history.Entry
	limit   int
	err     error
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]history.Entry, error) {
	f.limit = limit
	return f.entries, f.err
}

type testEnv struct {
	bridge  *fakeBridge
	remote  *window.Remote
	hub     *events.Hub
	history *fakeHistory
	server  *Server
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	env := &testEnv{
		bridge:  &fakeBridge{res: protocol.Success("done")},
		remote:  window.NewRemote(window.WithLogger(log.Discard())),
		hub:     events.NewHub(16),
		history: &fakeHistory{},
	}
	if cfg.KeepAlive == 0 {
		cfg.KeepAlive = time.Hour
	}
	env.server = New(cfg, Deps{
		Bridge:  env.bridge,
		Window:  env.remote,
		Events:  env.hub,
		History: env.history,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# metrics\n"))
		}),
	}, log.Discard())
	return env
}

func (e *testEnv) do(method, target, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) protocol.Envelope {
	t.Helper()
	var env protocol.Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return env
}

func TestInvokeDelegates(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		body     string
		wantCall string
		wantArgs []any
	}{
		{"launch_app appPath", "launch_app", `{"appPath":"/Applications/Safari.app"}`, "launch_app", []any{"/Applications/Safari.app"}},
		{"launch_app path alias", "launch_app", `{"path":"/usr/bin/gedit"}`, "launch_app", []any{"/usr/bin/gedit"}},
		{"execute_command", "execute_command", `{"command":"echo","args":["hi"]}`, "execute_command", []any{"echo", []string{"hi"}}},
		{"execute_command_async", "execute_command_async", `{"command":"code","args":["."]}`, "execute_command_async", []any{"code", []string{"."}}},
		{"open_file", "open_file", `{"path":"/tmp/a.txt"}`, "open_file", []any{"/tmp/a.txt"}},
		{"show_in_file_manager", "show_in_file_manager", `{"path":"/tmp/a.txt"}`, "show_in_file_manager", []any{"/tmp/a.txt"}},
		{"open_devtools empty body", "open_devtools", ``, "open_devtools", nil},
		{
			"quick search legacy aliases", "handle_quick_search_result",
			`{"result":{"type":"function","action":"settings","title":"Settings"}}`,
			"handle_quick_search_result",
			[]any{protocol.ActionRequest{Kind: protocol.KindFunction, ActionName: "settings", Title: "Settings"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, Config{})
			rr := env.do(http.MethodPost, "/invoke/"+tt.command, tt.body)

			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
			}
			if got := decodeEnvelope(t, rr); got.Status != protocol.StatusOK || got.Message != "done" {
				t.Fatalf("envelope = %+v", got)
			}
			if len(env.bridge.calls) != 1 || env.bridge.calls[0] != tt.wantCall {
				t.Fatalf("calls = %v", env.bridge.calls)
			}
			if tt.wantArgs != nil {
				gotJSON, _ := json.Marshal(env.bridge.last)
				wantJSON, _ := json.Marshal(tt.wantArgs)
				if string(gotJSON) != string(wantJSON) {
					t.Fatalf("args = %s, want %s", gotJSON, wantJSON)
				}
			}
		})
	}
}

func TestInvokeFailureIsStill200(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.bridge.res = protocol.Failure("Failed to launch app: nope")

	rr := env.do(http.MethodPost, "/invoke/launch_app", `{"appPath":"/x"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	got := decodeEnvelope(t, rr)
	if got.Status != protocol.StatusError || got.Error != "Failed to launch app: nope" {
		t.Fatalf("envelope = %+v", got)
	}
}

func TestInvokeBadBody(t *testing.T) {
	env := newTestEnv(t, Config{})

	for _, tc := range []struct{ command, body string }{
		{"launch_app", `{"appPath":`},
		{"execute_command", `{"args":"not-a-list"}`},
		{"handle_quick_search_result", `{}`},
		{"handle_quick_search_result", `{"result":"text"}`},
	} {
		rr := env.do(http.MethodPost, "/invoke/"+tc.command, tc.body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s %s: status = %d, want 400", tc.command, tc.body, rr.Code)
		}
	}
	if len(env.bridge.calls) != 0 {
		t.Fatalf("bridge called on bad body: %v", env.bridge.calls)
	}
}

func TestInvokeUnknownCommand(t *testing.T) {
	env := newTestEnv(t, Config{})

	rr := env.do(http.MethodPost, "/invoke/format_disk", `{}`)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "unknown command: format_disk") {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestInvokeIsDebugMode(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.bridge.debug = true

	rr := env.do(http.MethodPost, "/invoke/is_debug_mode", ``)

	if got := strings.TrimSpace(rr.Body.String()); got != `{"status":"ok","value":true}` {
		t.Fatalf("body = %s", got)
	}
}

func TestInvokeSystemInfo(t *testing.T) {
	env := newTestEnv(t, Config{})

	rr := env.do(http.MethodPost, "/invoke/get_system_info", `{}`)

	var resp struct {
		Status  string       `json:"status"`
		Message string       `json:"message"`
		Info    sysinfo.Info `json:"info"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Message != "System: linux" || resp.Info.Arch != "amd64" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, Config{Version: "1.2.3", Tokens: []auth.TokenConfig{{Token: "t", Scopes: []string{"*"}}}})
	_, detach := env.remote.Attach()
	defer detach()

	rr := env.do(http.MethodGet, "/healthz", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("healthz must not require auth, status = %d", rr.Code)
	}
	var resp HealthzResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Version != "1.2.3" || resp.WindowStreams != 1 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.history.entries = []history.Entry{{ID: "a", Entry: "open_file", OK: true, Message: "文件已打开"}}

	rr := env.do(http.MethodGet, "/history?limit=5", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if env.history.limit != 5 {
		t.Fatalf("limit = %d", env.history.limit)
	}
	var resp HistoryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].Message != "文件已打开" {
		t.Fatalf("entries = %+v", resp.Entries)
	}

	if rr := env.do(http.MethodGet, "/history?limit=-1", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("negative limit status = %d", rr.Code)
	}

	env.history.err = errors.New("disk gone")
	if rr := env.do(http.MethodGet, "/history", ""); rr.Code != http.StatusInternalServerError {
		t.Fatalf("store error status = %d", rr.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	env := newTestEnv(t, Config{})

	rr := env.do(http.MethodGet, "/metrics", "")

	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "# metrics") {
		t.Fatalf("status = %d body = %s", rr.Code, rr.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, Config{AllowedOrigins: []string{"tauri://localhost"}})

	rr := env.do(http.MethodOptions, "/invoke/launch_app", "",
		"Origin", "tauri://localhost",
		"Access-Control-Request-Method", "POST",
		"Access-Control-Request-Headers", "Content-Type",
	)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "tauri://localhost" {
		t.Fatalf("allowed origin = %q", got)
	}

	rr = env.do(http.MethodOptions, "/invoke/launch_app", "",
		"Origin", "https://evil.example",
		"Access-Control-Request-Method", "POST",
	)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin allowed: %q", got)
	}
}
