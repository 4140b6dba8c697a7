package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mattjoyce/mira-bridge/internal/api"
	"github.com/mattjoyce/mira-bridge/internal/bridge"
	"github.com/mattjoyce/mira-bridge/internal/config"
	"github.com/mattjoyce/mira-bridge/internal/log"
	"github.com/mattjoyce/mira-bridge/internal/navigate"
	"github.com/mattjoyce/mira-bridge/internal/protocol"
)

// invoker runs one bridge entry point, in-process or against a server.
type invoker interface {
	Invoke(ctx context.Context, entry string, args any) (protocol.Envelope, error)
}

// localInvoker calls a bridge.Service directly.
type localInvoker struct {
	svc *bridge.Service
}

func (l *localInvoker) Invoke(ctx context.Context, entry string, args any) (protocol.Envelope, error) {
	switch entry {
	case bridge.EntryLaunchApp:
		a := args.(api.LaunchAppArgs)
		path := a.AppPath
		if path == "" {
			path = a.Path
		}
		return l.svc.LaunchApp(ctx, path).Envelope(), nil
	case bridge.EntryExecuteCommand:
		a := args.(api.ExecuteCommandArgs)
		return l.svc.ExecuteCommand(ctx, a.Command, a.Args).Envelope(), nil
	case bridge.EntryExecuteAsync:
		a := args.(api.ExecuteCommandArgs)
		return l.svc.ExecuteCommandAsync(ctx, a.Command, a.Args).Envelope(), nil
	case bridge.EntryQuickSearchResult:
		a := args.(api.QuickSearchArgs)
		req, err := protocol.ParseActionRequest(a.Result)
		if err != nil {
			return protocol.Envelope{}, err
		}
		return l.svc.HandleQuickSearchResult(ctx, req).Envelope(), nil
	case bridge.EntryOpenFile:
		a := args.(api.OpenFileArgs)
		return l.svc.OpenFile(ctx, a.Path).Envelope(), nil
	case bridge.EntryShowInFileManager:
		a := args.(api.OpenFileArgs)
		return l.svc.ShowInFileManager(ctx, a.Path).Envelope(), nil
	case bridge.EntryOpenDevtools:
		return l.svc.OpenDevtools(ctx).Envelope(), nil
	case bridge.EntryIsDebugMode:
		return protocol.Envelope{Status: protocol.StatusOK, Value: l.svc.IsDebugMode()}, nil
	case bridge.EntrySystemInfo:
		info, res := l.svc.SystemInfo(ctx)
		env := res.Envelope()
		env.Info = info
		return env, nil
	default:
		return protocol.Envelope{}, fmt.Errorf("unknown command: %s", entry)
	}
}

// remoteInvoker posts to /invoke/{command} of a running bridge.
type remoteInvoker struct {
	baseURL string
	token   string
	client  *http.Client
}

func (r *remoteInvoker) Invoke(ctx context.Context, entry string, args any) (protocol.Envelope, error) {
	body, err := json.Marshal(args)
	if err != nil {
		return protocol.Envelope{}, fmt.Errorf("failed to encode args: %w", err)
	}
	url := strings.TrimRight(r.baseURL, "/") + "/invoke/" + entry
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return protocol.Envelope{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return protocol.Envelope{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return protocol.Envelope{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e api.ErrorResponse
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return protocol.Envelope{}, fmt.Errorf("%s (HTTP %d)", e.Error, resp.StatusCode)
		}
		return protocol.Envelope{}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return protocol.Envelope{}, fmt.Errorf("invalid response: %w", err)
	}
	return env, nil
}

type invokeFlags struct {
	configPath string
	remote     string
	token      string
	jsonOut    bool
	timeout    time.Duration
}

func newInvokeFlagSet(name string) (*flag.FlagSet, *invokeFlags) {
	f := &invokeFlags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "Path to configuration file or directory")
	fs.StringVar(&f.remote, "remote", "", "Call a running bridge at this URL instead of in-process")
	fs.StringVar(&f.token, "token", os.Getenv(envToken), "API bearer token for --remote")
	fs.BoolVar(&f.jsonOut, "json", false, "Print the result envelope as JSON")
	fs.DurationVar(&f.timeout, "timeout", 30*time.Second, "Overall deadline")
	return fs, f
}

// newInvoker returns a remote invoker when --remote is set, otherwise an
// in-process bridge without history, metrics or events.
func newInvoker(f *invokeFlags) (invoker, error) {
	if f.remote != "" {
		return &remoteInvoker{baseURL: f.remote, token: f.token, client: &http.Client{}}, nil
	}
	loaded, err := config.LoadOrDefault(f.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	// Logs go to stderr so stdout carries only the result.
	log.SetupWriter(os.Stderr, loaded.Service.LogLevel, "text")
	comps, err := buildComponents(loaded.Config, observers{})
	if err != nil {
		return nil, err
	}
	return &localInvoker{svc: comps.service}, nil
}

func runInvokeNoun(args []string) int {
	if len(args) < 1 {
		printInvokeNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printInvokeNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	fs, f := newInvokeFlagSet(action)

	var build func(rest []string) (string, any, error)
	switch action {
	case "launch":
		build = func(rest []string) (string, any, error) {
			if len(rest) != 1 {
				return "", nil, errors.New("usage: mira-bridge invoke launch <path>")
			}
			return bridge.EntryLaunchApp, api.LaunchAppArgs{AppPath: rest[0]}, nil
		}
	case "exec":
		build = func(rest []string) (string, any, error) {
			if len(rest) < 1 {
				return "", nil, errors.New("usage: mira-bridge invoke exec <program> [args...]")
			}
			return bridge.EntryExecuteCommand, api.ExecuteCommandArgs{Command: rest[0], Args: rest[1:]}, nil
		}
	case "spawn":
		build = func(rest []string) (string, any, error) {
			if len(rest) < 1 {
				return "", nil, errors.New("usage: mira-bridge invoke spawn <program> [args...]")
			}
			return bridge.EntryExecuteAsync, api.ExecuteCommandArgs{Command: rest[0], Args: rest[1:]}, nil
		}
	case "reveal":
		build = func(rest []string) (string, any, error) {
			if len(rest) != 1 {
				return "", nil, errors.New("usage: mira-bridge invoke reveal <path>")
			}
			return bridge.EntryShowInFileManager, api.OpenFileArgs{Path: rest[0]}, nil
		}
	case "open":
		build = func(rest []string) (string, any, error) {
			if len(rest) != 1 {
				return "", nil, errors.New("usage: mira-bridge invoke open <path>")
			}
			return bridge.EntryOpenFile, api.OpenFileArgs{Path: rest[0]}, nil
		}
	case "search":
		req := protocol.ActionRequest{}
		var kind string
		fs.StringVar(&kind, "kind", "", "Result kind: application, file or function")
		fs.StringVar(&req.Path, "path", "", "Path for application and file results")
		fs.StringVar(&req.ActionName, "action", "", "Action name for function results")
		fs.StringVar(&req.Title, "title", "", "Result title")
		fs.StringVar(&req.Category, "category", "", "Result category")
		build = func(rest []string) (string, any, error) {
			if len(rest) != 0 {
				return "", nil, errors.New("usage: mira-bridge invoke search --kind K [--path P | --action A]")
			}
			req.Kind = protocol.Kind(kind)
			return quickSearch(req)
		}
	case "nav":
		build = func(rest []string) (string, any, error) {
			if len(rest) != 1 {
				return "", nil, errors.New("usage: mira-bridge invoke nav <settings|plugins|downloads|about>")
			}
			return quickSearch(protocol.ActionRequest{Kind: protocol.KindFunction, ActionName: navAction(rest[0])})
		}
	case "devtools":
		build = noArgs(bridge.EntryOpenDevtools)
	case "debug":
		build = noArgs(bridge.EntryIsDebugMode)
	case "sysinfo":
		build = noArgs(bridge.EntrySystemInfo)
	default:
		fmt.Fprintf(os.Stderr, "Unknown invoke action: %s\n", action)
		return 1
	}

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	entry, payload, err := build(fs.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	inv, err := newInvoker(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return runInvoke(inv, f, entry, payload)
}

func runInvoke(inv invoker, f *invokeFlags, entry string, payload any) int {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	env, err := inv.Invoke(ctx, entry, payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if f.jsonOut {
		data, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
	} else {
		printEnvelope(env)
	}
	if env.Status != protocol.StatusOK {
		return 1
	}
	return 0
}

func printEnvelope(env protocol.Envelope) {
	if env.Status != protocol.StatusOK {
		fmt.Fprintf(os.Stderr, "error: %s\n", env.Error)
		return
	}
	switch {
	case env.Value != nil:
		fmt.Println(env.Value)
	case env.Message != "":
		fmt.Println(env.Message)
	default:
		fmt.Println(env.Status)
	}
	if env.Info != nil {
		data, err := json.MarshalIndent(env.Info, "", "  ")
		if err == nil {
			fmt.Println(string(data))
		}
	}
}

func quickSearch(req protocol.ActionRequest) (string, any, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return "", nil, err
	}
	return bridge.EntryQuickSearchResult, api.QuickSearchArgs{Result: raw}, nil
}

// navAction accepts a target name ("settings") or an action name
// ("open-settings").
func navAction(name string) string {
	if t := navigate.Target(name); t.Valid() {
		return t.Action()
	}
	return name
}

func noArgs(entry string) func([]string) (string, any, error) {
	return func(rest []string) (string, any, error) {
		if len(rest) != 0 {
			return "", nil, fmt.Errorf("%s takes no arguments", entry)
		}
		return entry, struct{}{}, nil
	}
}

func printInvokeNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: mira-bridge invoke <action> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Actions:")
	fmt.Fprintln(w, "  launch <path>             launch_app")
	fmt.Fprintln(w, "  exec <program> [args...]  execute_command")
	fmt.Fprintln(w, "  spawn <program> [args...] execute_command_async")
	fmt.Fprintln(w, "  open <path>               open_file")
	fmt.Fprintln(w, "  reveal <path>             show_in_file_manager")
	fmt.Fprintln(w, "  search --kind K ...       handle_quick_search_result")
	fmt.Fprintln(w, "  nav <target>              handle_quick_search_result (function)")
	fmt.Fprintln(w, "  devtools                  open_devtools")
	fmt.Fprintln(w, "  debug                     is_debug_mode")
	fmt.Fprintln(w, "  sysinfo                   get_system_info")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags (before positional args):")
	fmt.Fprintln(w, "  --config PATH   Configuration for in-process calls")
	fmt.Fprintln(w, "  --remote URL    Call a running bridge instead")
	fmt.Fprintln(w, "  --token TOKEN   Bearer token for --remote (or MIRA_BRIDGE_TOKEN)")
	fmt.Fprintln(w, "  --json          Print the result envelope as JSON")
	fmt.Fprintln(w, "  --timeout D     Overall deadline (default 30s)")
}
