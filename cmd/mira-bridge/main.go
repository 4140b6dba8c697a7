package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattjoyce/mira-bridge/internal/buildinfo"
	"github.com/mattjoyce/mira-bridge/internal/config"
	"github.com/mattjoyce/mira-bridge/internal/doctor"
	"github.com/mattjoyce/mira-bridge/internal/tui/watch"
)

// envToken supplies the bearer token to client commands.
const envToken = "MIRA_BRIDGE_TOKEN"

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage()
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	switch cmd {
	case "system":
		return runSystemNoun(args)
	case "config":
		return runConfigNoun(args)
	case "invoke":
		return runInvokeNoun(args)
	case "history":
		return runHistoryNoun(args)

	case "start":
		return runStart(args)
	case "doctor":
		return runDoctor(args)
	case "version", "--version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage()
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: mira-bridge version [--json]")
		return 1
	}

	info := buildinfo.Current()

	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render version JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("mira-bridge %s\n", info.Version)
	fmt.Printf("commit: %s\n", info.Commit)
	fmt.Printf("built_at: %s\n", info.BuildTime)
	if info.Debug {
		fmt.Println("build: debug")
	}
	return 0
}

func printUsage() {
	fmt.Print(`mira-bridge - command dispatch and process launch bridge for Mira Launcher

Usage:
  mira-bridge <noun> <action> [flags]

System Commands:
  system start      Run the bridge service in the foreground
  system watch      Live activity TUI for a running bridge
  system doctor     Check the config against this host

Config Commands:
  config check      Validate syntax, policy, and integrity
  config lock       Authorize current state (write .checksums)
  config show       Print the resolved configuration (tokens redacted)

Invoke Commands:
  invoke launch <path>             Start an application
  invoke exec <program> [args...]  Run a command and wait for it
  invoke spawn <program> [args...] Start a command without waiting for it
  invoke open <path>               Open a file with its default handler
  invoke reveal <path>             Show a file in the file manager
  invoke search --kind K ...       Act on a quick-search result
  invoke nav <target>              Navigate the UI (settings, plugins, downloads, about)
  invoke sysinfo                   Describe this host

History Commands:
  history list      Recent calls from the state database

General:
  version           Show version information
  help              Show this help message

Use 'mira-bridge <noun> help' for action-specific flags.
`)
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func hasHelpFlag(args []string) bool {
	for _, a := range args {
		if isHelpToken(a) {
			return true
		}
	}
	return false
}

func runSystemNoun(args []string) int {
	if len(args) < 1 {
		printSystemNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printSystemNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "start":
		return runStart(actionArgs)
	case "watch":
		if hasHelpFlag(actionArgs) {
			printSystemWatchHelp()
			return 0
		}
		return runWatch(actionArgs)
	case "doctor":
		return runDoctor(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown system action: %s\n", action)
		return 1
	}
}

func printSystemNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: mira-bridge system <start|watch|doctor> [flags]")
}

func printSystemWatchHelp() {
	fmt.Println("Usage: mira-bridge system watch [flags]")
	fmt.Println()
	fmt.Println("Live view of a running bridge: health, per-entry call counts and activity.")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --config PATH    Config used to derive the API URL")
	fmt.Println("  --api-url URL    Bridge API URL (default: from api.listen)")
	fmt.Println("  --token TOKEN    Bearer token with events:ro (or MIRA_BRIDGE_TOKEN)")
	fmt.Println()
	fmt.Println("Keybindings:")
	fmt.Println("  q, Ctrl+C        Quit")
	fmt.Println("  ↑/↓, k/j         Select entry")
}

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	apiURL := fs.String("api-url", "", "Bridge API URL")
	token := fs.String("token", os.Getenv(envToken), "API bearer token")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	url := *apiURL
	if url == "" {
		loaded, err := config.LoadOrDefault(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			return 1
		}
		url = baseURL(loaded.API.Listen)
	}

	p := tea.NewProgram(watch.New(url, *token))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		return 1
	}
	return 0
}

func runDoctor(args []string) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	jsonOut := fs.Bool("json", false, "Output the report as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	loaded, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	result := doctor.New(loaded).Validate()
	if *jsonOut {
		out, err := doctor.FormatJSON(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render report: %v\n", err)
			return 1
		}
		fmt.Println(out)
	} else {
		fmt.Print(doctor.FormatHuman(result))
	}
	if !result.Valid {
		return 1
	}
	return 0
}
