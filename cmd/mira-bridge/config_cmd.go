package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mattjoyce/mira-bridge/internal/config"
)

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printConfigNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "check":
		return runConfigCheck(actionArgs)
	case "lock":
		return runConfigLock(actionArgs)
	case "show":
		return runConfigShow(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

func printConfigNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: mira-bridge config <check|lock|show> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  check [--config PATH]                   Validate syntax, policy, and integrity")
	fmt.Fprintln(w, "  lock [--config PATH] [--dry-run] [-v]   Write .checksums for the current files")
	fmt.Fprintln(w, "  show [path] [--config PATH] [--json]    Print the resolved configuration")
}

// resolveConfigPath returns explicit or the discovered config path.
func resolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	return config.Discover()
}

func runConfigCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	path, err := resolveConfigPath(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	files, err := config.ResolveFiles(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	integrity, err := config.VerifyIntegrity(files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Integrity check failed to run: %v\n", err)
		return 1
	}
	for _, w := range integrity.Warnings {
		fmt.Printf("WARN  %s\n", w)
	}
	for _, e := range integrity.Errors {
		fmt.Printf("ERROR %s\n", e)
	}
	if !integrity.Passed {
		fmt.Println("Status: Configuration check FAILED (integrity).")
		return 1
	}

	if _, err := config.Load(path); err != nil {
		fmt.Printf("ERROR %v\n", err)
		fmt.Println("Status: Configuration check FAILED.")
		return 1
	}

	fmt.Printf("Config: %s\n", files.Config)
	fmt.Println("Status: Configuration check PASSED.")
	return 0
}

func runConfigLock(args []string) int {
	fs := flag.NewFlagSet("lock", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	dryRun := fs.Bool("dry-run", false, "Show what would be written")
	verbose := fs.Bool("v", false, "Print each file hash")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	path, err := resolveConfigPath(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	files, err := config.ResolveFiles(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	report, err := config.Lock(files, *dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lock failed: %v\n", err)
		return 1
	}

	for _, f := range report.Files {
		if *verbose {
			fmt.Printf("  %s  %s\n", f.Hash, f.Filename)
		} else {
			fmt.Printf("  %s\n", f.Filename)
		}
	}
	if *dryRun {
		fmt.Printf("Dry-run: would write %s (%d files)\n", report.ChecksumPath, len(report.Files))
		return 0
	}
	fmt.Printf("Locked %d files into %s\n", len(report.Files), report.ChecksumPath)
	return 0
}

func runConfigShow(args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	loaded, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load error: %v\n", err)
		return 1
	}

	redacted := loaded.Redacted()
	var result any = redacted
	if fs.NArg() > 0 {
		res, err := redacted.GetPath(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		result = res
	}

	if *jsonOut {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}
	data, err := yaml.Marshal(result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Print(string(data))
	return 0
}
