package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mattjoyce/mira-bridge/internal/config"
	"github.com/mattjoyce/mira-bridge/internal/history"
	"github.com/mattjoyce/mira-bridge/internal/storage"
)

func runHistoryNoun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mira-bridge history list [--limit N] [--json]")
		return 1
	}
	if isHelpToken(args[0]) {
		fmt.Println("Usage: mira-bridge history list [--config PATH] [--limit N] [--json]")
		return 0
	}

	switch args[0] {
	case "list":
		return runHistoryList(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown history action: %s\n", args[0])
		return 1
	}
}

func runHistoryList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	limit := fs.Int("limit", history.DefaultLimit, "Maximum entries to show")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if *limit < 0 {
		fmt.Fprintln(os.Stderr, "Error: --limit must not be negative")
		return 1
	}

	loaded, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := storage.OpenSQLite(ctx, loaded.State.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		return 1
	}
	defer db.Close()

	entries, err := history.New(db).Recent(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read history: %v\n", err)
		return 1
	}

	if *jsonOut {
		if entries == nil {
			entries = []history.Entry{}
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	if len(entries) == 0 {
		fmt.Println("No calls recorded.")
		return 0
	}
	for _, e := range entries {
		status := "ok"
		if !e.OK {
			status = "ERR"
		}
		fmt.Printf("%s  %-3s  %-26s  %6dms  %s  %s\n",
			e.CreatedAt.Local().Format(time.DateTime), status, e.Entry, e.DurationMS(), e.Target, e.Message)
	}
	return 0
}
