package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/wechatfed/history"
)

func printHistoryUsage() {
	fmt.Println("wechatfed history - Inspect the call history")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  wechatfed history <action> [arguments]")
	fmt.Println()
	fmt.Println("Actions:")
	fmt.Println("  list       List recent calls")
	fmt.Println("  show       Show a single call")
	fmt.Println("  prune      Delete old calls")
	fmt.Println("  help       Show this help message")
}

func handleHistoryCommand(action string, args []string) {
	if action == "help" || action == "--help" || action == "-h" {
		printHistoryUsage()
		return
	}

	cfg, _, logCloser := loadConfig()
	logCloser.Close()
	if cfg.History.DSN == "" {
		fmt.Fprintln(os.Stderr, "Error: call history is disabled")
		fmt.Fprintln(os.Stderr, "Set history.dsn in the config file or WECHATFED_HISTORY_DSN")
		os.Exit(1)
	}

	// Initialize history store
	store, err := history.NewStore(cfg.History.DSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open history: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch action {
	case "list":
		handleHistoryList(store, args)
	case "show":
		handleHistoryShow(store, args)
	case "prune":
		handleHistoryPrune(store, args)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown history command: %s\n\n", action)
		printHistoryUsage()
		os.Exit(1)
	}
}

func handleHistoryList(store *history.Store, args []string) {
	// Parse flags for list command
	fs := flag.NewFlagSet("history list", flag.ExitOnError)
	tool := fs.String("tool", "", "Only show calls of this tool")
	failed := fs.Bool("failed", false, "Only show failed calls")
	limit := fs.Int("limit", 20, "Maximum number of calls to show")
	offset := fs.Int("offset", 0, "Number of calls to skip")
	format := fs.String("format", "table", "Output format (table, json)")
	fs.Parse(args)

	filter := history.Filter{
		Tool:   *tool,
		Limit:  *limit,
		Offset: *offset,
	}
	if *failed {
		filter.Failed = failed
	}

	calls, err := store.ListCalls(filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list calls: %v\n", err)
		os.Exit(1)
	}

	switch *format {
	case "json":
		printJSON(calls)
	case "table":
		printCallsTable(calls)
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid format: %s (must be table or json)\n", *format)
		os.Exit(1)
	}
}

func handleHistoryShow(store *history.Store, args []string) {
	fs := flag.NewFlagSet("history show", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: wechatfed history show <call-id>")
		os.Exit(1)
	}

	callID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid call ID: %v\n", err)
		os.Exit(1)
	}

	call, err := store.GetCall(callID)
	if errors.Is(err, history.ErrCallNotFound) {
		fmt.Fprintf(os.Stderr, "Error: call not found: %s\n", callID)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to get call: %v\n", err)
		os.Exit(1)
	}

	printCallDetail(call)
}

func handleHistoryPrune(store *history.Store, args []string) {
	fs := flag.NewFlagSet("history prune", flag.ExitOnError)
	olderThan := fs.String("older-than", "30d", "Delete calls older than this (e.g. 12h, 30d, 2w)")
	fs.Parse(args)

	age, err := parseDuration(*olderThan)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	removed, err := store.Prune(time.Now().Add(-age))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to prune history: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Deleted %d call(s) older than %s\n", removed, *olderThan)
}
