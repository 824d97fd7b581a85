package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pevans/wechatfed/history"
)

// printJSON prints v as indented JSON
func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

// printCallsTable prints calls in human-readable table format
func printCallsTable(calls []history.Call) {
	if len(calls) == 0 {
		fmt.Println("No calls recorded.")
		return
	}

	fmt.Printf("%-36s  %-32s  %-12s  %8s  %s\n", "ID", "TOOL", "OUTCOME", "ATTEMPTS", "WHEN")
	for _, call := range calls {
		fmt.Printf("%-36s  %-32s  %-12s  %8d  %s\n",
			call.CallID,
			call.Tool,
			outcome(call),
			call.Attempts,
			call.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
}

// printCallDetail prints every field of a call
func printCallDetail(call *history.Call) {
	fmt.Printf("ID:        %s\n", call.CallID)
	fmt.Printf("Tool:      %s\n", call.Tool)
	fmt.Printf("Arguments: %s\n", call.Arguments)
	fmt.Printf("Outcome:   %s\n", outcome(*call))
	if call.Message != "" {
		fmt.Printf("Message:   %s\n", call.Message)
	}
	fmt.Printf("Attempts:  %d\n", call.Attempts)
	fmt.Printf("Duration:  %dms\n", call.Duration)
	fmt.Printf("When:      %s\n", call.CreatedAt.Local().Format("2006-01-02 15:04:05"))
}

func outcome(call history.Call) string {
	if call.Succeeded() {
		return "ok"
	}
	return call.Kind
}
