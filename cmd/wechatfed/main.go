package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Get subcommand
	subcommand := os.Args[1]
	args := os.Args[2:]

	switch subcommand {
	case "search":
		handleSearch(args)
	case "article":
		handleArticle(args)
	case "account":
		handleAccount(args)
	case "trending":
		handleTrending(args)
	case "history":
		if len(args) < 1 {
			printHistoryUsage()
			os.Exit(1)
		}
		handleHistoryCommand(args[0], args[1:])
	case "init":
		handleInit(args)
	case "doctor":
		handleDoctor(args)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("wechatfed - WeChat public account article client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  wechatfed <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  search     Search articles by keyword")
	fmt.Println("  article    Show a single article")
	fmt.Println("  account    List the latest articles of an account")
	fmt.Println("  trending   List trending articles")
	fmt.Println("  history    Inspect the call history")
	fmt.Println("  init       Write the default config file")
	fmt.Println("  doctor     Check configuration, history and browser")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  WECHATFED_CONFIG             Path to config file (default: ~/.wechatfed/config.yaml)")
	fmt.Println("  WECHAT_SCRAPER_TIMEOUT       Page timeout in milliseconds (default: 30000)")
	fmt.Println("  WECHAT_SCRAPER_RETRY_COUNT   Extra attempts after a timeout (default: 3)")
	fmt.Println("  WECHAT_SCRAPER_HEADLESS      Run the browser headless (default: true)")
	fmt.Println("  WECHAT_SCRAPER_FETCHER       chrome or http (default: chrome)")
	fmt.Println("  WECHATFED_HISTORY_DSN        Path to call history database (default: disabled)")
	fmt.Println("  WECHATFED_LOG_LEVEL          Log level (default: info)")
}
