package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pevans/wechatfed/config"
	"github.com/pevans/wechatfed/history"
	"github.com/pevans/wechatfed/logger"
	"github.com/pevans/wechatfed/tools"
)

func handleInit(args []string) {
	// Parse flags for init command
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	fs.Parse(args)

	created, path, err := config.WriteDefaultConfigFile(*force)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  ✗ Failed to create config file: %v\n", err)
		os.Exit(1)
	}

	if created {
		fmt.Printf("  ✓ Config file: %s\n", path)
	} else {
		fmt.Printf("  Config file: %s (already exists)\n", path)
		fmt.Println()
		fmt.Println("Use --force to overwrite it")
	}
}

func handleDoctor(args []string) {
	// Parse flags for doctor command
	fs := flag.NewFlagSet("doctor", flag.ExitOnError)
	skipBrowser := fs.Bool("skip-browser", false, "Do not try to start the fetcher")
	fs.Parse(args)

	fmt.Println("Checking wechatfed setup...")
	fmt.Println()

	hasErrors := false

	// Check config
	fmt.Println("Configuration:")
	path, err := config.ConfigPath()
	if err != nil {
		fmt.Printf("  ✗ Cannot resolve config path: %v\n", err)
		hasErrors = true
	} else if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("  Path: %s (not found, using defaults)\n", path)
	} else {
		fmt.Printf("  Path: %s\n", path)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("  ✗ %v\n", err)
		fmt.Println()
		fmt.Println("✗ Problems found")
		os.Exit(1)
	}
	fmt.Println("  ✓ Configuration is valid")
	fmt.Printf("  Fetcher: %s, timeout: %s, retries: %d\n",
		cfg.Scraper.Fetcher, cfg.Scraper.Timeout(), cfg.Scraper.RetryCount)
	fmt.Println()

	// Check history database
	fmt.Println("Call History:")
	if cfg.History.DSN == "" {
		fmt.Println("  Disabled")
	} else {
		fmt.Printf("  Path: %s\n", cfg.History.DSN)
		store, err := history.NewStore(cfg.History.DSN)
		if err != nil {
			fmt.Printf("  ✗ Failed to open database: %v\n", err)
			hasErrors = true
		} else {
			calls, err := store.ListCalls(history.Filter{})
			if err != nil {
				fmt.Printf("  ✗ Could not list calls: %v\n", err)
				hasErrors = true
			} else {
				fmt.Printf("  ✓ Database is accessible (%d calls)\n", len(calls))
			}
			store.Close()
		}
	}
	fmt.Println()

	// Check the fetcher can start a session
	if !*skipBrowser {
		fmt.Println("Fetcher:")
		log, logCloser, err := logger.New(cfg.Log.Level, cfg.Log.File, os.Stderr)
		if err != nil {
			log = logger.Discard()
		} else {
			defer logCloser.Close()
		}
		f := tools.NewFetcher(cfg, log)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Scraper.Timeout())
		sess, err := f.Acquire(ctx)
		cancel()
		if err != nil {
			fmt.Printf("  ✗ Failed to start %s fetcher: %v\n", cfg.Scraper.Fetcher, err)
			hasErrors = true
		} else {
			sess.Close()
			fmt.Printf("  ✓ %s fetcher started\n", cfg.Scraper.Fetcher)
		}
		fmt.Println()
	}

	if hasErrors {
		fmt.Println("✗ Problems found")
		os.Exit(1)
	}
	fmt.Println("✓ Everything looks good")
}
