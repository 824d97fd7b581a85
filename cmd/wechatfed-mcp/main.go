package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pevans/wechatfed/config"
	"github.com/pevans/wechatfed/logger"
	"github.com/pevans/wechatfed/mcpserver"
	"github.com/pevans/wechatfed/tools"
)

var version = "dev"

func main() {
	// A missing .env file is fine
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol
	log, logCloser, err := logger.New(cfg.Log.Level, cfg.Log.File, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	svc, err := tools.FromConfig(cfg, log)
	if err != nil {
		log.Fatalf("Failed to create tool service: %v", err)
	}
	defer svc.Close()

	server := mcpserver.New(svc, version, log)
	if err := server.ServeStdio(log); err != nil {
		log.WithError(err).Error("MCP server stopped")
		svc.Close()
		logCloser.Close()
		os.Exit(1)
	}
}
