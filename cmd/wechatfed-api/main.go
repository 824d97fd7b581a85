package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pevans/wechatfed/api"
	"github.com/pevans/wechatfed/config"
	"github.com/pevans/wechatfed/logger"
	"github.com/pevans/wechatfed/tools"
)

func main() {
	// A missing .env file is fine
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, logCloser, err := logger.New(cfg.Log.Level, cfg.Log.File, os.Stdout)
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

	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = log.Writer()

	server := api.NewAPIServer(svc, svc.History(), log)
	httpServer := &http.Server{
		Addr:    cfg.API.Addr,
		Handler: server.SetupRouter(),
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		log.Infof("Starting API server on http://%s/api/v1/tools", cfg.API.Addr)
		errChan <- httpServer.ListenAndServe()
	}()

	// Wait for signal or error
	select {
	case sig := <-sigChan:
		log.Infof("Received signal: %v", sig)
		log.Info("Shutting down gracefully...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Scraper.Timeout()+5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("Shutdown timeout exceeded, forcing exit")
		} else {
			log.Info("Server stopped")
		}
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}
}
