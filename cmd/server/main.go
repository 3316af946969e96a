package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"santaverse/internal/app"
	"santaverse/internal/config"
	"santaverse/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("config: %v", err)
	}
	logger := observability.Setup(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		config.Exitf("Failed to initialize app: %v", err)
	}
	defer a.Close()

	if err := a.Serve(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
