package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jobfinder/internal/cli"
	"jobfinder/internal/config"
	"jobfinder/internal/errors"
)

func main() {
	// Interrupts cancel the context so in-flight provider calls stop cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Starting jobfinder application",
		"version", cli.Version,
		"log_level", cfg.App.LogLevel)

	if err := cli.Execute(ctx, cfg, logger); err != nil {
		logger.LogError(err, "Application execution failed")
		os.Exit(1)
	}
}
