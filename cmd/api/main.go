package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"boardroom-backend/internal/cli"
	"boardroom-backend/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	loader := config.NewLoader(config.ConfigDir(), config.CurrentEnvironment())
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cli.Serve(ctx, cfg, loader); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
