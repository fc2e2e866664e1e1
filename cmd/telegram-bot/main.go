package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"gourmet-guide/internal/cli"
	"gourmet-guide/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.RunBot(ctx, cfg); err != nil {
		log.Fatalf("Telegram bot failed: %v", err)
	}
}
