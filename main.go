package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lora/internal"
	"lora/internal/config"
	"lora/internal/container"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	logger := internal.NewDefaultLogger()

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	c, err := container.New(startCtx, appConfig, logger)
	cancel()
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	runErr := c.Server.Run(ctx)
	if err := c.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown: %v", err)
	}
	if runErr != nil {
		logger.Error("server stopped: %v", runErr)
		os.Exit(1)
	}
}
