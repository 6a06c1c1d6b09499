package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bloxstore/internal/config"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := NewApp(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to start storefront: %v", err)
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Fiber.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Fiber.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	if err := app.Close(); err != nil {
		log.Printf("Error releasing resources: %v", err)
	}
	log.Println("Server gracefully stopped")
}
