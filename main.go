package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scorequorum/config"
	"scorequorum/repository"
	"scorequorum/server"
	"scorequorum/srvreg"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")

	log.Println("===========================================")
	log.Println("   Scorequorum - Starting Up")
	log.Println("===========================================")

	// Load configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Configuration validation failed: %v", err)
	}

	log.Printf("✓ Configuration loaded")
	log.Printf("   Node: %s", cfg.NodeName)
	log.Printf("   HTTP Port: %s", cfg.HTTPPort)
	log.Printf("   Database: %s", cfg.MaskedDSN())

	// Initialize repository
	log.Println("\n📦 Initializing database...")
	repo := repository.NewRepository()
	if err := repo.ConnectDB(cfg.GetDSN()); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}

	// Initialize service registry
	log.Println("\nSetting up service registry...")
	serviceRegistry := srvreg.NewServiceRegistry(repo, cfg.NodeName)
	serviceRegistry.RegisterDefaultServices()

	// Initialize web server
	log.Println("\nStarting web server...")
	webServer := server.NewWebServer(cfg.HTTPPort, serviceRegistry, cfg.NodeName)
	if err := webServer.Start(); err != nil {
		log.Fatalf("❌ Failed to start web server: %v", err)
	}

	log.Println("\n===========================================")
	log.Printf("   Scorequorum Ready!")
	log.Printf("   Node: %s", cfg.NodeName)
	log.Printf("   Listening on: http://localhost:%s", cfg.HTTPPort)
	log.Println("===========================================")
	log.Println("")

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n🛑 Shutdown signal received, gracefully shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := webServer.Shutdown(ctx); err != nil {
		log.Printf("❌ Error during server shutdown: %v", err)
	}

	log.Println("✓ Scorequorum stopped")
}
