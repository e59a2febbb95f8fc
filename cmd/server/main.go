package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/joewelow/nano-community/internal/api"
	"github.com/joewelow/nano-community/internal/cache"
	"github.com/joewelow/nano-community/internal/config"
	"github.com/joewelow/nano-community/internal/feed"
	"github.com/joewelow/nano-community/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize storage
	var store storage.Storage
	switch cfg.Storage.Type {
	case "sqlite":
		store, err = storage.NewSQLiteStorage(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		defer store.Close()
	default:
		log.Fatalf("Unsupported storage type: %s", cfg.Storage.Type)
	}

	// Response cache and feed pipeline
	cacheStore := cache.NewMemory()
	svc := feed.NewService(cfg.Feed, store, cacheStore)

	// Optional scheduled cache flush
	flushInterval, err := time.ParseDuration(cfg.Cache.FlushInterval)
	if err != nil {
		log.Fatalf("Invalid cache flush interval: %v", err)
	}
	if flushInterval > 0 {
		scheduler := cron.New()
		_, err := scheduler.AddFunc("@every "+flushInterval.String(), func() {
			log.Println("Flushing response cache")
			cacheStore.Flush()
		})
		if err != nil {
			log.Fatalf("Failed to schedule cache flush: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		log.Printf("Cache flush scheduled every %s", flushInterval)
	}

	// Start HTTP server
	server := api.NewServer(cfg.Server, svc)
	go func() {
		log.Printf("Starting server on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutdown signal received, gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	log.Println("Shutdown complete")
}
