package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/echophrase/echophrase/internal/api"
	"github.com/echophrase/echophrase/internal/audiocache"
	"github.com/echophrase/echophrase/internal/audiostore"
	"github.com/echophrase/echophrase/internal/catalog"
	"github.com/echophrase/echophrase/internal/config"
	"github.com/echophrase/echophrase/internal/health"
	"github.com/echophrase/echophrase/internal/playback"
	"github.com/echophrase/echophrase/internal/preload"
	"github.com/echophrase/echophrase/internal/provider"
	"github.com/echophrase/echophrase/internal/storage"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "config/example.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Starting EchoPhrase Server v%s", version)
	log.Printf("Configuration loaded from: %s", *configPath)

	storageAdapter, err := storage.NewAdapter(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to create storage adapter: %v", err)
	}
	defer storageAdapter.Close()
	log.Printf("Storage adapter initialized: %s", cfg.Storage.Adapter)

	ttsProvider, err := provider.New(cfg.Synthesis)
	if err != nil {
		log.Fatalf("Failed to create synthesis provider: %v", err)
	}
	defer ttsProvider.Close()
	log.Printf("Synthesis provider initialized: %s (voice %s)", ttsProvider.Name(), cfg.Synthesis.Voice)

	store := audiostore.New(storageAdapter, cfg.Storage.PublicBaseURL)
	memory := audiocache.NewMemoryCache(cfg.Playback.MemoryCacheBytes)
	cache := audiocache.New(store, ttsProvider, memory, cfg.Synthesis.Voice)

	catalogRepo := catalog.NewRepository(storageAdapter)
	source := catalog.NewSource(nil)
	if cfg.Playback.CatalogID != "" {
		active, err := catalogRepo.GetCatalog(context.Background(), cfg.Playback.CatalogID)
		if err != nil {
			log.Printf("Warning: could not load catalog %s: %v", cfg.Playback.CatalogID, err)
		} else {
			source.SetCatalog(active)
			log.Printf("Catalog loaded: %s (%d sentences)", active.ID, len(active.Sentences))
		}
	}

	player := playback.NewOtoPlayer()
	controller := playback.NewController(cache, source, player)
	defer controller.Close()

	scheduler := preload.NewScheduler(cache, source, cfg.Playback.PreloadLookahead)

	healthHandler := health.NewHandler(version)
	healthHandler.Register("storage", func(ctx context.Context) (health.Status, error) {
		if _, err := storageAdapter.Exists(ctx, ".healthcheck"); err != nil {
			return health.StatusUnhealthy, err
		}
		return health.StatusHealthy, nil
	})
	healthHandler.Register("synthesis", func(ctx context.Context) (health.Status, error) {
		if cfg.Synthesis.Provider == "stub" {
			return health.StatusDegraded, fmt.Errorf("stub synthesis provider active")
		}
		return health.StatusHealthy, nil
	})
	healthHandler.Register("catalog", func(ctx context.Context) (health.Status, error) {
		if source.SentenceCount() == 0 {
			return health.StatusDegraded, fmt.Errorf("no catalog loaded")
		}
		return health.StatusHealthy, nil
	})

	mux := http.NewServeMux()

	mux.HandleFunc("/health/live", healthHandler.LivenessHandler())
	mux.HandleFunc("/health/ready", healthHandler.ReadinessHandler())
	mux.HandleFunc("/health", healthHandler.HealthHandler())

	playbackHandler := api.NewPlaybackHandler(controller, scheduler)
	mux.HandleFunc("/api/v1/playback/play", playbackHandler.Play)
	mux.HandleFunc("/api/v1/playback/stop", playbackHandler.Stop)
	mux.HandleFunc("/api/v1/playback/status", playbackHandler.Status)
	mux.HandleFunc("/api/v1/selection", playbackHandler.Selection)

	catalogHandler := api.NewCatalogHandler(catalogRepo, source, scheduler, cfg.Playback.WarmConcurrency)
	mux.HandleFunc("/api/v1/catalog", catalogHandler.Catalog)
	mux.HandleFunc("/api/v1/catalogs", catalogHandler.ListCatalogs)
	mux.HandleFunc("/api/v1/catalogs/", catalogHandler.CatalogByID)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
