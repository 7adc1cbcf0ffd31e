package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	"github.com/kiezvet/vetdirectory/internal/adapters/cache"
	"github.com/kiezvet/vetdirectory/internal/adapters/database"
	"github.com/kiezvet/vetdirectory/internal/api/handlers"
	"github.com/kiezvet/vetdirectory/internal/api/middleware"
	"github.com/kiezvet/vetdirectory/internal/api/routes"
	"github.com/kiezvet/vetdirectory/internal/application/services"
	"github.com/kiezvet/vetdirectory/internal/domain/providers"
	"github.com/kiezvet/vetdirectory/internal/domain/repositories"
	mongoclient "github.com/kiezvet/vetdirectory/internal/infrastructure/clients/mongo"
	redisclient "github.com/kiezvet/vetdirectory/internal/infrastructure/clients/redis"
	"github.com/kiezvet/vetdirectory/internal/infrastructure/observability"
	"github.com/kiezvet/vetdirectory/pkg/config"
)

func main() {

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Initialize MongoDB client. Connection is lazy: the first query dials.
	mongoClient := mongoclient.NewClient(&cfg.Mongo)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Close(ctx); err != nil {
			log.Error().Err(err).Msg("Error closing MongoDB client")
		}
	}()

	// Initialize Redis client
	redisClient, err := redisclient.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis client, continuing without caching")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize adapters

	// Create base listing adapter
	baseListingAdapter := database.NewListingAdapter(mongoClient, cfg.Search.DefaultMaxDistance, metrics)

	// Wrap with caching if Redis is available (for read performance optimization)
	var listingAdapter repositories.ListingRepository
	if cacheProvider != nil {
		listingAdapter = database.NewCachedListingAdapter(baseListingAdapter, cacheProvider)
		log.Info().Msg("Listing adapter wrapped with caching layer")
	} else {
		listingAdapter = baseListingAdapter
		log.Warn().Msg("Listing adapter running without cache (Redis unavailable)")
	}

	// Initialize services

	listingService, err := services.NewListingService(listingAdapter, cfg.Search)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize listing service")
	}

	// Start cache warming for the hot read paths
	if cacheProvider != nil {
		warmingService := services.NewCacheWarmingService(listingAdapter, cfg.Search.DefaultPageSize)
		warmingService.StartPeriodicWarming(ctx, 5*time.Minute)
	}

	// Initialize handlers

	listingHandler := handlers.NewListingHandler(listingService)
	statsHandler := handlers.NewStatsHandler(listingService)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics)
		log.Info().Msg("Cache middleware initialized successfully")
	}

	// Set up router

	router := routes.NewRouter(
		listingHandler,
		statsHandler,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}
