package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/api"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/api/middleware"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/auth"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/config"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/handlers"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/proxy"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/registry"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Initialize the document store; fall back to in-memory in development
	var dataStore store.DataStore
	if cfg.MongoURI != "" {
		mongoStore, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Fatal().Err(err).Msg("mongodb connection failed")
		}
		defer mongoStore.Close(ctx)
		dataStore = mongoStore
		logger.Info().Str("db", cfg.MongoDB).Msg("connected to MongoDB")
	} else {
		dataStore = store.NewMemoryStore()
		logger.Warn().Msg("MONGO_URI not set, using in-memory store (data is lost on restart)")
	}

	// Initialize Redis (rate limiting only, optional)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisClient.Close()
		logger.Info().Msg("connected to Redis")
	}

	// Wire the core
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	reg := registry.New(dataStore)
	agentClient := proxy.NewClient(cfg.AgentTimeout)
	cacheProxy := proxy.NewCacheProxy(dataStore, agentClient)
	prober := proxy.NewProber(dataStore, cfg.AgentHealthPath, cfg.AgentPingTimeout)

	h := handlers.NewHandler(dataStore, reg, cacheProxy, prober, tokens, redisClient)
	apiKeyAuth := middleware.NewAPIKeyAuth(dataStore)
	jwtAuth := middleware.NewJWTAuth(tokens)

	var limiter *middleware.RateLimiter
	if redisClient != nil {
		limiter = middleware.NewRateLimiter(redisClient, logger, cfg.RateLimitWhitelist)
	}

	router := api.NewRouter(logger, cfg, h, apiKeyAuth, jwtAuth, limiter)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting Cachefy server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
