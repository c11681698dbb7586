package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/consilium-ai/consilium-go/internal/agents"
	"github.com/consilium-ai/consilium-go/internal/api"
	"github.com/consilium-ai/consilium-go/internal/api/handlers"
	"github.com/consilium-ai/consilium-go/internal/cache"
	"github.com/consilium-ai/consilium-go/internal/config"
	"github.com/consilium-ai/consilium-go/internal/database"
	"github.com/consilium-ai/consilium-go/internal/marketdata"
	"github.com/consilium-ai/consilium-go/internal/reasoning"
	"github.com/consilium-ai/consilium-go/internal/services"
	"github.com/consilium-ai/consilium-go/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger(cfg)

	shutdownTelemetry, err := telemetry.Init(context.Background(), cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			logger.WithError(err).Warn("Telemetry shutdown failed")
		}
	}()

	// Optional persistence backends.
	var db *database.PostgresDB
	var store handlers.ConsensusStore
	var dbChecker handlers.HealthChecker
	if cfg.Database.Enabled {
		db, err = database.NewPostgresConnection(context.Background(), cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		store = database.NewConsensusRepository(db.Pool)
		dbChecker = db
	}

	var redisClient *database.RedisClient
	var decisionCache handlers.DecisionCache
	var redisChecker handlers.HealthChecker
	if cfg.Redis.Enabled {
		redisClient, err = database.NewRedisConnection(cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer redisClient.Close()
		decisionCache = cache.NewConsensusCache(redisClient.Client, cfg.Redis.ConsensusTTLDuration())
		redisChecker = redisClient
	}

	notifier, err := services.NewNotificationService(&cfg.Telegram, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize notifications: %w", err)
	}

	// The analyst committee and its peer graph are fixed at startup; a
	// misconfigured registry is the only unrecoverable error in the engine.
	market := marketdata.NewClient(&cfg.MarketData)
	registry, err := agents.DefaultRegistry(cfg.Analysts, market)
	if err != nil {
		return fmt.Errorf("failed to build agent registry: %w", err)
	}

	reasoningClient := reasoning.NewClient(&cfg.Reasoning)
	engine := services.NewEngine(cfg, registry, agents.DefaultPeerGraph(), reasoningClient, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	api.SetupRoutes(router, api.Handlers{
		Analysis: handlers.NewAnalysisHandler(engine, store, decisionCache, notifier, logger),
		Health:   handlers.NewHealthHandler(dbChecker, redisChecker),
	}, cfg.Security.JWTSecret)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
