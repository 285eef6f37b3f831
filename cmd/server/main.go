package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/mkor/tripsettle/internal/adapter/http"
	"github.com/mkor/tripsettle/internal/adapter/http/handler"
	"github.com/mkor/tripsettle/internal/adapter/http/middleware"
	postgresRepo "github.com/mkor/tripsettle/internal/adapter/repository/postgres"
	redisRepo "github.com/mkor/tripsettle/internal/adapter/repository/redis"
	"github.com/mkor/tripsettle/internal/infrastructure/config"
	"github.com/mkor/tripsettle/internal/infrastructure/eventpublisher"
	"github.com/mkor/tripsettle/internal/infrastructure/metrics"
	"github.com/mkor/tripsettle/internal/infrastructure/postgres"
	"github.com/mkor/tripsettle/internal/infrastructure/rates"
	"github.com/mkor/tripsettle/internal/infrastructure/redis"
	"github.com/mkor/tripsettle/internal/usecase"
)

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	appMetrics := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	tripRepo := postgresRepo.NewTripRepository(pool)
	expenseRepo := postgresRepo.NewExpenseRepository(pool)
	snapshotRepo := postgresRepo.NewSnapshotRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Exchange rates
	rateTable, err := rates.ParseTable(cfg.RatesTable)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse rate table")
	}
	staticRates, err := rates.NewStaticProvider(cfg.RatesPivot, rateTable)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build rate provider")
	}
	rateProvider := rates.NewCachedProvider(staticRates, cache, cfg.RatesCacheTTL, log.Logger)

	// Initialize use cases
	settlementUC := usecase.NewSettlementUseCase(tripRepo, expenseRepo, snapshotRepo, rateProvider, idGen, log.Logger)
	tripUC := usecase.NewTripUseCase(txManager, tripRepo, outboxRepo, idGen)
	expenseUC := usecase.NewExpenseUseCase(txManager, tripRepo, expenseRepo, outboxRepo, settlementUC, idGen, log.Logger)

	// Initialize handlers
	tripHandler := handler.NewTripHandler(tripUC)
	expenseHandler := handler.NewExpenseHandler(expenseUC)
	settlementHandler := handler.NewSettlementHandler(settlementUC, appMetrics)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TripHandler:       tripHandler,
		ExpenseHandler:    expenseHandler,
		SettlementHandler: settlementHandler,
		HealthHandler:     healthHandler,
		IdempotencyStore:  idempotencyStore,
		RateLimiter:       middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		RequestLogger:     middleware.NewLoggingMiddleware(log.Logger),
	})

	// Start outbox publisher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(nil),
		Metrics:    appMetrics,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopPublisher()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
