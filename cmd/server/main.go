package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/marketcore/settlement/internal/adapter/http"
	"github.com/marketcore/settlement/internal/adapter/http/handler"
	"github.com/marketcore/settlement/internal/adapter/http/middleware"
	postgresRepo "github.com/marketcore/settlement/internal/adapter/repository/postgres"
	redisRepo "github.com/marketcore/settlement/internal/adapter/repository/redis"
	"github.com/marketcore/settlement/internal/infrastructure/config"
	"github.com/marketcore/settlement/internal/infrastructure/eventpublisher"
	"github.com/marketcore/settlement/internal/infrastructure/logger"
	"github.com/marketcore/settlement/internal/infrastructure/postgres"
	"github.com/marketcore/settlement/internal/infrastructure/redis"
	"github.com/marketcore/settlement/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

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

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	walletRepo := postgresRepo.NewWalletRepository(pool)
	recordRepo := postgresRepo.NewRecordRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	reconRepo := postgresRepo.NewReconciliationRepository(pool)
	users := postgresRepo.NewUserDirectory(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrierWithPolicy(
		logger.Component(appLogger, "retrier"), cfg.RetryMaxAttempts, cfg.RetryBaseDelay)

	// Initialize use cases
	walletUC := usecase.NewWalletLedger(txManager, walletRepo, users, idGen, cache)
	engine := usecase.NewBalanceTransferEngine(
		txManager, walletRepo, recordRepo, outboxRepo, users, idGen, cache, retrier)
	journalUC := usecase.NewJournal(recordRepo, users, idGen)
	settlementUC := usecase.NewSettlementProcessor(
		txManager, transactionRepo, recordRepo, outboxRepo, engine,
		users, idGen, retrier, cfg.PlatformUserID)
	reconUC := usecase.NewReconciler(reconRepo)

	// Initialize handlers
	walletHandler := handler.NewWalletHandler(walletUC)
	financeHandler := handler.NewFinanceHandler(engine, journalUC)
	transactionHandler := handler.NewTransactionHandler(settlementUC)
	reconciliationHandler := handler.NewReconciliationHandler(reconUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		WalletHandler:         walletHandler,
		FinanceHandler:        financeHandler,
		TransactionHandler:    transactionHandler,
		ReconciliationHandler: reconciliationHandler,
		HealthHandler:         healthHandler,
		IdempotencyStore:      idempotencyStore,
		RateLimiter:           middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Logging:               middleware.NewLoggingMiddleware(logger.Component(appLogger, "http")),
	})

	// Start outbox publisher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(logger.Component(appLogger, "events")),
		Logger:     logger.Component(appLogger, "outbox"),
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("outbox publisher stopped")
		}
	}()

	// Expose Prometheus metrics next to the API
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      mux,
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
