package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"b2b-quote/internal/cache"
	"b2b-quote/internal/config"
	"b2b-quote/internal/database"
	"b2b-quote/internal/handler"
	"b2b-quote/internal/metrics"
	"b2b-quote/internal/offline"
	"b2b-quote/internal/pricing"
	"b2b-quote/internal/repository"
	"b2b-quote/internal/router"
	"b2b-quote/internal/service"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting b2b-quote API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	// Redis is optional. The features backed by it are disabled when it is unreachable.
	var (
		redisClient *cache.Client
		denylist    cache.TokenDenylist
		idempotency cache.IdempotencyStore
		snapshots   cache.SnapshotStore
		queue       offline.Queue
	)
	redisClient, err = cache.New(ctx, cfg.Redis)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("addr", cfg.Redis.Addr).
			Msg("redis unavailable, running without redis-backed features")
	} else {
		defer redisClient.Close()
		denylist = redisClient
		idempotency = redisClient
		if cfg.Offline.Enabled {
			snapshots = redisClient
			queue = offline.NewQueue(redisClient)
		}
	}

	fileLoader := pricing.NewFileLoader(logger)
	var s3Loader pricing.Loader
	if cfg.S3.Enabled {
		s3Loader, err = pricing.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			s3Loader = nil
		}
	} else {
		logger.Info().Msg("using local file system for price lists (S3 disabled)")
	}
	loader := pricing.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, s3Loader != nil, logger)

	catalog, err := pricing.NewCatalog(ctx, &pricing.CatalogConfig{FilePaths: cfg.Pricing.CatalogFiles}, loader, logger)
	if err != nil {
		return fmt.Errorf("failed to load pricing catalog: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	rfqRepo := repository.NewRFQRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	pricingService := service.NewPricingService(catalog, logger)
	rfqService := service.NewRFQService(rfqRepo, pricingService, cfg.Quote, m, logger)
	quoteService := service.NewQuoteService(rfqService, cfg.Quote, logger)
	cartService := service.NewCartService(cartRepo, rfqRepo, pricingService, queue, snapshots, cfg.Quote, m, logger)
	authService := service.NewAuthService(userRepo, denylist, cfg.Auth, logger)

	checks := map[string]handler.Pinger{"postgres": pool}
	if redisClient != nil {
		checks["redis"] = redisClient
	}

	mux := router.New(router.Handlers{
		Auth:    handler.NewAuthHandler(authService, logger),
		RFQ:     handler.NewRFQHandler(rfqService, logger),
		Quote:   handler.NewQuoteHandler(quoteService, logger),
		Pricing: handler.NewPricingHandler(pricingService, logger),
		Cart:    handler.NewCartHandler(cartService, logger),
		Health:  handler.NewHealthHandler(checks, logger),
	}, router.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Authenticator:  authService,
		Idempotency:    idempotency,
		IdempotencyTTL: cfg.Redis.IdempotencyTTL,
		Metrics:        m,
		Gatherer:       registry,
	}, logger)

	if queue != nil {
		replayer := offline.NewReplayer(queue, cartService, cfg.Offline, m, logger)
		go replayer.Run(ctx)
	}

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Stop the replayer before the pool closes.
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
