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

	"kart-pricing/internal/catalog"
	"kart-pricing/internal/config"
	"kart-pricing/internal/database"
	"kart-pricing/internal/handler"
	"kart-pricing/internal/repository"
	"kart-pricing/internal/router"
	"kart-pricing/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may already be populated.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger, "api")
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn().Err(envErr).Msg("failed to read .env file")
	}
	logger.Info().Msg("starting kart-pricing API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	productRepo := repository.NewProductRepository(pool, logger)
	depositRepo := repository.NewDepositRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	shippingRepo := repository.NewShippingRepository(pool, logger)
	channelRepo := repository.NewSalesChannelRepository(pool, logger)
	availabilityRepo := repository.NewAvailabilityRepository(pool, logger)

	// Discount snapshots come from S3 when enabled, with the local files as fallback
	var bucket catalog.Loader
	if cfg.S3.Enabled {
		bucket, err = catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("snapshot bucket unavailable, reading local files only")
			bucket = nil
		}
	} else {
		logger.Info().Msg("reading discount snapshots from local files (S3 disabled)")
	}
	loader := catalog.NewFallbackLoader(bucket, catalog.NewFileLoader(logger), cfg.S3.Prefix, logger)

	store, err := catalog.NewStore(ctx, &catalog.StoreConfig{FilePaths: cfg.Catalog.Files}, loader, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize discount catalog: %w", err)
	}
	defer store.Close()

	if cfg.Catalog.ReloadInterval > 0 {
		go watchCatalog(ctx, store, cfg.Catalog.ReloadInterval, logger)
	}

	location, err := cfg.Pricing.Location()
	if err != nil {
		return fmt.Errorf("failed to load pricing time zone: %w", err)
	}

	cartService := service.NewCartService(
		productRepo, depositRepo, orderRepo, shippingRepo, channelRepo, store, location, logger,
	)
	availabilityService := service.NewAvailabilityService(productRepo, depositRepo, availabilityRepo, logger)

	cartHandler := handler.NewCartHandler(cartService, logger)
	productHandler := handler.NewProductHandler(availabilityService, logger)

	mux := router.New(cartHandler, productHandler, cfg.Auth.APIKey, logger)

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
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
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

// watchCatalog reloads the discount snapshots every interval until ctx is done.
// A failed reload keeps serving the previous snapshot.
func watchCatalog(ctx context.Context, store catalog.Store, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Reload(ctx); err != nil {
				logger.Error().Err(err).Msg("failed to reload discount catalog")
				continue
			}
			logger.Debug().Int("discounts", store.Size()).Msg("discount catalog reloaded")
		}
	}
}
