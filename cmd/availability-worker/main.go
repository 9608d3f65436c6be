package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"kart-pricing/internal/config"
	"kart-pricing/internal/database"
	"kart-pricing/internal/eventbus"
	"kart-pricing/internal/processor"
	"kart-pricing/internal/repository"
	"kart-pricing/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger, "availability-worker")
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn().Err(envErr).Msg("failed to read .env file")
	}
	logger.Info().Msg("starting availability worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	availabilityService := service.NewAvailabilityService(
		repository.NewProductRepository(pool, logger),
		repository.NewDepositRepository(pool, logger),
		repository.NewAvailabilityRepository(pool, logger),
		logger,
	)
	deposits := processor.New(availabilityService, logger)

	consumer, err := eventbus.NewConsumer(cfg.RabbitMQ, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize consumer: %w", err)
	}
	defer consumer.Close()

	if err := consumer.Consume(ctx, deposits.MessageHandler); err != nil {
		return fmt.Errorf("consumer stopped: %w", err)
	}

	logger.Info().Msg("availability worker stopped")
	return nil
}
