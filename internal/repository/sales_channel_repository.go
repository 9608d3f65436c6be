package repository

import (
	"context"
	"errors"
	"fmt"

	"kart-pricing/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type salesChannelRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSalesChannelRepository creates a new PostgreSQL-backed sales channel repository.
func NewSalesChannelRepository(pool *pgxpool.Pool, logger zerolog.Logger) SalesChannelRepository {
	return &salesChannelRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "sales_channel").Logger(),
	}
}

// GetByID retrieves a sales channel. Returns nil if it does not exist.
func (r *salesChannelRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SalesChannel, error) {
	query := `
		SELECT id, name, vat_rate::text
		FROM sales_channels
		WHERE id = $1
	`

	var sc model.SalesChannel
	var vat string
	err := r.pool.QueryRow(ctx, query, id).Scan(&sc.ID, &sc.Name, &vat)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("sales_channel_id", id.String()).Msg("sales channel not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("sales_channel_id", id.String()).Msg("failed to get sales channel")
		return nil, fmt.Errorf("failed to get sales channel: %w", err)
	}

	sc.VatRate, err = decimal.NewFromString(vat)
	if err != nil {
		return nil, fmt.Errorf("invalid vat rate %q for sales channel %s: %w", vat, id, err)
	}

	return &sc, nil
}
