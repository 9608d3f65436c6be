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
)

type shippingRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewShippingRepository creates a new PostgreSQL-backed shipping method repository.
func NewShippingRepository(pool *pgxpool.Pool, logger zerolog.Logger) ShippingRepository {
	return &shippingRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "shipping").Logger(),
	}
}

// GetByID retrieves a shipping method with its price ranges.
// Returns nil if the method does not exist.
func (r *shippingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ShippingMethod, error) {
	query := `
		SELECT id, name, shipping_digital
		FROM shipping_methods
		WHERE id = $1
	`

	var m model.ShippingMethod
	err := r.pool.QueryRow(ctx, query, id).Scan(&m.ID, &m.Name, &m.Digital)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("shipping_method_id", id.String()).Msg("shipping method not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("shipping_method_id", id.String()).Msg("failed to get shipping method")
		return nil, fmt.Errorf("failed to get shipping method: %w", err)
	}

	rangesQuery := `
		SELECT currency, start, value
		FROM shipping_price_ranges
		WHERE shipping_method_id = $1
		ORDER BY currency, start
	`

	rows, err := r.pool.Query(ctx, rangesQuery, id)
	if err != nil {
		r.logger.Error().Err(err).Str("shipping_method_id", id.String()).Msg("failed to query price ranges")
		return nil, fmt.Errorf("failed to query price ranges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pr model.PriceRange
		if err := rows.Scan(&pr.Currency, &pr.Start, &pr.Value); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan price range row")
			return nil, fmt.Errorf("failed to scan price range: %w", err)
		}
		m.PriceRanges = append(m.PriceRanges, pr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price ranges: %w", err)
	}

	return &m, nil
}
