package repository

import (
	"context"
	"fmt"

	"kart-pricing/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type depositRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDepositRepository creates a new PostgreSQL-backed deposit repository.
func NewDepositRepository(pool *pgxpool.Pool, logger zerolog.Logger) DepositRepository {
	return &depositRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "deposit").Logger(),
	}
}

func (r *depositRepository) GetDeposits(ctx context.Context, itemIDs []uuid.UUID) ([]model.Deposit, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT item_id, quantity, shipping_time, shipping_date
		FROM deposits
		WHERE item_id = ANY($1::uuid[])
		ORDER BY item_id, created_at, id
	`

	rows, err := r.pool.Query(ctx, query, itemIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("items", len(itemIDs)).Msg("failed to query deposits")
		return nil, fmt.Errorf("failed to query deposits: %w", err)
	}
	defer rows.Close()

	var deposits []model.Deposit
	for rows.Next() {
		var d model.Deposit
		if err := rows.Scan(&d.ItemID, &d.Quantity, &d.ShippingTime, &d.ShippingDate); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan deposit row")
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		deposits = append(deposits, d)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating deposit rows")
		return nil, fmt.Errorf("error iterating deposits: %w", err)
	}

	return deposits, nil
}
