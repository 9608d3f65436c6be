package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// GetPaidUnits sums the units of a product in the user's paid, non-cancelled orders.
func (r *orderRepository) GetPaidUnits(ctx context.Context, userID, productID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(SUM(op.quantity), 0)::int
		FROM order_products op
		JOIN orders o ON o.id = op.order_id
		WHERE o.user_id = $1 AND op.product_id = $2 AND o.paid AND NOT o.cancelled
	`

	var units int
	if err := r.pool.QueryRow(ctx, query, userID, productID).Scan(&units); err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("product_id", productID.String()).
			Msg("failed to sum paid units")
		return 0, fmt.Errorf("failed to sum paid units: %w", err)
	}

	return units, nil
}

// UsageCount counts orders that used the discount. With a user id only that
// user's orders count.
func (r *orderRepository) UsageCount(ctx context.Context, discountID uuid.UUID, userID *uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(DISTINCT o.id)::int
		FROM order_discounts od
		JOIN orders o ON o.id = od.order_id
		WHERE od.discount_id = $1 AND ($2::uuid IS NULL OR o.user_id = $2)
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, discountID, userID).Scan(&count); err != nil {
		r.logger.Error().
			Err(err).
			Str("discount_id", discountID.String()).
			Msg("failed to count discount uses")
		return 0, fmt.Errorf("failed to count discount uses: %w", err)
	}

	r.logger.Debug().
		Str("discount_id", discountID.String()).
		Bool("per_user", userID != nil).
		Int("count", count).
		Msg("discount usage counted")

	return count, nil
}
