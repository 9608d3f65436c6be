package repository

import (
	"context"
	"fmt"

	"kart-pricing/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type availabilityRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAvailabilityRepository creates a new PostgreSQL-backed availability repository.
func NewAvailabilityRepository(pool *pgxpool.Pool, logger zerolog.Logger) AvailabilityRepository {
	return &availabilityRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "availability").Logger(),
	}
}

// Replace swaps a product's availability rows. The product's quantity becomes
// the sum of the rows and its lead time the one of the first (fastest) row.
func (r *availabilityRepository) Replace(ctx context.Context, productID uuid.UUID, rows []model.Availability) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM product_availabilities WHERE product_id = $1`, productID); err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to clear availability")
		return fmt.Errorf("failed to clear availability: %w", err)
	}

	total := 0
	if len(rows) > 0 {
		insert := `
			INSERT INTO product_availabilities (id, product_id, quantity, shipping_time, shipping_date)
			VALUES ($1, $2, $3, $4, $5)
		`
		batch := &pgx.Batch{}
		for _, row := range rows {
			batch.Queue(insert, uuid.New(), productID, row.Quantity, row.ShippingTime, row.ShippingDate)
			total += row.Quantity
		}

		results := tx.SendBatch(ctx, batch)
		for range rows {
			if _, err = results.Exec(); err != nil {
				_ = results.Close()
				r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to insert availability")
				return fmt.Errorf("failed to insert availability: %w", err)
			}
		}
		if err = results.Close(); err != nil {
			return fmt.Errorf("failed to insert availability: %w", err)
		}
	}

	var fastest model.Availability
	if len(rows) > 0 {
		fastest = rows[0]
	}
	update := `
		UPDATE products
		SET quantity = $2, shipping_time = $3, shipping_date = $4
		WHERE id = $1
	`
	if _, err = tx.Exec(ctx, update, productID, total, fastest.ShippingTime, fastest.ShippingDate); err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to update product availability")
		return fmt.Errorf("failed to update product availability: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Debug().
		Str("product_id", productID.String()).
		Int("rows", len(rows)).
		Int("quantity", total).
		Msg("availability replaced")

	return nil
}

// GetByProductID returns the cached rows of a product: rows without a lead
// time first, then by shipping time, then by shipping date.
func (r *availabilityRepository) GetByProductID(ctx context.Context, productID uuid.UUID) ([]model.Availability, error) {
	query := `
		SELECT quantity, shipping_time, shipping_date
		FROM product_availabilities
		WHERE product_id = $1
		ORDER BY
			(shipping_time IS NOT NULL OR shipping_date IS NOT NULL),
			shipping_date IS NOT NULL,
			shipping_time,
			shipping_date
	`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to query availability")
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer rows.Close()

	result := []model.Availability{}
	for rows.Next() {
		var a model.Availability
		if err := rows.Scan(&a.Quantity, &a.ShippingTime, &a.ShippingDate); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan availability row")
			return nil, fmt.Errorf("failed to scan availability: %w", err)
		}
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating availability: %w", err)
	}

	return result, nil
}
