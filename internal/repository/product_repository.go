package repository

import (
	"context"
	"fmt"
	"strings"

	"kart-pricing/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// GetByIDs retrieves products with their set memberships and required items.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT id, name, shipping_digital, purchase_limit_per_user, created_at
		FROM products
		WHERE id = ANY($1::uuid[])
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}

	products, err := r.scanProducts(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachRelations(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListRequiringItem retrieves every product that requires the item.
func (r *productRepository) ListRequiringItem(ctx context.Context, itemID uuid.UUID) ([]model.Product, error) {
	query := `
		SELECT p.id, p.name, p.shipping_digital, p.purchase_limit_per_user, p.created_at
		FROM products p
		JOIN item_product ip ON ip.product_id = p.id
		WHERE ip.item_id = $1
		ORDER BY p.created_at, p.id
	`

	rows, err := r.pool.Query(ctx, query, itemID)
	if err != nil {
		r.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to query products requiring item")
		return nil, fmt.Errorf("failed to query products requiring item: %w", err)
	}

	products, err := r.scanProducts(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachRelations(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) scanProducts(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Digital, &p.PurchaseLimitPerUser, &p.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

// attachRelations loads set memberships and required items of products in one round trip.
func (r *productRepository) attachRelations(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(products))
	index := make(map[uuid.UUID]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
	}

	batch := &pgx.Batch{}
	batch.Queue(`
		SELECT product_id, product_set_id
		FROM product_set_product
		WHERE product_id = ANY($1::uuid[])
		ORDER BY product_id, product_set_id
	`, ids)
	batch.Queue(`
		SELECT product_id, item_id, required_quantity
		FROM item_product
		WHERE product_id = ANY($1::uuid[])
		ORDER BY product_id, item_id
	`, ids)

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	setRows, err := results.Query()
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query product sets")
		return fmt.Errorf("failed to query product sets: %w", err)
	}
	for setRows.Next() {
		var productID, setID uuid.UUID
		if err := setRows.Scan(&productID, &setID); err != nil {
			setRows.Close()
			return fmt.Errorf("failed to scan product set: %w", err)
		}
		p := &products[index[productID]]
		p.SetIDs = append(p.SetIDs, setID)
	}
	setRows.Close()
	if err := setRows.Err(); err != nil {
		return fmt.Errorf("error iterating product sets: %w", err)
	}

	itemRows, err := results.Query()
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query required items")
		return fmt.Errorf("failed to query required items: %w", err)
	}
	for itemRows.Next() {
		var productID uuid.UUID
		var ri model.RequiredItem
		if err := itemRows.Scan(&productID, &ri.ItemID, &ri.RequiredQuantity); err != nil {
			itemRows.Close()
			return fmt.Errorf("failed to scan required item: %w", err)
		}
		p := &products[index[productID]]
		p.RequiredItems = append(p.RequiredItems, ri)
	}
	itemRows.Close()
	if err := itemRows.Err(); err != nil {
		return fmt.Errorf("error iterating required items: %w", err)
	}

	return nil
}

// GetPrices returns unit prices for one sales channel and currency.
func (r *productRepository) GetPrices(ctx context.Context, productIDs []uuid.UUID, salesChannelID uuid.UUID, currency string) (map[uuid.UUID]int64, error) {
	prices := make(map[uuid.UUID]int64, len(productIDs))
	if len(productIDs) == 0 {
		return prices, nil
	}

	query := `
		SELECT product_id, value
		FROM prices
		WHERE product_id = ANY($1::uuid[]) AND sales_channel_id = $2 AND currency = $3
	`

	rows, err := r.pool.Query(ctx, query, productIDs, salesChannelID, strings.ToUpper(currency))
	if err != nil {
		r.logger.Error().Err(err).
			Str("sales_channel_id", salesChannelID.String()).
			Str("currency", currency).
			Msg("failed to query prices")
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID uuid.UUID
		var value int64
		if err := rows.Scan(&productID, &value); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan price row")
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		prices[productID] = value
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating price rows")
		return nil, fmt.Errorf("error iterating prices: %w", err)
	}
	return prices, nil
}

// GetSchemaRequiredItems returns the items required by the options selected for productID.
func (r *productRepository) GetSchemaRequiredItems(ctx context.Context, productID uuid.UUID, selections map[uuid.UUID]uuid.UUID) ([]model.RequiredItem, error) {
	if len(selections) == 0 {
		return nil, nil
	}

	schemaIDs := make([]uuid.UUID, 0, len(selections))
	optionIDs := make([]uuid.UUID, 0, len(selections))
	for schemaID, optionID := range selections {
		schemaIDs = append(schemaIDs, schemaID)
		optionIDs = append(optionIDs, optionID)
	}

	query := `
		SELECT oi.item_id, SUM(oi.required_quantity)::int
		FROM option_items oi
		JOIN product_schemas ps ON ps.schema_id = oi.schema_id AND ps.product_id = $1
		WHERE (oi.schema_id, oi.option_id) IN (SELECT * FROM unnest($2::uuid[], $3::uuid[]))
		GROUP BY oi.item_id
		ORDER BY oi.item_id
	`

	rows, err := r.pool.Query(ctx, query, productID, schemaIDs, optionIDs)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", productID.String()).
			Int("selections", len(selections)).
			Msg("failed to query schema items")
		return nil, fmt.Errorf("failed to query schema items: %w", err)
	}
	defer rows.Close()

	var items []model.RequiredItem
	for rows.Next() {
		var ri model.RequiredItem
		if err := rows.Scan(&ri.ItemID, &ri.RequiredQuantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan schema item row")
			return nil, fmt.Errorf("failed to scan schema item: %w", err)
		}
		items = append(items, ri)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schema items: %w", err)
	}
	return items, nil
}
