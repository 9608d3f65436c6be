package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Schema creates the tables the pricing service reads, plus the availability
// cache it maintains. Statements are idempotent.
const Schema = `
	CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		shipping_digital BOOLEAN NOT NULL DEFAULT FALSE,
		purchase_limit_per_user INTEGER CHECK (purchase_limit_per_user >= 0),
		quantity INTEGER NOT NULL DEFAULT 0,
		shipping_time INTEGER,
		shipping_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS product_set_product (
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		product_set_id UUID NOT NULL,
		PRIMARY KEY (product_id, product_set_id)
	);

	CREATE TABLE IF NOT EXISTS items (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS item_product (
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		item_id UUID NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		required_quantity INTEGER NOT NULL CHECK (required_quantity > 0),
		PRIMARY KEY (product_id, item_id)
	);

	CREATE TABLE IF NOT EXISTS product_schemas (
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		schema_id UUID NOT NULL,
		PRIMARY KEY (product_id, schema_id)
	);

	CREATE TABLE IF NOT EXISTS option_items (
		schema_id UUID NOT NULL,
		option_id UUID NOT NULL,
		item_id UUID NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		required_quantity INTEGER NOT NULL DEFAULT 1 CHECK (required_quantity > 0),
		PRIMARY KEY (option_id, item_id)
	);

	CREATE TABLE IF NOT EXISTS deposits (
		id UUID PRIMARY KEY,
		item_id UUID NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		quantity INTEGER NOT NULL,
		shipping_time INTEGER,
		shipping_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_deposits_item_id ON deposits(item_id);

	CREATE TABLE IF NOT EXISTS sales_channels (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		vat_rate NUMERIC(5, 2) NOT NULL DEFAULT 0 CHECK (vat_rate >= 0)
	);

	CREATE TABLE IF NOT EXISTS prices (
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		sales_channel_id UUID NOT NULL REFERENCES sales_channels(id) ON DELETE CASCADE,
		currency CHAR(3) NOT NULL,
		value BIGINT NOT NULL CHECK (value >= 0),
		PRIMARY KEY (product_id, sales_channel_id, currency)
	);

	CREATE TABLE IF NOT EXISTS shipping_methods (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		shipping_digital BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS shipping_price_ranges (
		shipping_method_id UUID NOT NULL REFERENCES shipping_methods(id) ON DELETE CASCADE,
		currency CHAR(3) NOT NULL,
		start BIGINT NOT NULL CHECK (start >= 0),
		value BIGINT NOT NULL CHECK (value >= 0),
		PRIMARY KEY (shipping_method_id, currency, start)
	);

	CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		user_id UUID,
		paid BOOLEAN NOT NULL DEFAULT FALSE,
		cancelled BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);

	CREATE TABLE IF NOT EXISTS order_products (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id UUID NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0)
	);
	CREATE INDEX IF NOT EXISTS idx_order_products_product_id ON order_products(product_id);

	CREATE TABLE IF NOT EXISTS order_discounts (
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		discount_id UUID NOT NULL,
		PRIMARY KEY (order_id, discount_id)
	);
	CREATE INDEX IF NOT EXISTS idx_order_discounts_discount_id ON order_discounts(discount_id);

	CREATE TABLE IF NOT EXISTS product_availabilities (
		id UUID PRIMARY KEY,
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		shipping_time INTEGER,
		shipping_date TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS idx_product_availabilities_product_id ON product_availabilities(product_id);
`

// Migrate applies Schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Info().Msg("database schema applied")
	return nil
}
