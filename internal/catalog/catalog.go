// Package catalog serves sales and coupons from gzipped JSON-lines snapshot files.
package catalog

import (
	"context"

	"kart-pricing/internal/model"
)

// Catalog provides the discounts considered for a cart.
type Catalog interface {
	// ListActiveDiscounts returns active sales (discounts without a code) of the target type.
	ListActiveDiscounts(ctx context.Context, target model.TargetType) ([]model.Discount, error)

	// FindCouponByCode returns the coupon with the code, or nil when there is none.
	FindCouponByCode(ctx context.Context, code string) (*model.Discount, error)
}

// Store is a Catalog whose snapshot can be replaced at runtime.
type Store interface {
	Catalog

	// Reload reads every snapshot file again and swaps the snapshot in one step.
	// On failure the previous snapshot stays in place.
	Reload(ctx context.Context) error

	// Size returns the number of discounts in the current snapshot.
	Size() int

	// Close releases the current snapshot.
	Close() error
}

// Loader reads the discounts of one snapshot file.
type Loader interface {
	// Load reads a gzipped JSON-lines file, one discount per line.
	Load(ctx context.Context, filePath string) ([]model.Discount, error)
}
