package service

import (
	"context"

	"kart-pricing/internal/model"

	"github.com/google/uuid"
)

// CartService prices carts.
type CartService interface {
	// Process prices a cart for preview. It validates the request, drops lines
	// that exceed purchase limits or stock, applies sales and coupons and
	// returns the breakdown. Nothing is written. user may be nil for guests.
	Process(ctx context.Context, req *model.CartRequest, user *model.User) (*model.CartResult, error)
}

// AvailabilityService computes and caches product availability.
type AvailabilityService interface {
	// GetProductAvailability computes a product's availability rows from current
	// deposits. Returns nil if the product does not exist.
	GetProductAvailability(ctx context.Context, productID uuid.UUID) (*model.ProductAvailability, error)

	// RefreshItem recomputes and stores the cached availability of every
	// product requiring the item.
	RefreshItem(ctx context.Context, itemID uuid.UUID) error
}
