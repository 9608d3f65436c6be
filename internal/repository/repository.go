package repository

import (
	"context"

	"kart-pricing/internal/model"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetByIDs retrieves products with their set memberships and required items.
	// Unknown ids are omitted from the result.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// GetPrices returns gross unit prices in minor units, keyed by product id,
	// for one sales channel and currency. Products without a price are omitted.
	GetPrices(ctx context.Context, productIDs []uuid.UUID, salesChannelID uuid.UUID, currency string) (map[uuid.UUID]int64, error)

	// GetSchemaRequiredItems returns the items required by the options selected
	// for a product, given as schema id -> option id. Schemas not attached to
	// the product and options not belonging to their schema contribute nothing.
	GetSchemaRequiredItems(ctx context.Context, productID uuid.UUID, selections map[uuid.UUID]uuid.UUID) ([]model.RequiredItem, error)

	// ListRequiringItem retrieves every product that requires the item.
	ListRequiringItem(ctx context.Context, itemID uuid.UUID) ([]model.Product, error)
}

// DepositRepository defines read access to the item stock ledger.
type DepositRepository interface {
	// GetDeposits returns every deposit of the given items.
	GetDeposits(ctx context.Context, itemIDs []uuid.UUID) ([]model.Deposit, error)
}

// OrderRepository defines read access to placed orders.
type OrderRepository interface {
	// GetPaidUnits sums the units of a product in the user's paid, non-cancelled orders.
	GetPaidUnits(ctx context.Context, userID, productID uuid.UUID) (int, error)

	// UsageCount counts orders that used the discount, for one user when userID is set.
	UsageCount(ctx context.Context, discountID uuid.UUID, userID *uuid.UUID) (int, error)
}

// ShippingRepository defines read access to shipping methods.
type ShippingRepository interface {
	// GetByID retrieves a shipping method with its price ranges, or nil if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.ShippingMethod, error)
}

// SalesChannelRepository defines read access to sales channels.
type SalesChannelRepository interface {
	// GetByID retrieves a sales channel, or nil if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.SalesChannel, error)
}

// AvailabilityRepository maintains the cached product availability rows.
type AvailabilityRepository interface {
	// Replace swaps a product's availability rows and updates its total quantity
	// and fastest lead time in one transaction.
	Replace(ctx context.Context, productID uuid.UUID, rows []model.Availability) error

	// GetByProductID returns the cached rows of a product, fastest first.
	GetByProductID(ctx context.Context, productID uuid.UUID) ([]model.Availability, error)
}
