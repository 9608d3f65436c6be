package service

import (
	"context"
	"fmt"

	"kart-pricing/internal/availability"
	"kart-pricing/internal/model"
	"kart-pricing/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type availabilityService struct {
	products repository.ProductRepository
	deposits repository.DepositRepository
	cache    repository.AvailabilityRepository
	logger   zerolog.Logger
}

// NewAvailabilityService creates a new availability service.
func NewAvailabilityService(
	products repository.ProductRepository,
	deposits repository.DepositRepository,
	cache repository.AvailabilityRepository,
	logger zerolog.Logger,
) AvailabilityService {
	return &availabilityService{
		products: products,
		deposits: deposits,
		cache:    cache,
		logger:   logger.With().Str("service", "availability").Logger(),
	}
}

// GetProductAvailability serves the rows maintained by RefreshItem. A product
// that has no cached rows yet, or whose cache cannot be read, is computed from
// the live deposits instead.
func (s *availabilityService) GetProductAvailability(ctx context.Context, productID uuid.UUID) (*model.ProductAvailability, error) {
	products, err := s.products.GetByIDs(ctx, []uuid.UUID{productID})
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if len(products) == 0 {
		s.logger.Debug().Str("product_id", productID.String()).Msg("product not found")
		return nil, nil
	}
	product := products[0]

	result := &model.ProductAvailability{
		ProductID:    product.ID,
		Availability: []model.Availability{},
	}
	if availability.Unlimited(product.RequiredItems) {
		result.Unlimited = true
		return result, nil
	}

	cached, err := s.cache.GetByProductID(ctx, product.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("product_id", productID.String()).Msg("failed to read cached availability, computing from deposits")
	}
	if len(cached) > 0 {
		result.Availability = cached
		result.Quantity = availability.Total(cached)
		return result, nil
	}

	deposits, err := s.deposits.GetDeposits(ctx, itemIDs(product.RequiredItems))
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to get deposits")
		return nil, fmt.Errorf("failed to get deposits: %w", err)
	}

	if rows := availability.Compute(product.RequiredItems, deposits); len(rows) > 0 {
		result.Availability = rows
	}
	result.Quantity = availability.Total(result.Availability)
	return result, nil
}

// RefreshItem rebuilds the cached availability of every product using the item.
func (s *availabilityService) RefreshItem(ctx context.Context, itemID uuid.UUID) error {
	products, err := s.products.ListRequiringItem(ctx, itemID)
	if err != nil {
		s.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to list products requiring item")
		return fmt.Errorf("failed to list products requiring item: %w", err)
	}
	if len(products) == 0 {
		s.logger.Debug().Str("item_id", itemID.String()).Msg("no products require item")
		return nil
	}

	var reqs []model.RequiredItem
	for _, p := range products {
		reqs = append(reqs, p.RequiredItems...)
	}
	deposits, err := s.deposits.GetDeposits(ctx, itemIDs(reqs))
	if err != nil {
		s.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to get deposits")
		return fmt.Errorf("failed to get deposits: %w", err)
	}
	ledger := availability.NewLedger(deposits)

	for _, p := range products {
		rows := ledger.Availability(p.RequiredItems)
		if err := s.cache.Replace(ctx, p.ID, rows); err != nil {
			s.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to store availability")
			return fmt.Errorf("failed to store availability: %w", err)
		}
		s.logger.Debug().
			Str("product_id", p.ID.String()).
			Int("quantity", availability.Total(rows)).
			Msg("availability refreshed")
	}

	s.logger.Info().
		Str("item_id", itemID.String()).
		Int("products", len(products)).
		Msg("item availability refreshed")

	return nil
}

func itemIDs(reqs []model.RequiredItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(reqs))
	seen := make(map[uuid.UUID]struct{}, len(reqs))
	for _, ri := range reqs {
		if _, ok := seen[ri.ItemID]; ok {
			continue
		}
		seen[ri.ItemID] = struct{}{}
		ids = append(ids, ri.ItemID)
	}
	return ids
}
