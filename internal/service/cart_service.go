package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kart-pricing/internal/availability"
	"kart-pricing/internal/catalog"
	"kart-pricing/internal/discount"
	"kart-pricing/internal/model"
	"kart-pricing/internal/purchaselimit"
	"kart-pricing/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	products repository.ProductRepository
	deposits repository.DepositRepository
	orders   repository.OrderRepository
	shipping repository.ShippingRepository
	channels repository.SalesChannelRepository
	catalog  catalog.Catalog
	engine   *discount.Engine
	location *time.Location
	now      func() time.Time
	logger   zerolog.Logger
}

// NewCartService creates a new cart service. Date and time conditions are
// evaluated in location.
func NewCartService(
	products repository.ProductRepository,
	deposits repository.DepositRepository,
	orders repository.OrderRepository,
	shipping repository.ShippingRepository,
	channels repository.SalesChannelRepository,
	discounts catalog.Catalog,
	location *time.Location,
	logger zerolog.Logger,
) CartService {
	if location == nil {
		location = time.UTC
	}
	return &cartService{
		products: products,
		deposits: deposits,
		orders:   orders,
		shipping: shipping,
		channels: channels,
		catalog:  discounts,
		engine:   discount.NewEngine(discount.NewEvaluator(orders), logger),
		location: location,
		now:      time.Now,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

// shippingMethods are the methods chosen for a request. Either may be nil.
type shippingMethods struct {
	physical *model.ShippingMethod
	digital  *model.ShippingMethod
}

func (m shippingMethods) ids() []uuid.UUID {
	var ids []uuid.UUID
	if m.physical != nil {
		ids = append(ids, m.physical.ID)
	}
	if m.digital != nil {
		ids = append(ids, m.digital.ID)
	}
	return ids
}

// Process prices a cart. See CartService.
func (s *cartService) Process(ctx context.Context, req *model.CartRequest, user *model.User) (*model.CartResult, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))

	channel, err := s.channels.GetByID(ctx, req.SalesChannelID)
	if err != nil {
		s.logger.Error().Err(err).Str("sales_channel_id", req.SalesChannelID.String()).Msg("failed to get sales channel")
		return nil, fmt.Errorf("failed to get sales channel: %w", err)
	}
	if channel == nil {
		s.logger.Warn().Str("sales_channel_id", req.SalesChannelID.String()).Msg("sales channel not found")
		return nil, model.ErrSalesChannelNotFound
	}

	methods, err := s.resolveShipping(ctx, req)
	if err != nil {
		return nil, err
	}

	products, err := s.resolveProducts(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.checkShippingTypes(req, products, methods); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(products))
	for id := range products {
		ids = append(ids, id)
	}
	prices, err := s.products.GetPrices(ctx, ids, channel.ID, currency)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get prices")
		return nil, fmt.Errorf("failed to get prices: %w", err)
	}
	for _, id := range ids {
		if _, ok := prices[id]; !ok {
			s.logger.Warn().
				Str("product_id", id.String()).
				Str("currency", currency).
				Str("sales_channel_id", channel.ID.String()).
				Msg("product has no price")
			return nil, model.ErrPriceNotFound
		}
	}

	lines, err := s.buildLines(ctx, req, products, prices, user)
	if err != nil {
		return nil, err
	}

	discounts, codes, err := s.collectDiscounts(ctx, req.Coupons)
	if err != nil {
		return nil, err
	}

	cart := &discount.Cart{
		Currency:        currency,
		Lines:           lines,
		ShippingMethods: methods.ids(),
		Shipping:        shippingQuote(methods, lines, currency),
		Env: discount.Env{
			Now:      s.now().In(s.location),
			User:     user,
			Coupons:  codes,
			Currency: currency,
			VatRate:  channel.VatRate,
			Products: lineProducts(lines),
		},
	}

	result, err := s.engine.Apply(ctx, cart, discounts)
	if err != nil {
		if errors.Is(err, model.ErrInvariantViolation) {
			s.logger.Error().Err(err).Msg("pricing invariant violated")
		}
		return nil, fmt.Errorf("failed to apply discounts: %w", err)
	}

	s.logger.Debug().
		Int("lines", len(result.Lines)).
		Int("sales", len(result.Sales)).
		Int("coupons", len(result.Coupons)).
		Int64("summary", result.Summary()).
		Msg("cart processed")

	return assemble(result, currency), nil
}

func (s *cartService) validateRequest(req *model.CartRequest) error {
	if req == nil {
		return fmt.Errorf("cart request is nil")
	}

	if _, err := model.ScaleOf(strings.TrimSpace(req.Currency)); err != nil {
		s.logger.Warn().Str("currency", req.Currency).Msg("invalid currency")
		return model.ErrInvalidCurrency
	}

	if req.SalesChannelID == uuid.Nil {
		return model.NewDomainError(model.ErrCodeMissingField, "salesChannelId is required")
	}

	for i, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("item %d: productId is required", i))
		}
		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID.String()).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	return nil
}

func (s *cartService) resolveShipping(ctx context.Context, req *model.CartRequest) (shippingMethods, error) {
	var methods shippingMethods

	lookup := func(id *uuid.UUID, digital bool) (*model.ShippingMethod, error) {
		if id == nil {
			return nil, nil
		}
		method, err := s.shipping.GetByID(ctx, *id)
		if err != nil {
			s.logger.Error().Err(err).Str("shipping_method_id", id.String()).Msg("failed to get shipping method")
			return nil, fmt.Errorf("failed to get shipping method: %w", err)
		}
		if method == nil {
			s.logger.Warn().Str("shipping_method_id", id.String()).Msg("shipping method not found")
			return nil, model.ErrShippingMethodNotFound
		}
		if method.Digital != digital {
			s.logger.Warn().
				Str("shipping_method_id", id.String()).
				Bool("digital", method.Digital).
				Msg("shipping method used for the wrong shipping type")
			return nil, model.ErrShippingTypeMismatch
		}
		return method, nil
	}

	var err error
	if methods.physical, err = lookup(req.ShippingMethodID, false); err != nil {
		return methods, err
	}
	if methods.digital, err = lookup(req.DigitalShippingMethodID, true); err != nil {
		return methods, err
	}
	return methods, nil
}

// resolveProducts loads every requested product. An unknown id rejects the request.
func (s *cartService) resolveProducts(ctx context.Context, req *model.CartRequest) (map[uuid.UUID]*model.Product, error) {
	ids := make([]uuid.UUID, 0, len(req.Items))
	seen := make(map[uuid.UUID]struct{}, len(req.Items))
	for _, item := range req.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	found, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int("product_count", len(ids)).Msg("failed to get products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	products := make(map[uuid.UUID]*model.Product, len(found))
	for i := range found {
		products[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			s.logger.Warn().Str("product_id", id.String()).Msg("product not found")
			return nil, model.ErrProductNotFound
		}
	}
	return products, nil
}

// checkShippingTypes rejects carts whose products cannot travel with the
// chosen methods: a physical-only choice with digital products, or the reverse.
func (s *cartService) checkShippingTypes(req *model.CartRequest, products map[uuid.UUID]*model.Product, methods shippingMethods) error {
	for _, item := range req.Items {
		p := products[item.ProductID]
		mismatch := (p.Digital && methods.digital == nil && methods.physical != nil) ||
			(!p.Digital && methods.physical == nil && methods.digital != nil)
		if mismatch {
			s.logger.Warn().
				Str("product_id", p.ID.String()).
				Bool("digital", p.Digital).
				Msg("product does not match the shipping method type")
			return model.ErrShippingTypeMismatch
		}
	}
	return nil
}

// buildLines applies purchase limits and reserves stock for each requested
// line in order. Lines that end up empty or out of stock are left out.
func (s *cartService) buildLines(
	ctx context.Context,
	req *model.CartRequest,
	products map[uuid.UUID]*model.Product,
	prices map[uuid.UUID]int64,
	user *model.User,
) ([]discount.Line, error) {
	requirements := make([][]model.RequiredItem, len(req.Items))
	var itemIDs []uuid.UUID
	seen := make(map[uuid.UUID]struct{})

	for i, item := range req.Items {
		schemaItems, err := s.products.GetSchemaRequiredItems(ctx, item.ProductID, item.Schemas)
		if err != nil {
			s.logger.Error().Err(err).Str("cart_item_id", item.CartItemID).Msg("failed to get schema items")
			return nil, fmt.Errorf("failed to get schema items: %w", err)
		}
		requirements[i] = model.MergeRequiredItems(products[item.ProductID].RequiredItems, schemaItems)
		for _, ri := range requirements[i] {
			if _, ok := seen[ri.ItemID]; !ok {
				seen[ri.ItemID] = struct{}{}
				itemIDs = append(itemIDs, ri.ItemID)
			}
		}
	}

	deposits, err := s.deposits.GetDeposits(ctx, itemIDs)
	if err != nil {
		s.logger.Error().Err(err).Int("item_count", len(itemIDs)).Msg("failed to get deposits")
		return nil, fmt.Errorf("failed to get deposits: %w", err)
	}
	ledger := availability.NewLedger(deposits)
	tracker := purchaselimit.NewTracker(s.orders, user)

	lines := make([]discount.Line, 0, len(req.Items))
	for i, item := range req.Items {
		product := products[item.ProductID]

		quantity, err := tracker.Take(ctx, product, item.Quantity)
		if err != nil {
			s.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to check purchase limit")
			return nil, err
		}
		if quantity == 0 {
			s.logger.Debug().
				Str("cart_item_id", item.CartItemID).
				Str("product_id", product.ID.String()).
				Msg("purchase limit reached, line dropped")
			continue
		}
		if quantity < item.Quantity {
			s.logger.Debug().
				Str("cart_item_id", item.CartItemID).
				Int("requested", item.Quantity).
				Int("granted", quantity).
				Msg("quantity truncated to purchase limit")
		}

		shipping, ok := ledger.Reserve(requirements[i], quantity)
		if !ok {
			tracker.Release(product, quantity)
			s.logger.Debug().
				Str("cart_item_id", item.CartItemID).
				Str("product_id", product.ID.String()).
				Int("quantity", quantity).
				Msg("insufficient stock, line dropped")
			continue
		}

		lines = append(lines, discount.Line{
			CartItemID: item.CartItemID,
			Product:    product,
			Quantity:   quantity,
			Price:      prices[product.ID],
			Shipping:   shipping,
		})
	}
	return lines, nil
}

// collectDiscounts gathers every active sale plus the coupons matching codes.
// Unknown codes are ignored. The returned codes are trimmed and distinct.
func (s *cartService) collectDiscounts(ctx context.Context, coupons []string) ([]model.Discount, []string, error) {
	var discounts []model.Discount
	for _, target := range model.TargetTypes {
		sales, err := s.catalog.ListActiveDiscounts(ctx, target)
		if err != nil {
			s.logger.Error().Err(err).Str("target_type", string(target)).Msg("failed to list sales")
			return nil, nil, fmt.Errorf("failed to list sales: %w", err)
		}
		discounts = append(discounts, sales...)
	}

	codes := make([]string, 0, len(coupons))
	seen := make(map[string]struct{}, len(coupons))
	for _, raw := range coupons {
		code := strings.TrimSpace(raw)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)

		coupon, err := s.catalog.FindCouponByCode(ctx, code)
		if err != nil {
			s.logger.Error().Err(err).Str("coupon_code", code).Msg("failed to find coupon")
			return nil, nil, fmt.Errorf("failed to find coupon: %w", err)
		}
		if coupon == nil {
			s.logger.Debug().Str("coupon_code", code).Msg("unknown coupon ignored")
			continue
		}
		discounts = append(discounts, *coupon)
	}

	return discounts, codes, nil
}

// shippingQuote charges each chosen method that has a line to carry.
func shippingQuote(methods shippingMethods, lines []discount.Line, currency string) discount.ShippingQuote {
	var physical, digital bool
	for _, line := range lines {
		if line.Product.Digital {
			digital = true
		} else {
			physical = true
		}
	}

	return func(cartTotal int64) int64 {
		var price int64
		if physical && methods.physical != nil {
			price += methods.physical.PriceFor(cartTotal, currency)
		}
		if digital && methods.digital != nil {
			price += methods.digital.PriceFor(cartTotal, currency)
		}
		return price
	}
}

func lineProducts(lines []discount.Line) []*model.Product {
	products := make([]*model.Product, 0, len(lines))
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.Product.ID]; ok {
			continue
		}
		seen[line.Product.ID] = struct{}{}
		products = append(products, line.Product)
	}
	return products
}

func assemble(r *discount.Result, currency string) *model.CartResult {
	result := &model.CartResult{
		Currency:             currency,
		CartTotalInitial:     model.NewMoney(r.CartTotalInitial, currency),
		CartTotal:            model.NewMoney(r.CartTotal, currency),
		ShippingPriceInitial: model.NewMoney(r.ShippingInitial, currency),
		ShippingPrice:        model.NewMoney(r.Shipping, currency),
		Summary:              model.NewMoney(r.Summary(), currency),
		Coupons:              append([]model.AppliedDiscount{}, r.Coupons...),
		Sales:                append([]model.AppliedDiscount{}, r.Sales...),
		Items:                make([]model.CartItemResult, 0, len(r.Lines)),
	}

	shipping := make([]model.Availability, 0, len(r.Lines))
	for _, line := range r.Lines {
		result.Items = append(result.Items, model.CartItemResult{
			CartItemID:      line.CartItemID,
			ProductID:       line.Product.ID,
			Quantity:        line.Quantity,
			Price:           model.NewMoney(line.Price, currency),
			PriceDiscounted: model.NewMoney(line.Discounted, currency),
			Discounts:       append([]model.LineDiscount{}, line.Discounts...),
			ShippingTime:    line.Shipping.ShippingTime,
			ShippingDate:    line.Shipping.ShippingDate,
		})
		shipping = append(shipping, line.Shipping)
	}
	result.ShippingTime, result.ShippingDate = availability.Slowest(shipping)

	return result
}
