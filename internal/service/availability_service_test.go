package service

import (
	"context"
	"errors"
	"testing"

	"kart-pricing/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityService_GetProductAvailability(t *testing.T) {
	ctx := context.Background()
	wood := uuid.New()
	one, two := 1, 2

	chair := model.Product{ID: uuid.New(), RequiredItems: []model.RequiredItem{{ItemID: wood, RequiredQuantity: 2}}}
	ebook := model.Product{ID: uuid.New(), Digital: true}

	tests := []struct {
		name      string
		productID uuid.UUID
		setup     func(products *MockProductRepository, deposits *MockDepositRepository, cache *MockAvailabilityRepository)
		want      *model.ProductAvailability
	}{
		{
			name:      "Rows from deposits",
			productID: chair.ID,
			setup: func(products *MockProductRepository, deposits *MockDepositRepository, cache *MockAvailabilityRepository) {
				products.On("GetByIDs", ctx, []uuid.UUID{chair.ID}).Return([]model.Product{chair}, nil)
				cache.On("GetByProductID", ctx, chair.ID).Return([]model.Availability{}, nil)
				deposits.On("GetDeposits", ctx, []uuid.UUID{wood}).Return([]model.Deposit{
					{ItemID: wood, Quantity: 4, ShippingTime: &one},
					{ItemID: wood, Quantity: 3, ShippingTime: &two},
				}, nil)
			},
			want: &model.ProductAvailability{
				ProductID: chair.ID,
				Quantity:  3,
				Availability: []model.Availability{
					{Quantity: 2, ShippingTime: &one},
					{Quantity: 1, ShippingTime: &two},
				},
			},
		},
		{
			name:      "No stock",
			productID: chair.ID,
			setup: func(products *MockProductRepository, deposits *MockDepositRepository, cache *MockAvailabilityRepository) {
				products.On("GetByIDs", ctx, []uuid.UUID{chair.ID}).Return([]model.Product{chair}, nil)
				cache.On("GetByProductID", ctx, chair.ID).Return(nil, nil)
				deposits.On("GetDeposits", ctx, []uuid.UUID{wood}).Return([]model.Deposit{}, nil)
			},
			want: &model.ProductAvailability{ProductID: chair.ID, Availability: []model.Availability{}},
		},
		{
			name:      "Rows from cache",
			productID: chair.ID,
			setup: func(products *MockProductRepository, _ *MockDepositRepository, cache *MockAvailabilityRepository) {
				products.On("GetByIDs", ctx, []uuid.UUID{chair.ID}).Return([]model.Product{chair}, nil)
				cache.On("GetByProductID", ctx, chair.ID).Return([]model.Availability{
					{Quantity: 5, ShippingTime: &one},
					{Quantity: 2, ShippingTime: &two},
				}, nil)
			},
			want: &model.ProductAvailability{
				ProductID: chair.ID,
				Quantity:  7,
				Availability: []model.Availability{
					{Quantity: 5, ShippingTime: &one},
					{Quantity: 2, ShippingTime: &two},
				},
			},
		},
		{
			name:      "Cache read failure falls back to deposits",
			productID: chair.ID,
			setup: func(products *MockProductRepository, deposits *MockDepositRepository, cache *MockAvailabilityRepository) {
				products.On("GetByIDs", ctx, []uuid.UUID{chair.ID}).Return([]model.Product{chair}, nil)
				cache.On("GetByProductID", ctx, chair.ID).Return(nil, errors.New("connection reset"))
				deposits.On("GetDeposits", ctx, []uuid.UUID{wood}).Return([]model.Deposit{
					{ItemID: wood, Quantity: 2, ShippingTime: &one},
				}, nil)
			},
			want: &model.ProductAvailability{
				ProductID:    chair.ID,
				Quantity:     1,
				Availability: []model.Availability{{Quantity: 1, ShippingTime: &one}},
			},
		},
		{
			name:      "Product without items is unlimited",
			productID: ebook.ID,
			setup: func(products *MockProductRepository, _ *MockDepositRepository, _ *MockAvailabilityRepository) {
				products.On("GetByIDs", ctx, []uuid.UUID{ebook.ID}).Return([]model.Product{ebook}, nil)
			},
			want: &model.ProductAvailability{ProductID: ebook.ID, Unlimited: true, Availability: []model.Availability{}},
		},
		{
			name:      "Unknown product",
			productID: uuid.Nil,
			setup: func(products *MockProductRepository, _ *MockDepositRepository, _ *MockAvailabilityRepository) {
				products.On("GetByIDs", ctx, []uuid.UUID{uuid.Nil}).Return([]model.Product{}, nil)
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := new(MockProductRepository)
			deposits := new(MockDepositRepository)
			cache := new(MockAvailabilityRepository)
			tt.setup(products, deposits, cache)
			svc := NewAvailabilityService(products, deposits, cache, zerolog.Nop())

			got, err := svc.GetProductAvailability(ctx, tt.productID)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			products.AssertExpectations(t)
			deposits.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestAvailabilityService_RefreshItem(t *testing.T) {
	ctx := context.Background()
	item := uuid.New()
	one, two := 1, 2
	product := model.Product{ID: uuid.New(), RequiredItems: []model.RequiredItem{{ItemID: item, RequiredQuantity: 1}}}

	products := new(MockProductRepository)
	deposits := new(MockDepositRepository)
	cache := new(MockAvailabilityRepository)

	products.On("ListRequiringItem", ctx, item).Return([]model.Product{product}, nil)
	// A faster deposit arriving after a slower one becomes its own row.
	deposits.On("GetDeposits", ctx, []uuid.UUID{item}).Return([]model.Deposit{
		{ItemID: item, Quantity: 10, ShippingTime: &two},
		{ItemID: item, Quantity: 16, ShippingTime: &one},
	}, nil)
	cache.On("Replace", ctx, product.ID, []model.Availability{
		{Quantity: 16, ShippingTime: &one},
		{Quantity: 10, ShippingTime: &two},
	}).Return(nil)

	svc := NewAvailabilityService(products, deposits, cache, zerolog.Nop())

	err := svc.RefreshItem(ctx, item)

	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestAvailabilityService_RefreshItem_NoProducts(t *testing.T) {
	ctx := context.Background()
	item := uuid.New()

	products := new(MockProductRepository)
	deposits := new(MockDepositRepository)
	cache := new(MockAvailabilityRepository)
	products.On("ListRequiringItem", ctx, item).Return([]model.Product{}, nil)

	svc := NewAvailabilityService(products, deposits, cache, zerolog.Nop())

	require.NoError(t, svc.RefreshItem(ctx, item))
	deposits.AssertNotCalled(t, "GetDeposits", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
}

func TestAvailabilityService_RefreshItem_StoreError(t *testing.T) {
	ctx := context.Background()
	item := uuid.New()
	product := model.Product{ID: uuid.New(), RequiredItems: []model.RequiredItem{{ItemID: item, RequiredQuantity: 1}}}

	products := new(MockProductRepository)
	deposits := new(MockDepositRepository)
	cache := new(MockAvailabilityRepository)
	products.On("ListRequiringItem", ctx, item).Return([]model.Product{product}, nil)
	deposits.On("GetDeposits", ctx, []uuid.UUID{item}).Return([]model.Deposit{{ItemID: item, Quantity: 1}}, nil)
	cache.On("Replace", ctx, product.ID, mock.Anything).Return(errors.New("deadlock detected"))

	svc := NewAvailabilityService(products, deposits, cache, zerolog.Nop())

	err := svc.RefreshItem(ctx, item)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store availability")
}
