package service

import (
	"context"

	"kart-pricing/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetPrices(ctx context.Context, productIDs []uuid.UUID, salesChannelID uuid.UUID, currency string) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx, productIDs, salesChannelID, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int64), args.Error(1)
}

func (m *MockProductRepository) GetSchemaRequiredItems(ctx context.Context, productID uuid.UUID, selections map[uuid.UUID]uuid.UUID) ([]model.RequiredItem, error) {
	args := m.Called(ctx, productID, selections)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RequiredItem), args.Error(1)
}

func (m *MockProductRepository) ListRequiringItem(ctx context.Context, itemID uuid.UUID) ([]model.Product, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

// MockDepositRepository is a mock implementation of DepositRepository.
type MockDepositRepository struct {
	mock.Mock
}

func (m *MockDepositRepository) GetDeposits(ctx context.Context, itemIDs []uuid.UUID) ([]model.Deposit, error) {
	args := m.Called(ctx, itemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Deposit), args.Error(1)
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetPaidUnits(ctx context.Context, userID, productID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID, productID)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderRepository) UsageCount(ctx context.Context, discountID uuid.UUID, userID *uuid.UUID) (int, error) {
	args := m.Called(ctx, discountID, userID)
	return args.Int(0), args.Error(1)
}

// MockShippingRepository is a mock implementation of ShippingRepository.
type MockShippingRepository struct {
	mock.Mock
}

func (m *MockShippingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ShippingMethod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShippingMethod), args.Error(1)
}

// MockSalesChannelRepository is a mock implementation of SalesChannelRepository.
type MockSalesChannelRepository struct {
	mock.Mock
}

func (m *MockSalesChannelRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SalesChannel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SalesChannel), args.Error(1)
}

// MockAvailabilityRepository is a mock implementation of AvailabilityRepository.
type MockAvailabilityRepository struct {
	mock.Mock
}

func (m *MockAvailabilityRepository) Replace(ctx context.Context, productID uuid.UUID, rows []model.Availability) error {
	args := m.Called(ctx, productID, rows)
	return args.Error(0)
}

func (m *MockAvailabilityRepository) GetByProductID(ctx context.Context, productID uuid.UUID) ([]model.Availability, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Availability), args.Error(1)
}

// MockCatalog is a mock implementation of catalog.Catalog.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) ListActiveDiscounts(ctx context.Context, target model.TargetType) ([]model.Discount, error) {
	args := m.Called(ctx, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Discount), args.Error(1)
}

func (m *MockCatalog) FindCouponByCode(ctx context.Context, code string) (*model.Discount, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Discount), args.Error(1)
}
