package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRepository_GetPaidUnits(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	user, other := uuid.New(), uuid.New()
	product := uuid.New()

	addLine := func(orderID uuid.UUID, productID uuid.UUID, quantity int) {
		exec(t, pool, `INSERT INTO order_products (id, order_id, product_id, quantity) VALUES ($1, $2, $3, $4)`,
			uuid.New(), orderID, productID, quantity)
	}

	paid := seedOrder(t, pool, &user, true, false)
	addLine(paid, product, 2)
	addLine(paid, uuid.New(), 7)
	addLine(seedOrder(t, pool, &user, true, false), product, 1)
	addLine(seedOrder(t, pool, &user, false, false), product, 5)
	addLine(seedOrder(t, pool, &user, true, true), product, 5)
	addLine(seedOrder(t, pool, &other, true, false), product, 9)

	tests := []struct {
		name     string
		user     uuid.UUID
		product  uuid.UUID
		expected int
	}{
		{name: "Paid and not cancelled only", user: user, product: product, expected: 3},
		{name: "Other user's orders", user: other, product: product, expected: 9},
		{name: "No orders", user: uuid.New(), product: product, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units, err := repo.GetPaidUnits(ctx, tt.user, tt.product)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, units)
		})
	}
}

func TestOrderRepository_UsageCount(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	user := uuid.New()
	discount := uuid.New()

	use := func(orderID uuid.UUID, discountID uuid.UUID) {
		exec(t, pool, `INSERT INTO order_discounts (order_id, discount_id) VALUES ($1, $2)`, orderID, discountID)
	}

	use(seedOrder(t, pool, &user, true, false), discount)
	use(seedOrder(t, pool, &user, false, false), discount)
	use(seedOrder(t, pool, nil, true, false), discount)
	use(seedOrder(t, pool, &user, true, false), uuid.New())

	t.Run("All users", func(t *testing.T) {
		count, err := repo.UsageCount(ctx, discount, nil)

		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("Single user", func(t *testing.T) {
		count, err := repo.UsageCount(ctx, discount, &user)

		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("Unused discount", func(t *testing.T) {
		count, err := repo.UsageCount(ctx, uuid.New(), &user)

		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
