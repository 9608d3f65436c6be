// Package purchaselimit enforces per-user purchase limits on cart lines.
package purchaselimit

import (
	"context"
	"fmt"

	"kart-pricing/internal/model"

	"github.com/google/uuid"
)

// OrderHistory reports how many units of a product a user has already bought
// in paid, non-cancelled orders.
type OrderHistory interface {
	GetPaidUnits(ctx context.Context, userID, productID uuid.UUID) (int, error)
}

// Tracker keeps the remaining allowance of each limited product for one request.
// Several lines of the same product draw from the same allowance.
type Tracker struct {
	history OrderHistory
	user    *model.User
	left    map[uuid.UUID]int
}

// NewTracker creates a tracker for a single cart request. A nil user has no
// purchase history.
func NewTracker(history OrderHistory, user *model.User) *Tracker {
	return &Tracker{
		history: history,
		user:    user,
		left:    make(map[uuid.UUID]int),
	}
}

// Remaining returns how many more units the user may buy. limited is false
// when the product has no purchase limit.
func (t *Tracker) Remaining(ctx context.Context, product *model.Product) (remaining int, limited bool, err error) {
	if product.PurchaseLimitPerUser == nil {
		return 0, false, nil
	}

	if left, ok := t.left[product.ID]; ok {
		return left, true, nil
	}

	bought := 0
	if t.user != nil {
		bought, err = t.history.GetPaidUnits(ctx, t.user.ID, product.ID)
		if err != nil {
			return 0, true, fmt.Errorf("failed to get purchased units: %w", err)
		}
	}

	left := max(0, *product.PurchaseLimitPerUser-bought)
	t.left[product.ID] = left
	return left, true, nil
}

// Take grants up to requested units and records them against the allowance.
// Zero means the line must be dropped.
func (t *Tracker) Take(ctx context.Context, product *model.Product, requested int) (int, error) {
	remaining, limited, err := t.Remaining(ctx, product)
	if err != nil {
		return 0, err
	}
	if !limited {
		return requested, nil
	}

	granted := min(requested, remaining)
	t.left[product.ID] = remaining - granted
	return granted, nil
}

// Release hands granted units back to the allowance, for a line that was
// dropped after Take.
func (t *Tracker) Release(product *model.Product, units int) {
	if product.PurchaseLimitPerUser == nil || units <= 0 {
		return
	}
	if left, ok := t.left[product.ID]; ok {
		t.left[product.ID] = left + units
	}
}
