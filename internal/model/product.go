package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a sellable product and the inventory it consumes.
type Product struct {
	ID                   uuid.UUID      `json:"id" db:"id"`
	Name                 string         `json:"name" db:"name"`
	Digital              bool           `json:"shippingDigital" db:"shipping_digital"`
	PurchaseLimitPerUser *int           `json:"purchaseLimitPerUser" db:"purchase_limit_per_user"`
	SetIDs               []uuid.UUID    `json:"setIds"`
	RequiredItems        []RequiredItem `json:"requiredItems"`
	CreatedAt            time.Time      `json:"createdAt" db:"created_at"`
}

// InSets reports whether the product belongs to any of the given sets.
func (p *Product) InSets(sets []uuid.UUID) bool {
	for _, s := range sets {
		for _, own := range p.SetIDs {
			if own == s {
				return true
			}
		}
	}
	return false
}

// RequiredItem is the number of item units one unit of a product consumes.
type RequiredItem struct {
	ItemID           uuid.UUID `json:"itemId" db:"item_id"`
	RequiredQuantity int       `json:"requiredQuantity" db:"required_quantity"`
}

// MergeRequiredItems sums required quantities per item, keeping first-seen order.
func MergeRequiredItems(groups ...[]RequiredItem) []RequiredItem {
	index := make(map[uuid.UUID]int)
	var merged []RequiredItem
	for _, group := range groups {
		for _, ri := range group {
			if i, ok := index[ri.ItemID]; ok {
				merged[i].RequiredQuantity += ri.RequiredQuantity
				continue
			}
			index[ri.ItemID] = len(merged)
			merged = append(merged, ri)
		}
	}
	return merged
}

// Deposit is a stock ledger entry for an item.
// When both ShippingTime and ShippingDate are set, the date wins.
type Deposit struct {
	ItemID       uuid.UUID  `json:"itemId" db:"item_id"`
	Quantity     int        `json:"quantity" db:"quantity"`
	ShippingTime *int       `json:"shippingTime,omitempty" db:"shipping_time"`
	ShippingDate *time.Time `json:"shippingDate,omitempty" db:"shipping_date"`
}

// Availability is a bucket of units that become sellable at a given lead time.
type Availability struct {
	Quantity     int        `json:"quantity"`
	ShippingTime *int       `json:"shippingTime"`
	ShippingDate *time.Time `json:"shippingDate"`
}

// SalesChannel determines price lists and the VAT rate applied to prices.
type SalesChannel struct {
	ID      uuid.UUID       `json:"id" db:"id"`
	Name    string          `json:"name" db:"name"`
	VatRate decimal.Decimal `json:"vatRate" db:"vat_rate"`
}

// User is the authenticated caller as seen by the pricing engine.
type User struct {
	ID      uuid.UUID   `json:"id"`
	RoleIDs []uuid.UUID `json:"roleIds"`
}

// ProductAvailability is the sellable stock of a product split by lead time.
// Unlimited products consume no items and have no rows.
type ProductAvailability struct {
	ProductID    uuid.UUID      `json:"productId"`
	Quantity     int            `json:"quantity"`
	Unlimited    bool           `json:"unlimited"`
	Availability []Availability `json:"availability"`
}
