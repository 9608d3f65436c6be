package model

import (
	"sort"

	"github.com/google/uuid"
)

// ShippingMethod is a physical or digital delivery option with a price table.
type ShippingMethod struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Digital     bool         `json:"digital" db:"digital"`
	PriceRanges []PriceRange `json:"priceRanges"`
}

// PriceRange charges Value for cart totals from Start upwards, until the next range.
type PriceRange struct {
	Currency string `json:"currency" db:"currency"`
	Start    int64  `json:"start" db:"start"`
	Value    int64  `json:"value" db:"value"`
}

// PriceFor returns the shipping price for a running cart total in the given currency.
// The range with the greatest Start not above total wins; no match means free shipping.
func (m *ShippingMethod) PriceFor(total int64, currencyCode string) int64 {
	ranges := make([]PriceRange, 0, len(m.PriceRanges))
	for _, r := range m.PriceRanges {
		if r.Currency == currencyCode {
			ranges = append(ranges, r)
		}
	}
	sort.Slice(ranges, func(i, j int) bool {
		return ranges[i].Start < ranges[j].Start
	})

	var price int64
	for _, r := range ranges {
		if r.Start > total {
			break
		}
		price = r.Value
	}
	return price
}
