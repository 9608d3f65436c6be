package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType selects how a discount's value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountAmount     DiscountType = "amount"
)

// TargetType is what a discount reduces.
type TargetType string

const (
	TargetOrderValue      TargetType = "order-value"
	TargetShippingPrice   TargetType = "shipping-price"
	TargetProducts        TargetType = "products"
	TargetCheapestProduct TargetType = "cheapest-product"
)

// TargetTypes lists every target type in application-bucket order.
var TargetTypes = []TargetType{
	TargetProducts,
	TargetCheapestProduct,
	TargetOrderValue,
	TargetShippingPrice,
}

// Valid reports whether t is a known target type.
func (t TargetType) Valid() bool {
	switch t {
	case TargetOrderValue, TargetShippingPrice, TargetProducts, TargetCheapestProduct:
		return true
	}
	return false
}

// Discount is a sale (no code) or a coupon (unique code).
type Discount struct {
	ID                uuid.UUID
	Name              string
	Code              *string
	Type              DiscountType
	Percentage        decimal.Decimal  // used when Type is DiscountPercentage
	Amounts           map[string]int64 // minor units per currency, used when Type is DiscountAmount
	TargetType        TargetType
	TargetIsAllowList bool
	Priority          int
	Active            bool
	Products          []uuid.UUID
	ProductSets       []uuid.UUID
	ShippingMethods   []uuid.UUID
	ConditionGroups   []ConditionGroup
	CreatedAt         time.Time
}

// IsCoupon reports whether the discount is applied by code.
func (d *Discount) IsCoupon() bool {
	return d.Code != nil
}

// Targets reports whether the product is reached by the discount's allow/block list.
func (d *Discount) Targets(p *Product) bool {
	member := p.InSets(d.ProductSets)
	if !member {
		for _, id := range d.Products {
			if id == p.ID {
				member = true
				break
			}
		}
	}
	return member == d.TargetIsAllowList
}

// TargetsShipping reports whether the shipping method is reached by the allow/block list.
func (d *Discount) TargetsShipping(methodID uuid.UUID) bool {
	member := false
	for _, id := range d.ShippingMethods {
		if id == methodID {
			member = true
			break
		}
	}
	return member == d.TargetIsAllowList
}

// ConditionGroup passes when all of its conditions pass.
type ConditionGroup struct {
	Conditions []Condition
}
