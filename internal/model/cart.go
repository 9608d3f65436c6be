package model

import (
	"time"

	"github.com/google/uuid"
)

// CartRequest is the input of a cart price preview.
type CartRequest struct {
	Currency                string            `json:"currency"`
	SalesChannelID          uuid.UUID         `json:"salesChannelId"`
	ShippingMethodID        *uuid.UUID        `json:"shippingMethodId,omitempty"`
	DigitalShippingMethodID *uuid.UUID        `json:"digitalShippingMethodId,omitempty"`
	Items                   []CartItemRequest `json:"items"`
	Coupons                 []string          `json:"coupons"`
}

// CartItemRequest is a single requested cart line.
type CartItemRequest struct {
	CartItemID string                  `json:"cartitemId"`
	ProductID  uuid.UUID               `json:"productId"`
	Quantity   int                     `json:"quantity"`
	Schemas    map[uuid.UUID]uuid.UUID `json:"schemas,omitempty"` // schema id -> selected option id
}

// CartResult is the priced breakdown of a cart.
type CartResult struct {
	Currency             string            `json:"currency"`
	CartTotalInitial     Money             `json:"cartTotalInitial"`
	CartTotal            Money             `json:"cartTotal"`
	ShippingPriceInitial Money             `json:"shippingPriceInitial"`
	ShippingPrice        Money             `json:"shippingPrice"`
	Summary              Money             `json:"summary"`
	Coupons              []AppliedDiscount `json:"coupons"`
	Sales                []AppliedDiscount `json:"sales"`
	Items                []CartItemResult  `json:"items"`
	ShippingTime         *int              `json:"shippingTime"`
	ShippingDate         *time.Time        `json:"shippingDate"`
}

// CartItemResult is a priced cart line. Price and PriceDiscounted are per unit.
type CartItemResult struct {
	CartItemID      string         `json:"cartitemId"`
	ProductID       uuid.UUID      `json:"productId"`
	Quantity        int            `json:"quantity"`
	Price           Money          `json:"price"`
	PriceDiscounted Money          `json:"priceDiscounted"`
	Discounts       []LineDiscount `json:"discounts"`
	ShippingTime    *int           `json:"shippingTime"`
	ShippingDate    *time.Time     `json:"shippingDate"`
}

// LineDiscount is the per-unit reduction a discount made on a cart line.
type LineDiscount struct {
	DiscountID uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Code       *string   `json:"code,omitempty"`
	Value      Money     `json:"value"`
}

// AppliedDiscount is a sale or coupon with the total amount it actually took off.
type AppliedDiscount struct {
	ID         uuid.UUID    `json:"id"`
	Name       string       `json:"name"`
	Code       *string      `json:"code,omitempty"`
	Type       DiscountType `json:"type"`
	TargetType TargetType   `json:"targetType"`
	Value      Money        `json:"value"`
}
