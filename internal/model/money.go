package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var hundred = decimal.NewFromInt(100)

// Money is an amount in the currency's minor unit.
type Money struct {
	Amount   int64  `json:"-"`
	Currency string `json:"-"`
}

// NewMoney creates a Money value from a minor-unit amount.
func NewMoney(amount int64, currencyCode string) Money {
	return Money{Amount: amount, Currency: strings.ToUpper(currencyCode)}
}

// ScaleOf returns the number of minor-unit digits for an ISO 4217 currency code.
func ScaleOf(currencyCode string) (int32, error) {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return 0, ErrInvalidCurrency
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale), nil
}

// ParseMoney parses a decimal string ("49.99") into minor units.
// Values with more precision than the currency allows are rejected.
func ParseMoney(value, currencyCode string) (Money, error) {
	scale, err := ScaleOf(currencyCode)
	if err != nil {
		return Money{}, err
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", value, err)
	}

	minor := d.Shift(scale)
	if !minor.Equal(minor.Truncate(0)) {
		return Money{}, fmt.Errorf("amount %q exceeds %s precision", value, currencyCode)
	}

	return NewMoney(minor.IntPart(), currencyCode), nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	scale, err := ScaleOf(m.Currency)
	if err != nil {
		scale = 2
	}
	return decimal.New(m.Amount, -scale)
}

// String formats the amount with the currency's fixed precision, e.g. "4600.00".
func (m Money) String() string {
	scale, err := ScaleOf(m.Currency)
	if err != nil {
		scale = 2
	}
	return decimal.New(m.Amount, -scale).StringFixed(scale)
}

// MarshalJSON encodes the amount as a fixed-precision decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// Percent returns pct percent of amount, rounded half-up to the minor unit.
func Percent(amount int64, pct decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(pct).Div(hundred).Round(0).IntPart()
}

// NetOf removes VAT from a gross minor-unit amount, rounded half-up.
func NetOf(gross int64, vatRate decimal.Decimal) int64 {
	if vatRate.IsZero() {
		return gross
	}
	return decimal.NewFromInt(gross).Mul(hundred).Div(hundred.Add(vatRate)).Round(0).IntPart()
}
