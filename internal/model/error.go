package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON            = "INVALID_JSON"
	ErrCodeInvalidID              = "INVALID_ID"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeMethodNotAllowed       = "METHOD_NOT_ALLOWED"
	ErrCodeMissingField           = "MISSING_FIELD"
	ErrCodeInvalidCurrency        = "INVALID_CURRENCY"
	ErrCodeProductNotFound        = "PRODUCT_NOT_FOUND"
	ErrCodePriceNotFound          = "PRICE_NOT_FOUND"
	ErrCodeInvalidQuantity        = "INVALID_QUANTITY"
	ErrCodeSalesChannelNotFound   = "SALES_CHANNEL_NOT_FOUND"
	ErrCodeShippingMethodNotFound = "SHIPPING_METHOD_NOT_FOUND"
	ErrCodeShippingTypeMismatch   = "SHIPPING_TYPE_MISMATCH"
	ErrCodeUnauthorised           = "UNAUTHORIZED"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeInternalError          = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidCurrency        = NewDomainError(ErrCodeInvalidCurrency, "Currency must be a valid ISO 4217 code")
	ErrProductNotFound        = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrPriceNotFound          = NewDomainError(ErrCodePriceNotFound, "Product has no price in the requested currency and sales channel")
	ErrInvalidQuantity        = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrSalesChannelNotFound   = NewDomainError(ErrCodeSalesChannelNotFound, "Sales channel not found")
	ErrShippingMethodNotFound = NewDomainError(ErrCodeShippingMethodNotFound, "Shipping method not found")
	ErrShippingTypeMismatch   = NewDomainError(ErrCodeShippingTypeMismatch, "Shipping method does not match the product shipping type")
)

// ErrInvariantViolation marks internal pricing bugs, never user errors.
var ErrInvariantViolation = errors.New("pricing invariant violated")

// InvariantError wraps ErrInvariantViolation with details.
func InvariantError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}
