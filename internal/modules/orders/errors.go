package orders

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrReasonRequired    = errors.New("cancellation reason required")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrStatusConflict    = errors.New("order status changed concurrently")
	ErrNotFound          = errors.New("order not found")
)

// ProductError marks a line item whose product or variant could not be
// resolved against the catalog.
type ProductError struct {
	ProductID string
	Variant   bool // true: (size, color) eşleşmedi
}

func (e *ProductError) Error() string {
	if e.Variant {
		return fmt.Sprintf("variant not found for product %s", e.ProductID)
	}
	return fmt.Sprintf("product not found or inactive: %s", e.ProductID)
}

// AddressError carries per-field validation failures for the shipping or
// billing address.
type AddressError struct {
	Fields map[string]string
}

func (e *AddressError) Error() string { return "invalid address" }
