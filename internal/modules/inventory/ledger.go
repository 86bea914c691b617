package inventory

import (
	"context"
	"fmt"
)

// ItemRef identifies one stock pool: a product variant, or the product's
// implicit pool when VariantID is empty (ürünün varyantı yoksa).
type ItemRef struct {
	ProductID string
	VariantID string
}

func (r ItemRef) String() string {
	if r.VariantID != "" {
		return "variant:" + r.VariantID
	}
	return "product:" + r.ProductID
}

// Ledger is the only writer of stock counters. TryDecrement is a single
// atomic check-and-update: it succeeds only if the resulting stock stays
// non-negative. Increment always succeeds (restorations never block).
type Ledger interface {
	TryDecrement(ctx context.Context, ref ItemRef, qty int) error
	Increment(ctx context.Context, ref ItemRef, qty int) error
}

type InsufficientStockError struct {
	Ref       ItemRef
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: %s requested=%d", e.Ref, e.Requested)
}
