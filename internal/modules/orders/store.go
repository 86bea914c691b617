package orders

import (
	"context"
	"time"
)

// ListParams filters an owner's order history. Email is matched against
// guest orders so a registered customer also sees purchases made as a guest
// with the same address.
type ListParams struct {
	UserID   string
	Email    string
	Status   string
	Page     int
	PageSize int
}

type ListResult struct {
	Items []Order
	Total int64
}

// TransitionUpdate is the column set ApplyTransition writes under the
// optimistic "current status" guard.
type TransitionUpdate struct {
	OrderStatus    *OrderStatus
	PaymentStatus  *PaymentStatus
	TrackingNumber *string
	AdminNote      *string

	CancelReason *string
	CancelledBy  *string
	CancelledAt  *time.Time
}

// Store persists the order aggregate. The lifecycle engine is its only
// writer; read-side components (analytics) query the tables directly.
type Store interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (Order, error)
	GetByNumber(ctx context.Context, number string) (Order, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	ListByOwner(ctx context.Context, in ListParams) (ListResult, error)

	// ApplyTransition atomically updates the order only if its order_status
	// still equals from; returns false when another writer got there first.
	ApplyTransition(ctx context.Context, orderID string, from OrderStatus, upd TransitionUpdate, ev OrderEvent) (bool, error)

	// MarkStockRestored sets stock_restored_at once; returns true only for
	// the caller that performed the first (and only) restoration.
	MarkStockRestored(ctx context.Context, orderID string, at time.Time) (bool, error)
}
