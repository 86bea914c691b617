package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/catalog"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/inventory"
)

// Notifier is the fire-and-forget notification collaborator. Implementations
// must never fail the calling operation; errors are logged inside.
type Notifier interface {
	OrderPlaced(ctx context.Context, o Order)
	OrderStatusChanged(ctx context.Context, o Order, from OrderStatus)
}

// PricingPolicy computes the persisted monetary fields at creation time.
type PricingPolicy struct {
	Currency              string
	FlatShippingCents     int
	FreeShippingOverCents int
}

// ShippingCents: eşik üzeri kargo bedava, altı sabit ücret.
func (p PricingPolicy) ShippingCents(subtotalCents int) int {
	if p.FreeShippingOverCents > 0 && subtotalCents >= p.FreeShippingOverCents {
		return 0
	}
	return p.FlatShippingCents
}

type Service struct {
	store   Store
	catalog catalog.Repository
	ledger  inventory.Ledger
	pricing PricingPolicy
	notify  Notifier
	logger  *slog.Logger
}

func NewService(store Store, cat catalog.Repository, ledger inventory.Ledger, pricing PricingPolicy, notify Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, catalog: cat, ledger: ledger, pricing: pricing, notify: notify, logger: logger}
}

type CreateItemInput struct {
	ProductID string
	Quantity  int
	Size      string
	Color     string
}

type CreateInput struct {
	Items           []CreateItemInput
	ShippingAddress Address
	BillingAddress  *Address
	PaymentMethod   PaymentMethod
	CustomerNote    string

	// UserID nil ise sipariş misafir siparişidir; e-posta adresten alınır.
	UserID *string

	// Upstream'den gelirse geçilir, yoksa sıfır.
	TaxCents      int
	DiscountCents int
}

// stockLine is one aggregated decrement against a single pool.
type stockLine struct {
	ref inventory.ItemRef
	qty int
}

// CreateOrder validates the submission, reserves stock atomically across all
// line items (all-or-nothing with compensating rollback), snapshots prices
// and persists the order. See the package tests for the exact guarantees.
func (s *Service) CreateOrder(ctx context.Context, in CreateInput) (Order, error) {
	// 1) sepet boş mu
	if len(in.Items) == 0 {
		return Order{}, ErrEmptyCart
	}
	if !ValidPaymentMethod(in.PaymentMethod) || in.PaymentMethod == PaymentCard {
		return Order{}, &AddressError{Fields: map[string]string{"payment_method": "Geçersiz ödeme yöntemi."}}
	}

	// 2+3) ürünler mevcut ve aktif mi, varyant çözülüyor mu, stok yeter mi
	items, plan, subtotal, err := s.resolveItems(ctx, in.Items)
	if err != nil {
		return Order{}, err
	}

	// 4) adres
	if fields := in.ShippingAddress.Validate(); fields != nil {
		return Order{}, &AddressError{Fields: fields}
	}
	if in.BillingAddress != nil {
		if fields := in.BillingAddress.Validate(); fields != nil {
			return Order{}, &AddressError{Fields: fields}
		}
	}

	// stok düşümü: deterministik sıra, hata halinde telafi edici iade
	if err := s.reserve(ctx, plan); err != nil {
		return Order{}, err
	}

	now := time.Now()
	number, err := generateNumber(ctx, s.store, now)
	if err != nil {
		s.release(ctx, plan, "create.numbering")
		return Order{}, err
	}

	owner := ResolveOwner(in.UserID, in.ShippingAddress.Email)

	shipJSON, err := json.Marshal(in.ShippingAddress)
	if err != nil {
		s.release(ctx, plan, "create.marshal")
		return Order{}, err
	}
	var billJSON []byte
	if in.BillingAddress != nil {
		billJSON, err = json.Marshal(in.BillingAddress)
		if err != nil {
			s.release(ctx, plan, "create.marshal")
			return Order{}, err
		}
	}

	shipping := s.pricing.ShippingCents(subtotal)
	tax := in.TaxCents
	discount := in.DiscountCents
	if tax < 0 {
		tax = 0
	}
	if discount < 0 {
		discount = 0
	}

	o := Order{
		ID:          uuid.NewString(),
		OrderNumber: number,
		UserID:      owner.UserID,
		GuestEmail:  owner.GuestEmail,

		OrderStatus:   StatusPending,
		PaymentStatus: PaymentPending,
		PaymentMethod: in.PaymentMethod,

		SubtotalCents: subtotal,
		ShippingCents: shipping,
		TaxCents:      tax,
		DiscountCents: discount,
		TotalCents:    subtotal + shipping + tax - discount,
		Currency:      s.pricing.Currency,

		ShippingAddressJSON: shipJSON,
		BillingAddressJSON:  billJSON,

		CreatedAt: now,
		UpdatedAt: now,
	}
	if n := strings.TrimSpace(in.CustomerNote); n != "" {
		o.CustomerNote = &n
	}
	for i := range items {
		items[i].OrderID = o.ID
		items[i].Currency = o.Currency
		items[i].CreatedAt = now
	}
	o.Items = items

	if err := s.store.Create(ctx, &o); err != nil {
		// sipariş yazılamadıysa rezerve edilen stok geri verilir
		s.release(ctx, plan, "create.persist")
		return Order{}, err
	}

	if s.notify != nil {
		s.notify.OrderPlaced(ctx, o)
	}
	return o, nil
}

// resolveItems loads every product, resolves the variant (or implicit pool),
// snapshots unit prices and aggregates the decrement plan.
func (s *Service) resolveItems(ctx context.Context, in []CreateItemInput) ([]OrderItem, []stockLine, int, error) {
	items := make([]OrderItem, 0, len(in))
	want := make(map[inventory.ItemRef]int, len(in))
	available := make(map[inventory.ItemRef]int, len(in))
	subtotal := 0

	for _, line := range in {
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}

		p, err := s.catalog.Get(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, 0, &ProductError{ProductID: line.ProductID}
			}
			return nil, nil, 0, err
		}
		if p.Status != catalog.StatusActive {
			return nil, nil, 0, &ProductError{ProductID: line.ProductID}
		}

		it := OrderItem{
			ID:          uuid.NewString(),
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    qty,
		}
		ref := inventory.ItemRef{ProductID: p.ID}

		if p.HasVariants() {
			v, ok := p.FindVariant(line.Size, line.Color)
			if !ok {
				return nil, nil, 0, &ProductError{ProductID: line.ProductID, Variant: true}
			}
			vid := v.ID
			it.VariantID = &vid
			it.SKU = v.SKU
			it.Size = v.Size
			it.Color = v.Color
			ref.VariantID = v.ID
			available[ref] = v.Stock
		} else {
			available[ref] = p.Stock
		}

		unit := p.FinalPriceCents()
		it.UnitPriceCents = unit
		it.LineTotalCents = unit * qty
		subtotal += it.LineTotalCents

		want[ref] += qty
		items = append(items, it)
	}

	// ön kontrol: katalog görünümüne göre stok (yetkili kontrol TryDecrement'te)
	for ref, qty := range want {
		if available[ref] < qty {
			return nil, nil, 0, &inventory.InsufficientStockError{Ref: ref, Requested: qty}
		}
	}

	plan := make([]stockLine, 0, len(want))
	for ref, qty := range want {
		plan = append(plan, stockLine{ref: ref, qty: qty})
	}
	sort.Slice(plan, func(i, j int) bool { return plan[i].ref.String() < plan[j].ref.String() })

	return items, plan, subtotal, nil
}

// reserve decrements every pool in the plan; on the first failure it credits
// back what was already taken and returns the failing line's error.
func (s *Service) reserve(ctx context.Context, plan []stockLine) error {
	for i, ln := range plan {
		if err := s.ledger.TryDecrement(ctx, ln.ref, ln.qty); err != nil {
			s.release(ctx, plan[:i], "create.reserve")
			return err
		}
	}
	return nil
}

// release is the compensating rollback. A failed compensation is a
// data-integrity incident: logged for manual reconciliation, never retried.
func (s *Service) release(ctx context.Context, plan []stockLine, cause string) {
	for _, ln := range plan {
		if err := s.ledger.Increment(ctx, ln.ref, ln.qty); err != nil {
			s.logger.Error("order.rollback_failed",
				slog.String("cause", cause),
				slog.String("ref", ln.ref.String()),
				slog.Int("qty", ln.qty),
				slog.Any("err", err),
			)
		}
	}
}

type TransitionInput struct {
	OrderID string
	Actor   string // admin user id, "customer" veya "system"

	OrderStatus    *OrderStatus
	PaymentStatus  *PaymentStatus
	TrackingNumber *string
	AdminNote      *string

	CancelReason *string
	CancelledBy  *string
}

type TransitionResult struct {
	Order Order
	// Warning is a soft finding (ör. takip numarası olmadan shipped).
	Warning string
}

// TransitionStatus drives the state machine. Payment status is independent
// of order status and may change in the same call. First entry into
// cancelled or refunded triggers stock restoration exactly once.
func (s *Service) TransitionStatus(ctx context.Context, in TransitionInput) (TransitionResult, error) {
	o, err := s.store.GetByID(ctx, in.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TransitionResult{}, ErrNotFound
		}
		return TransitionResult{}, err
	}

	if in.OrderStatus == nil && in.PaymentStatus == nil && in.TrackingNumber == nil && in.AdminNote == nil {
		return TransitionResult{Order: o}, nil
	}

	from := o.OrderStatus
	warning := ""

	if in.OrderStatus != nil {
		to := *in.OrderStatus
		if !ValidOrderStatus(to) {
			return TransitionResult{}, ErrInvalidTransition
		}
		if !CanTransition(from, to) {
			return TransitionResult{}, ErrInvalidTransition
		}
		if (to == StatusShipped || to == StatusDelivered) && in.TrackingNumber == nil && o.TrackingNumber == nil {
			warning = "Takip numarası olmadan " + string(to) + " durumuna geçildi."
			s.logger.Warn("order.transition_without_tracking",
				slog.String("order_id", o.ID),
				slog.String("to", string(to)),
			)
		}
	}
	if in.PaymentStatus != nil && !ValidPaymentStatus(*in.PaymentStatus) {
		return TransitionResult{}, ErrInvalidTransition
	}

	now := time.Now()
	upd := TransitionUpdate{
		OrderStatus:    in.OrderStatus,
		PaymentStatus:  in.PaymentStatus,
		TrackingNumber: in.TrackingNumber,
		AdminNote:      in.AdminNote,
	}

	action := "update"
	toStatus := from
	if in.OrderStatus != nil {
		toStatus = *in.OrderStatus
		action = string(toStatus)
		if restoresStock(toStatus) {
			reason := in.CancelReason
			by := in.CancelledBy
			if by == nil {
				b := in.Actor
				by = &b
			}
			at := now
			upd.CancelReason = reason
			upd.CancelledBy = by
			upd.CancelledAt = &at
		}
	}

	ev := OrderEvent{
		ID:         uuid.NewString(),
		OrderID:    o.ID,
		Actor:      in.Actor,
		Action:     action,
		FromStatus: from,
		ToStatus:   toStatus,
		Note:       in.AdminNote,
		CreatedAt:  now,
	}

	applied, err := s.store.ApplyTransition(ctx, o.ID, from, upd, ev)
	if err != nil {
		return TransitionResult{}, err
	}
	if !applied {
		return TransitionResult{}, ErrStatusConflict
	}

	if in.OrderStatus != nil && restoresStock(*in.OrderStatus) {
		s.restoreStock(ctx, o)
	}

	out, err := s.store.GetByID(ctx, o.ID)
	if err != nil {
		return TransitionResult{}, err
	}

	if s.notify != nil && in.OrderStatus != nil {
		s.notify.OrderStatusChanged(ctx, out, from)
	}
	return TransitionResult{Order: out, Warning: warning}, nil
}

// restoreStock credits back every line item's pool, exactly once per order.
// The MarkStockRestored guard makes re-entry a no-op.
func (s *Service) restoreStock(ctx context.Context, o Order) {
	first, err := s.store.MarkStockRestored(ctx, o.ID, time.Now())
	if err != nil {
		s.logger.Error("order.restore_mark_failed",
			slog.String("order_id", o.ID),
			slog.Any("err", err),
		)
		return
	}
	if !first {
		return
	}
	for _, it := range o.Items {
		if err := s.ledger.Increment(ctx, it.Ref(), it.Quantity); err != nil {
			s.logger.Error("order.restore_failed",
				slog.String("order_id", o.ID),
				slog.String("ref", it.Ref().String()),
				slog.Int("qty", it.Quantity),
				slog.Any("err", err),
			)
		}
	}
}

// CancelOrder is the convenience wrapper into cancelled. Cancelling an
// already-cancelled order is a no-op returning the current state; delivered
// and refunded orders are rejected.
func (s *Service) CancelOrder(ctx context.Context, orderID, reason, cancelledBy string) (Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Order{}, ErrReasonRequired
	}

	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	if o.OrderStatus == StatusCancelled {
		return o, nil
	}
	if IsTerminal(o.OrderStatus) {
		return Order{}, ErrInvalidTransition
	}

	to := StatusCancelled
	by := cancelledBy
	res, err := s.TransitionStatus(ctx, TransitionInput{
		OrderID:      orderID,
		Actor:        cancelledBy,
		OrderStatus:  &to,
		CancelReason: &reason,
		CancelledBy:  &by,
	})
	if err != nil {
		return Order{}, err
	}
	return res.Order, nil
}

// GetForUser returns an order only to its owning account.
func (s *Service) GetForUser(ctx context.Context, orderID, userID string) (Order, error) {
	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	if o.UserID == nil || *o.UserID != userID {
		return Order{}, ErrNotFound
	}
	return o, nil
}

// GetForGuest is the guest tracking lookup: exact (order number, email) pair
// or nothing. Mismatches never leak partial data.
func (s *Service) GetForGuest(ctx context.Context, number, email string) (Order, error) {
	o, err := s.store.GetByNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	if !o.IsGuest() || !guestEmailMatches(o.GuestEmail, email) {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (s *Service) ListForUser(ctx context.Context, in ListParams) (ListResult, error) {
	return s.store.ListByOwner(ctx, in)
}
