package orders_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/catalog"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/inventory"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/orders"
)

// memStore mirrors GormStore semantics (optimistic guards included) so the
// lifecycle engine can be exercised without a database.
type memStore struct {
	mu     sync.Mutex
	orders map[string]orders.Order
	events []orders.OrderEvent
}

func newMemStore() *memStore {
	return &memStore{orders: map[string]orders.Order{}}
}

func (s *memStore) Create(ctx context.Context, o *orders.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = *o
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id string) (orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return orders.Order{}, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (s *memStore) GetByNumber(ctx context.Context, number string) (orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.OrderNumber == number {
			return o, nil
		}
	}
	return orders.Order{}, gorm.ErrRecordNotFound
}

func (s *memStore) NumberExists(ctx context.Context, number string) (bool, error) {
	_, err := s.GetByNumber(ctx, number)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (s *memStore) ListByOwner(ctx context.Context, in orders.ListParams) (orders.ListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(in.Email))
	var items []orders.Order
	for _, o := range s.orders {
		owned := o.UserID != nil && *o.UserID == in.UserID
		guest := o.UserID == nil && o.GuestEmail != nil && *o.GuestEmail == email
		if !owned && !guest {
			continue
		}
		if in.Status != "" && string(o.OrderStatus) != in.Status {
			continue
		}
		items = append(items, o)
	}
	return orders.ListResult{Items: items, Total: int64(len(items))}, nil
}

func (s *memStore) ApplyTransition(ctx context.Context, orderID string, from orders.OrderStatus, upd orders.TransitionUpdate, ev orders.OrderEvent) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.OrderStatus != from {
		return false, nil
	}
	if upd.OrderStatus != nil {
		o.OrderStatus = *upd.OrderStatus
	}
	if upd.PaymentStatus != nil {
		o.PaymentStatus = *upd.PaymentStatus
	}
	if upd.TrackingNumber != nil {
		o.TrackingNumber = upd.TrackingNumber
	}
	if upd.AdminNote != nil {
		o.AdminNote = upd.AdminNote
	}
	if upd.CancelReason != nil {
		o.CancelReason = upd.CancelReason
	}
	if upd.CancelledBy != nil {
		o.CancelledBy = upd.CancelledBy
	}
	if upd.CancelledAt != nil {
		o.CancelledAt = upd.CancelledAt
	}
	o.UpdatedAt = time.Now()
	s.orders[orderID] = o
	s.events = append(s.events, ev)
	return true, nil
}

func (s *memStore) MarkStockRestored(ctx context.Context, orderID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.StockRestoredAt != nil {
		return false, nil
	}
	o.StockRestoredAt = &at
	s.orders[orderID] = o
	return true, nil
}

// fakeCatalog serves products from a map; mutate entries to simulate price
// changes after an order was placed.
type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]catalog.Product
}

func newFakeCatalog(products ...catalog.Product) *fakeCatalog {
	m := map[string]catalog.Product{}
	for _, p := range products {
		m[p.ID] = p
	}
	return &fakeCatalog{products: m}
}

func (c *fakeCatalog) Get(ctx context.Context, id string) (catalog.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return catalog.Product{}, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (c *fakeCatalog) ListActive(ctx context.Context, limit, offset int) ([]catalog.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []catalog.Product
	for _, p := range c.products {
		if p.Status == catalog.StatusActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *fakeCatalog) setPrice(id string, baseCents, discountPercent int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.products[id]
	p.BasePriceCents = baseCents
	p.DiscountPercent = discountPercent
	c.products[id] = p
}

type recordingNotifier struct {
	mu      sync.Mutex
	placed  []string // order numbers
	changed []string // "number:from->to"
}

func (n *recordingNotifier) OrderPlaced(ctx context.Context, o orders.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.placed = append(n.placed, o.OrderNumber)
}

func (n *recordingNotifier) OrderStatusChanged(ctx context.Context, o orders.Order, from orders.OrderStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, o.OrderNumber+":"+string(from)+"->"+string(o.OrderStatus))
}

type testEnv struct {
	svc     *orders.Service
	store   *memStore
	ledger  *inventory.MemLedger
	catalog *fakeCatalog
	notify  *recordingNotifier
}

func newTestEnv(products ...catalog.Product) *testEnv {
	store := newMemStore()
	ledger := inventory.NewMemLedger()
	cat := newFakeCatalog(products...)
	notify := &recordingNotifier{}

	for _, p := range products {
		if len(p.Variants) == 0 {
			ledger.Set(inventory.ItemRef{ProductID: p.ID}, p.Stock)
			continue
		}
		for _, v := range p.Variants {
			ledger.Set(inventory.ItemRef{ProductID: p.ID, VariantID: v.ID}, v.Stock)
		}
	}

	pricing := orders.PricingPolicy{
		Currency:              "TND",
		FlatShippingCents:     700,
		FreeShippingOverCents: 20000,
	}
	svc := orders.NewService(store, cat, ledger, pricing, notify, nil)
	return &testEnv{svc: svc, store: store, ledger: ledger, catalog: cat, notify: notify}
}

func validAddress() orders.Address {
	return orders.Address{
		FirstName: "Amine",
		LastName:  "Ben Salah",
		Phone:     "+21620123456",
		Street:    "12 Rue de Carthage",
		City:      "Tunis",
		Country:   "TN",
		Email:     "a@b.com",
	}
}

func shirt() catalog.Product {
	return catalog.Product{
		ID:             "prod-shirt",
		Name:           "Delta Tee",
		Slug:           "delta-tee",
		Status:         catalog.StatusActive,
		BasePriceCents: 5000,
		Currency:       "TND",
		Variants: []catalog.Variant{
			{ID: "var-m-black", ProductID: "prod-shirt", Size: "M", Color: "Black", SKU: "TEE-M-BLK", Stock: 5},
			{ID: "var-l-white", ProductID: "prod-shirt", Size: "L", Color: "White", SKU: "TEE-L-WHT", Stock: 2},
		},
	}
}

func beltNoVariants() catalog.Product {
	return catalog.Product{
		ID:             "prod-belt",
		Name:           "Leather Belt",
		Slug:           "leather-belt",
		Status:         catalog.StatusActive,
		BasePriceCents: 3000,
		Currency:       "TND",
		Stock:          4,
	}
}
