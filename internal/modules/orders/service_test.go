package orders_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/inventory"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/orders"
)

func mBlack() inventory.ItemRef {
	return inventory.ItemRef{ProductID: "prod-shirt", VariantID: "var-m-black"}
}

func TestCreateOrderComputesTotals(t *testing.T) {
	env := newTestEnv(shirt())
	ctx := context.Background()

	o, err := env.svc.CreateOrder(ctx, orders.CreateInput{
		Items: []orders.CreateItemInput{
			{ProductID: "prod-shirt", Quantity: 2, Size: "M", Color: "Black"},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentCashOnDelivery,
	})
	require.NoError(t, err)

	assert.Equal(t, 10000, o.SubtotalCents)
	assert.Equal(t, 700, o.ShippingCents)
	assert.Equal(t, 0, o.TaxCents)
	assert.Equal(t, 0, o.DiscountCents)
	assert.Equal(t, 10700, o.TotalCents) // subtotal + shipping + tax - discount
	assert.Equal(t, "TND", o.Currency)

	assert.Equal(t, orders.StatusPending, o.OrderStatus)
	assert.Equal(t, orders.PaymentPending, o.PaymentStatus)

	require.Len(t, o.Items, 1)
	assert.Equal(t, 5000, o.Items[0].UnitPriceCents)
	assert.Equal(t, "M", o.Items[0].Size)
	assert.Equal(t, "Black", o.Items[0].Color)

	assert.Equal(t, 3, env.ledger.Stock(mBlack()))
	assert.Equal(t, []string{o.OrderNumber}, env.notify.placed)
}

func TestOrderNumberFormat(t *testing.T) {
	env := newTestEnv(shirt())

	o, err := env.svc.CreateOrder(context.Background(), orders.CreateInput{
		Items:           []orders.CreateItemInput{{ProductID: "prod-shirt", Quantity: 1, Size: "M", Color: "Black"}},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentBankTransfer,
	})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^DF[0-9]{11}$`), o.OrderNumber)
}

func TestCreateOrderFreeShippingOverThreshold(t *testing.T) {
	env := newTestEnv(shirt())

	o, err := env.svc.CreateOrder(context.Background(), orders.CreateInput{
		Items:           []orders.CreateItemInput{{ProductID: "prod-shirt", Quantity: 4, Size: "M", Color: "Black"}},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentCashOnDelivery,
	})
	require.NoError(t, err)
	assert.Equal(t, 20000, o.SubtotalCents)
	assert.Equal(t, 0, o.ShippingCents)
	assert.Equal(t, 20000, o.TotalCents)
}

func TestCreateOrderDiscountSnapshot(t *testing.T) {
	p := shirt()
	p.DiscountPercent = 20
	env := newTestEnv(p)

	o, err := env.svc.CreateOrder(context.Background(), orders.CreateInput{
		Items:           []orders.CreateItemInput{{ProductID: "prod-shirt", Quantity: 1, Size: "M", Color: "Black"}},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentCashOnDelivery,
	})
	require.NoError(t, err)
	assert.Equal(t, 4000, o.Items[0].UnitPriceCents) // 5000 - %20
}

func TestPriceSnapshotImmutability(t *testing.T) {
	env := newTestEnv(shirt())
	ctx := context.Background()

	o, err := env.svc.CreateOrder(ctx, orders.CreateInput{
		Items:           []orders.CreateItemInput{{ProductID: "prod-shirt", Quantity: 1, Size: "M", Color: "Black"}},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentCashOnDelivery,
	})
	require.NoError(t, err)

	// katalog fiyatı değişir, geçmiş sipariş değişmez
	env.catalog.setPrice("prod-shirt", 9900, 0)

	got, err := env.store.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 5000, got.Items[0].UnitPriceCents)
	assert.Equal(t, o.TotalCents, got.TotalCents)

	// yeni sipariş yeni fiyatı görür
	o2, err := env.svc.CreateOrder(ctx, orders.CreateInput{
		Items:           []orders.CreateItemInput{{ProductID: "prod-shirt", Quantity: 1, Size: "M", Color: "Black"}},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentCashOnDelivery,
	})
	require.NoError(t, err)
	assert.Equal(t, 9900, o2.Items[0].UnitPriceCents)
}

func TestCreateOrderValidationOrder(t *testing.T) {
	env := newTestEnv(shirt())
	ctx := context.Background()

	_, err := env.svc.CreateOrder(ctx, orders.CreateInput{
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentCashOnDelivery,
	})
	assert.ErrorIs(t, err, orders.ErrEmptyCart)

	_, err = env.svc.CreateOrder(ctx, orders.CreateInput{
		Items:           []orders.CreateItemInput{{ProductID: "no-such", Quantity: 1}},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentCashOnDelivery,
	})
	var pe *orders.ProductError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "no-such", pe.ProductID)
	assert.False(t, pe.Variant)

	_, err = env.svc.CreateOrder(ctx, orders.CreateInput{
		Items:           []orders.CreateItemInput{{ProductID: "prod-shirt", Quantity: 1, Size: "XXL", Color: "Pink"}},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentCashOnDelivery,
	})
	require.True(t, errors.As(err, &pe))
	assert.True(t, pe.Variant)

	bad := validAddress()
	bad.FirstName = ""
	bad.Email = "not-an-email"
	_, err = env.svc.CreateOrder(ctx, orders.CreateInput{
		Items:           []orders.CreateItemInput{{ProductID: "prod-shirt", Quantity: 1, Size: "M", Color: "Black"}},
		ShippingAddress: bad,
		PaymentMethod:   orders.PaymentCashOnDelivery,
	})
	var ae *orders.AddressError
	require.True(t, errors.As(err, &ae))
	assert.Contains(t, ae.Fields, "first_name")
	assert.Contains(t, ae.Fields, "email")

	// hiçbir başarısız deneme stok düşürmez
	assert.Equal(t, 5, env.ledger.Stock(mBlack()))
}

func TestCreateOrderRejectsCard(t *testing.T) {
	env := newTestEnv(shirt())

	_, err := env.svc.CreateOrder(context.Background(), orders.CreateInput{
		Items:           []orders.CreateItemInput{{ProductID: "prod-shirt", Quantity: 1, Size: "M", Color: "Black"}},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentCard,
	})
	var ae *orders.AddressError
	require.True(t, errors.As(err, &ae))
}

func TestCreateOrderInactiveProduct(t *testing.T) {
	p := shirt()
	p.Status = "archived"
	env := newTestEnv(p)

	_, err := env.svc.CreateOrder(context.Background(), orders.CreateInput{
		Items:           []orders.CreateItemInput{{ProductID: "prod-shirt", Quantity: 1, Size: "M", Color: "Black"}},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentCashOnDelivery,
	})
	var pe *orders.ProductError
	require.True(t, errors.As(err, &pe))
}

func TestCreateOrderAllOrNothing(t *testing.T) {
	env := newTestEnv(shirt(), beltNoVariants())
	ctx := context.Background()

	// L/White'ta 2 var, 3 isteniyor: tüm sipariş reddedilir, kemer stoğu aynen kalır
	_, err := env.svc.CreateOrder(ctx, orders.CreateInput{
		Items: []orders.CreateItemInput{
			{ProductID: "prod-belt", Quantity: 2},
			{ProductID: "prod-shirt", Quantity: 3, Size: "L", Color: "White"},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentCashOnDelivery,
	})
	var ise *inventory.InsufficientStockError
	require.True(t, errors.As(err, &ise))

	assert.Equal(t, 4, env.ledger.Stock(inventory.ItemRef{ProductID: "prod-belt"}))
	assert.Equal(t, 2, env.ledger.Stock(inventory.ItemRef{ProductID: "prod-shirt", VariantID: "var-l-white"}))
	assert.Empty(t, env.notify.placed)
}

func TestCreateOrderLastUnit(t *testing.T) {
	p := shirt()
	p.Variants[0].Stock = 1
	env := newTestEnv(p)
	ctx := context.Background()

	in := orders.CreateInput{
		Items:           []orders.CreateItemInput{{ProductID: "prod-shirt", Quantity: 1, Size: "M", Color: "Black"}},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentCashOnDelivery,
	}

	_, err := env.svc.CreateOrder(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 0, env.ledger.Stock(mBlack()))

	// katalog görünümü eski kalsa bile yetkili kontrol ledger'da:
	// ikinci sipariş son birimi alamaz
	_, err = env.svc.CreateOrder(ctx, in)
	var ise *inventory.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, 0, env.ledger.Stock(mBlack()))
}

func TestCancelRestoresStockExactlyOnce(t *testing.T) {
	env := newTestEnv(shirt(), beltNoVariants())
	ctx := context.Background()

	before := env.ledger.Stock(mBlack())
	beltRef := inventory.ItemRef{ProductID: "prod-belt"}
	beltBefore := env.ledger.Stock(beltRef)

	o, err := env.svc.CreateOrder(ctx, orders.CreateInput{
		Items: []orders.CreateItemInput{
			{ProductID: "prod-shirt", Quantity: 2, Size: "M", Color: "Black"},
			{ProductID: "prod-belt", Quantity: 1},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentCashOnDelivery,
	})
	require.NoError(t, err)
	assert.Equal(t, before-2, env.ledger.Stock(mBlack()))

	cancelled, err := env.svc.CancelOrder(ctx, o.ID, "Changed my mind", "customer")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, cancelled.OrderStatus)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "Changed my mind", *cancelled.CancelReason)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, "customer", *cancelled.CancelledBy)
	assert.NotNil(t, cancelled.CancelledAt)

	// tam iade: stok sipariş öncesi değere döner
	assert.Equal(t, before, env.ledger.Stock(mBlack()))
	assert.Equal(t, beltBefore, env.ledger.Stock(beltRef))

	// ikinci iptal no-op: aynı sipariş döner, stok değişmez
	again, err := env.svc.CancelOrder(ctx, o.ID, "again", "customer")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, again.OrderStatus)
	assert.Equal(t, "Changed my mind", *again.CancelReason)
	assert.Equal(t, before, env.ledger.Stock(mBlack()))
}

func TestCancelRequiresReason(t *testing.T) {
	env := newTestEnv(shirt())
	_, err := env.svc.CancelOrder(context.Background(), "any", "  ", "customer")
	assert.ErrorIs(t, err, orders.ErrReasonRequired)
}

func TestCancelRejectedFromTerminalStates(t *testing.T) {
	env := newTestEnv(shirt())
	ctx := context.Background()

	o, err := env.svc.CreateOrder(ctx, orders.CreateInput{
		Items:           []orders.CreateItemInput{{ProductID: "prod-shirt", Quantity: 1, Size: "M", Color: "Black"}},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentCashOnDelivery,
	})
	require.NoError(t, err)

	st := orders.StatusDelivered
	trk := "TRK123"
	_, err = env.svc.TransitionStatus(ctx, orders.TransitionInput{
		OrderID: o.ID, Actor: "admin-1", OrderStatus: &st, TrackingNumber: &trk,
	})
	require.NoError(t, err)

	_, err = env.svc.CancelOrder(ctx, o.ID, "too late", "customer")
	assert.ErrorIs(t, err, orders.ErrInvalidTransition)
}

func TestAdminTransitionChain(t *testing.T) {
	env := newTestEnv(shirt())
	ctx := context.Background()

	o, err := env.svc.CreateOrder(ctx, orders.CreateInput{
		Items:           []orders.CreateItemInput{{ProductID: "prod-shirt", Quantity: 1, Size: "M", Color: "Black"}},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentBankTransfer,
	})
	require.NoError(t, err)

	step := func(to orders.OrderStatus, tracking *string) orders.TransitionResult {
		res, err := env.svc.TransitionStatus(ctx, orders.TransitionInput{
			OrderID: o.ID, Actor: "admin-1", OrderStatus: &to, TrackingNumber: tracking,
		})
		require.NoError(t, err)
		return res
	}

	res := step(orders.StatusConfirmed, nil)
	assert.Equal(t, orders.StatusConfirmed, res.Order.OrderStatus)

	trk := "TRK123"
	res = step(orders.StatusShipped, &trk)
	assert.Equal(t, orders.StatusShipped, res.Order.OrderStatus)
	assert.Empty(t, res.Warning)

	res = step(orders.StatusDelivered, nil)
	assert.Equal(t, orders.StatusDelivered, res.Order.OrderStatus)
	require.NotNil(t, res.Order.TrackingNumber)
	assert.Equal(t, "TRK123", *res.Order.TrackingNumber) // takip numarası korunur

	assert.Equal(t, []string{
		o.OrderNumber + ":pending->confirmed",
		o.OrderNumber + ":confirmed->shipped",
		o.OrderNumber + ":shipped->delivered",
	}, env.notify.changed)
}

func TestShippedWithoutTrackingWarns(t *testing.T) {
	env := newTestEnv(shirt())
	ctx := context.Background()

	o, err := env.svc.CreateOrder(ctx, orders.CreateInput{
		Items:           []orders.CreateItemInput{{ProductID: "prod-shirt", Quantity: 1, Size: "M", Color: "Black"}},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentCashOnDelivery,
	})
	require.NoError(t, err)

	st := orders.StatusShipped
	res, err := env.svc.TransitionStatus(ctx, orders.TransitionInput{
		OrderID: o.ID, Actor: "admin-1", OrderStatus: &st,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Warning)
	assert.Equal(t, orders.StatusShipped, res.Order.OrderStatus)
}

func TestPaymentStatusIndependent(t *testing.T) {
	env := newTestEnv(shirt())
	ctx := context.Background()

	o, err := env.svc.CreateOrder(ctx, orders.CreateInput{
		Items:           []orders.CreateItemInput{{ProductID: "prod-shirt", Quantity: 1, Size: "M", Color: "Black"}},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentBankTransfer,
	})
	require.NoError(t, err)

	ps := orders.PaymentPaid
	res, err := env.svc.TransitionStatus(ctx, orders.TransitionInput{
		OrderID: o.ID, Actor: "admin-1", PaymentStatus: &ps,
	})
	require.NoError(t, err)
	assert.Equal(t, orders.PaymentPaid, res.Order.PaymentStatus)
	assert.Equal(t, orders.StatusPending, res.Order.OrderStatus)
}

func TestDeliveredToRefundedRestoresStock(t *testing.T) {
	env := newTestEnv(shirt())
	ctx := context.Background()

	before := env.ledger.Stock(mBlack())
	o, err := env.svc.CreateOrder(ctx, orders.CreateInput{
		Items:           []orders.CreateItemInput{{ProductID: "prod-shirt", Quantity: 2, Size: "M", Color: "Black"}},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentCashOnDelivery,
	})
	require.NoError(t, err)

	st := orders.StatusDelivered
	trk := "TRK9"
	_, err = env.svc.TransitionStatus(ctx, orders.TransitionInput{OrderID: o.ID, Actor: "admin-1", OrderStatus: &st, TrackingNumber: &trk})
	require.NoError(t, err)
	assert.Equal(t, before-2, env.ledger.Stock(mBlack()))

	st = orders.StatusRefunded
	ps := orders.PaymentRefunded
	res, err := env.svc.TransitionStatus(ctx, orders.TransitionInput{OrderID: o.ID, Actor: "admin-1", OrderStatus: &st, PaymentStatus: &ps})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusRefunded, res.Order.OrderStatus)
	assert.Equal(t, orders.PaymentRefunded, res.Order.PaymentStatus)
	assert.Equal(t, before, env.ledger.Stock(mBlack()))
}

func TestInvalidTransitionsRejected(t *testing.T) {
	env := newTestEnv(shirt())
	ctx := context.Background()

	o, err := env.svc.CreateOrder(ctx, orders.CreateInput{
		Items:           []orders.CreateItemInput{{ProductID: "prod-shirt", Quantity: 1, Size: "M", Color: "Black"}},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentCashOnDelivery,
	})
	require.NoError(t, err)

	for _, to := range []orders.OrderStatus{orders.StatusRefunded, "bogus"} {
		st := to
		_, err := env.svc.TransitionStatus(ctx, orders.TransitionInput{OrderID: o.ID, Actor: "admin-1", OrderStatus: &st})
		assert.ErrorIs(t, err, orders.ErrInvalidTransition, "to=%s", to)
	}
}

func TestGuestLookupPrecision(t *testing.T) {
	env := newTestEnv(shirt())
	ctx := context.Background()

	addr := validAddress()
	addr.Email = "A@B.com" // büyük harfle verildi
	o, err := env.svc.CreateOrder(ctx, orders.CreateInput{
		Items:           []orders.CreateItemInput{{ProductID: "prod-shirt", Quantity: 1, Size: "M", Color: "Black"}},
		ShippingAddress: addr,
		PaymentMethod:   orders.PaymentCashOnDelivery,
	})
	require.NoError(t, err)
	assert.True(t, o.IsGuest())

	got, err := env.svc.GetForGuest(ctx, o.OrderNumber, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = env.svc.GetForGuest(ctx, o.OrderNumber, "wrong@b.com")
	assert.ErrorIs(t, err, orders.ErrNotFound)

	_, err = env.svc.GetForGuest(ctx, "DF00000000000", "a@b.com")
	assert.ErrorIs(t, err, orders.ErrNotFound)
}

func TestRegisteredOrderNotVisibleToGuestLookup(t *testing.T) {
	env := newTestEnv(shirt())
	ctx := context.Background()

	uid := "user-1"
	o, err := env.svc.CreateOrder(ctx, orders.CreateInput{
		Items:           []orders.CreateItemInput{{ProductID: "prod-shirt", Quantity: 1, Size: "M", Color: "Black"}},
		ShippingAddress: validAddress(),
		PaymentMethod:   orders.PaymentCashOnDelivery,
		UserID:          &uid,
	})
	require.NoError(t, err)
	assert.False(t, o.IsGuest())

	_, err = env.svc.GetForGuest(ctx, o.OrderNumber, "a@b.com")
	assert.ErrorIs(t, err, orders.ErrNotFound)

	got, err := env.svc.GetForUser(ctx, o.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = env.svc.GetForUser(ctx, o.ID, "user-2")
	assert.ErrorIs(t, err, orders.ErrNotFound)
}
