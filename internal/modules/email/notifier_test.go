package email

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/Ahmedchetoui/Delta-sub000/internal/mailer"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/orders"
)

func guestOrder() orders.Order {
	em := "guest@example.com"
	return orders.Order{
		ID:                  "o-1",
		OrderNumber:         "DF00000000001",
		GuestEmail:          &em,
		OrderStatus:         orders.StatusPending,
		TotalCents:          10700,
		Currency:            "TND",
		ShippingAddressJSON: datatypes.JSON(`{"first_name":"Amira","email":"other@example.com"}`),
	}
}

func TestOrderPlacedUsesGuestEmail(t *testing.T) {
	mock := &mailer.Mock{}
	n := NewNotifier(mock, "no-reply@deltafashion.tn", "Delta Fashion", nil)

	n.OrderPlaced(context.Background(), guestOrder())

	e, ok := mock.Last()
	require.True(t, ok)
	require.Equal(t, 1, mock.Count())
	assert.Equal(t, []string{"guest@example.com"}, e.To)
	assert.Contains(t, e.Subject, "DF00000000001")
	assert.Contains(t, e.TextBody, "107.00 DT")
	assert.Contains(t, e.HTMLBody, "Amira")
}

func TestOrderPlacedRegisteredFallsBackToAddressEmail(t *testing.T) {
	mock := &mailer.Mock{}
	n := NewNotifier(mock, "no-reply@deltafashion.tn", "", nil)

	o := guestOrder()
	uid := "u-1"
	o.UserID = &uid
	o.GuestEmail = nil
	n.OrderPlaced(context.Background(), o)

	require.Len(t, mock.Sent, 1)
	assert.Equal(t, []string{"other@example.com"}, mock.Sent[0].To)
}

func TestStatusChangedIncludesTracking(t *testing.T) {
	mock := &mailer.Mock{}
	n := NewNotifier(mock, "no-reply@deltafashion.tn", "Delta Fashion", nil)

	o := guestOrder()
	o.OrderStatus = orders.StatusShipped
	trk := "TRK123"
	o.TrackingNumber = &trk
	n.OrderStatusChanged(context.Background(), o, orders.StatusConfirmed)

	require.Len(t, mock.Sent, 1)
	e := mock.Sent[0]
	assert.Contains(t, e.Subject, "Kargoya Verildi")
	assert.Contains(t, e.TextBody, "TRK123")
	assert.Contains(t, e.HTMLBody, "TRK123")
}

func TestSendFailureIsSwallowed(t *testing.T) {
	mock := &mailer.Mock{Err: errors.New("smtp down")}
	n := NewNotifier(mock, "no-reply@deltafashion.tn", "Delta Fashion", nil)

	// panik yok, hata dönmez
	n.OrderPlaced(context.Background(), guestOrder())
	n.OrderStatusChanged(context.Background(), guestOrder(), orders.StatusPending)
}
