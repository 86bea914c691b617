package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/inventory"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/orders"
	"github.com/Ahmedchetoui/Delta-sub000/internal/shared/apperr"
)

// mapOrderError translates domain failures into the apperr taxonomy the
// trailing ErrorHandler renders. Unknown errors wrap to internal.
func mapOrderError(err error) *apperr.AppError {
	var (
		ae  *orders.AddressError
		pe  *orders.ProductError
		ise *inventory.InsufficientStockError
	)
	switch {
	case errors.Is(err, orders.ErrEmptyCart):
		return apperr.InvalidErr("Sepetiniz boş.", nil)
	case errors.Is(err, orders.ErrReasonRequired):
		return apperr.InvalidErr("İptal nedeni zorunludur.", map[string]string{"reason": "Bu alan zorunludur."})
	case errors.Is(err, orders.ErrInvalidTransition):
		return apperr.UnprocessableErr("Bu durum geçişine izin verilmiyor.")
	case errors.Is(err, orders.ErrStatusConflict):
		return apperr.ConflictErr("Sipariş durumu bu sırada değişti, lütfen yenileyip tekrar deneyin.")
	case errors.Is(err, orders.ErrNotFound):
		return apperr.NotFoundErr("Sipariş bulunamadı.")
	case errors.As(err, &ae):
		return apperr.InvalidErr("Adres bilgileri geçersiz.", ae.Fields)
	case errors.As(err, &pe):
		if pe.Variant {
			return apperr.NotFoundErr("Seçilen beden/renk kombinasyonu bulunamadı.")
		}
		return apperr.NotFoundErr("Ürün bulunamadı.")
	case errors.As(err, &ise):
		return apperr.ConflictErr("Stok yetersiz, sipariş oluşturulamadı.")
	default:
		return apperr.Wrap(err)
	}
}

func pageParams(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

type orderItemJSON struct {
	ID             string  `json:"id"`
	ProductID      string  `json:"product_id"`
	VariantID      *string `json:"variant_id,omitempty"`
	ProductName    string  `json:"product_name"`
	SKU            string  `json:"sku,omitempty"`
	Size           string  `json:"size,omitempty"`
	Color          string  `json:"color,omitempty"`
	UnitPriceCents int     `json:"unit_price_cents"`
	Quantity       int     `json:"quantity"`
	LineTotalCents int     `json:"line_total_cents"`
}

type orderJSON struct {
	ID          string `json:"id"`
	OrderNumber string `json:"order_number"`

	OrderStatus   orders.OrderStatus   `json:"order_status"`
	PaymentStatus orders.PaymentStatus `json:"payment_status"`
	PaymentMethod orders.PaymentMethod `json:"payment_method"`

	SubtotalCents int    `json:"subtotal_cents"`
	ShippingCents int    `json:"shipping_cents"`
	TaxCents      int    `json:"tax_cents"`
	DiscountCents int    `json:"discount_cents"`
	TotalCents    int    `json:"total_cents"`
	Currency      string `json:"currency"`

	ShippingAddress *orders.Address `json:"shipping_address,omitempty"`
	BillingAddress  *orders.Address `json:"billing_address,omitempty"`

	TrackingNumber *string `json:"tracking_number,omitempty"`
	CustomerNote   *string `json:"customer_note,omitempty"`

	CancelReason *string    `json:"cancel_reason,omitempty"`
	CancelledBy  *string    `json:"cancelled_by,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`

	Items []orderItemJSON `json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toOrderJSON(o orders.Order) orderJSON {
	out := orderJSON{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		OrderStatus:   o.OrderStatus,
		PaymentStatus: o.PaymentStatus,
		PaymentMethod: o.PaymentMethod,
		SubtotalCents: o.SubtotalCents,
		ShippingCents: o.ShippingCents,
		TaxCents:      o.TaxCents,
		DiscountCents: o.DiscountCents,
		TotalCents:    o.TotalCents,
		Currency:      o.Currency,

		TrackingNumber: o.TrackingNumber,
		CustomerNote:   o.CustomerNote,
		CancelReason:   o.CancelReason,
		CancelledBy:    o.CancelledBy,
		CancelledAt:    o.CancelledAt,

		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if len(o.ShippingAddressJSON) > 0 {
		var a orders.Address
		if json.Unmarshal(o.ShippingAddressJSON, &a) == nil {
			out.ShippingAddress = &a
		}
	}
	if len(o.BillingAddressJSON) > 0 {
		var a orders.Address
		if json.Unmarshal(o.BillingAddressJSON, &a) == nil {
			out.BillingAddress = &a
		}
	}
	out.Items = make([]orderItemJSON, 0, len(o.Items))
	for _, it := range o.Items {
		out.Items = append(out.Items, orderItemJSON{
			ID:             it.ID,
			ProductID:      it.ProductID,
			VariantID:      it.VariantID,
			ProductName:    it.ProductName,
			SKU:            it.SKU,
			Size:           it.Size,
			Color:          it.Color,
			UnitPriceCents: it.UnitPriceCents,
			Quantity:       it.Quantity,
			LineTotalCents: it.LineTotalCents,
		})
	}
	return out
}
