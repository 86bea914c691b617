package admin

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ahmedchetoui/Delta-sub000/internal/http/middleware"
	"github.com/Ahmedchetoui/Delta-sub000/internal/http/validation"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/orders"
	"github.com/Ahmedchetoui/Delta-sub000/internal/shared/apperr"
)

type OrdersHandler struct {
	Store *orders.GormStore
	Svc   *orders.Service
}

func NewOrdersHandler(store *orders.GormStore, svc *orders.Service) *OrdersHandler {
	return &OrdersHandler{Store: store, Svc: svc}
}

// List: GET /api/v1/admin/orders?q=&status=&payment_status=&from=&to=&page=
func (h *OrdersHandler) List(c *gin.Context) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 30)
	if pageSize > 100 {
		pageSize = 30
	}

	params := orders.AdminListParams{
		Q:             strings.TrimSpace(c.Query("q")),
		Status:        strings.TrimSpace(c.Query("status")),
		PaymentStatus: strings.TrimSpace(c.Query("payment_status")),
		Page:          page,
		PageSize:      pageSize,
	}
	if t, ok := parseDate(c.Query("from")); ok {
		params.From = &t
	}
	if t, ok := parseDate(c.Query("to")); ok {
		// to günü dahil: gün sonuna kadar
		t = t.AddDate(0, 0, 1)
		params.To = &t
	}

	res, err := h.Store.AdminList(c.Request.Context(), params)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	items := make([]gin.H, 0, len(res.Items))
	for _, o := range res.Items {
		items = append(items, summaryJSON(o))
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":    items,
		"total":     res.Total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Detail: GET /api/v1/admin/orders/:id — kalemler ve olay geçmişi dahil.
func (h *OrdersHandler) Detail(c *gin.Context) {
	o, events, err := h.Store.AdminGetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		if orders.IsNotFound(err) {
			middleware.Fail(c, apperr.NotFoundErr("Sipariş bulunamadı."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	evs := make([]gin.H, 0, len(events))
	for _, e := range events {
		evs = append(evs, gin.H{
			"actor":       e.Actor,
			"action":      e.Action,
			"from_status": e.FromStatus,
			"to_status":   e.ToStatus,
			"note":        e.Note,
			"created_at":  e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"order":  detailJSON(o),
		"events": evs,
	})
}

type updateStatusInput struct {
	OrderStatus    *string `json:"order_status" binding:"omitempty,max=16"`
	PaymentStatus  *string `json:"payment_status" binding:"omitempty,max=16"`
	TrackingNumber *string `json:"tracking_number" binding:"omitempty,max=64"`
	AdminNote      *string `json:"admin_note" binding:"omitempty,max=2000"`
}

// UpdateStatus: PATCH /api/v1/admin/orders/:id/status
func (h *OrdersHandler) UpdateStatus(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	var in updateStatusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fields := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("İstek gövdesi geçersiz.", fields))
		return
	}

	svcIn := orders.TransitionInput{
		OrderID:        c.Param("id"),
		Actor:          u.ID,
		TrackingNumber: in.TrackingNumber,
		AdminNote:      in.AdminNote,
	}
	if in.OrderStatus != nil {
		st := orders.OrderStatus(*in.OrderStatus)
		svcIn.OrderStatus = &st
	}
	if in.PaymentStatus != nil {
		ps := orders.PaymentStatus(*in.PaymentStatus)
		svcIn.PaymentStatus = &ps
	}

	res, err := h.Svc.TransitionStatus(c.Request.Context(), svcIn)
	if err != nil {
		middleware.Fail(c, mapError(err))
		return
	}

	out := gin.H{"order": detailJSON(res.Order)}
	if res.Warning != "" {
		out["warning"] = res.Warning
	}
	c.JSON(http.StatusOK, out)
}

type cancelInput struct {
	Reason string `json:"reason" binding:"required,min=3,max=255"`
}

// Cancel: POST /api/v1/admin/orders/:id/cancel
func (h *OrdersHandler) Cancel(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	var in cancelInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fields := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("İptal nedeni zorunludur.", fields))
		return
	}

	o, err := h.Svc.CancelOrder(c.Request.Context(), c.Param("id"), in.Reason, u.ID)
	if err != nil {
		middleware.Fail(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": detailJSON(o)})
}

func mapError(err error) *apperr.AppError {
	switch {
	case err == orders.ErrNotFound:
		return apperr.NotFoundErr("Sipariş bulunamadı.")
	case err == orders.ErrInvalidTransition:
		return apperr.UnprocessableErr("Bu durum geçişine izin verilmiyor.")
	case err == orders.ErrStatusConflict:
		return apperr.ConflictErr("Sipariş durumu bu sırada değişti, lütfen yenileyip tekrar deneyin.")
	case err == orders.ErrReasonRequired:
		return apperr.InvalidErr("İptal nedeni zorunludur.", map[string]string{"reason": "Bu alan zorunludur."})
	default:
		return apperr.Wrap(err)
	}
}

func summaryJSON(o orders.Order) gin.H {
	return gin.H{
		"id":             o.ID,
		"order_number":   o.OrderNumber,
		"user_id":        o.UserID,
		"guest_email":    o.GuestEmail,
		"order_status":   o.OrderStatus,
		"payment_status": o.PaymentStatus,
		"payment_method": o.PaymentMethod,
		"total_cents":    o.TotalCents,
		"currency":       o.Currency,
		"created_at":     o.CreatedAt,
	}
}

func detailJSON(o orders.Order) gin.H {
	out := summaryJSON(o)
	out["subtotal_cents"] = o.SubtotalCents
	out["shipping_cents"] = o.ShippingCents
	out["tax_cents"] = o.TaxCents
	out["discount_cents"] = o.DiscountCents
	out["tracking_number"] = o.TrackingNumber
	out["customer_note"] = o.CustomerNote
	out["admin_note"] = o.AdminNote
	out["cancel_reason"] = o.CancelReason
	out["cancelled_by"] = o.CancelledBy
	out["cancelled_at"] = o.CancelledAt
	out["stock_restored_at"] = o.StockRestoredAt
	out["updated_at"] = o.UpdatedAt

	if len(o.ShippingAddressJSON) > 0 {
		var a orders.Address
		if json.Unmarshal(o.ShippingAddressJSON, &a) == nil {
			out["shipping_address"] = a
		}
	}
	if len(o.BillingAddressJSON) > 0 {
		var a orders.Address
		if json.Unmarshal(o.BillingAddressJSON, &a) == nil {
			out["billing_address"] = a
		}
	}

	items := make([]gin.H, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, gin.H{
			"id":               it.ID,
			"product_id":       it.ProductID,
			"variant_id":       it.VariantID,
			"product_name":     it.ProductName,
			"sku":              it.SKU,
			"size":             it.Size,
			"color":            it.Color,
			"unit_price_cents": it.UnitPriceCents,
			"quantity":         it.Quantity,
			"line_total_cents": it.LineTotalCents,
		})
	}
	out["items"] = items
	return out
}

func parseInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
