package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ahmedchetoui/Delta-sub000/internal/http/middleware"
	"github.com/Ahmedchetoui/Delta-sub000/internal/http/validation"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/orders"
	"github.com/Ahmedchetoui/Delta-sub000/internal/shared/apperr"
)

type OrdersHandler struct {
	Svc *orders.Service
}

func NewOrdersHandler(svc *orders.Service) *OrdersHandler {
	return &OrdersHandler{Svc: svc}
}

type orderItemInput struct {
	ProductID string `json:"product_id" binding:"required,max=36"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=99"`
	Size      string `json:"size" binding:"omitempty,max=16"`
	Color     string `json:"color" binding:"omitempty,max=32"`
}

type addressInput struct {
	FirstName  string `json:"first_name" binding:"required,max=100"`
	LastName   string `json:"last_name" binding:"required,max=100"`
	Phone      string `json:"phone" binding:"required,min=5,max=32"`
	Street     string `json:"street" binding:"required,max=255"`
	City       string `json:"city" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"omitempty,max=16"`
	Country    string `json:"country" binding:"required,max=64"`
	Email      string `json:"email" binding:"required,email,max=255"`
}

func (a addressInput) toAddress() orders.Address {
	return orders.Address{
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Phone:      a.Phone,
		Street:     a.Street,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Email:      a.Email,
	}
}

type createOrderInput struct {
	Items           []orderItemInput `json:"items" binding:"required,min=1,dive"`
	ShippingAddress addressInput     `json:"shipping_address" binding:"required"`
	BillingAddress  *addressInput    `json:"billing_address" binding:"omitempty"`
	PaymentMethod   string           `json:"payment_method" binding:"required,oneof=cash_on_delivery bank_transfer card"`
	CustomerNote    string           `json:"customer_note" binding:"omitempty,max=2000"`
}

// Create: POST /api/v1/orders — misafir ya da oturumlu müşteri.
func (h *OrdersHandler) Create(c *gin.Context) {
	var in createOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fields := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Sipariş bilgileri geçersiz.", fields))
		return
	}

	svcIn := orders.CreateInput{
		ShippingAddress: in.ShippingAddress.toAddress(),
		PaymentMethod:   orders.PaymentMethod(in.PaymentMethod),
		CustomerNote:    in.CustomerNote,
	}
	if in.BillingAddress != nil {
		a := in.BillingAddress.toAddress()
		svcIn.BillingAddress = &a
	}
	for _, it := range in.Items {
		svcIn.Items = append(svcIn.Items, orders.CreateItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
		})
	}
	if u, ok := middleware.CurrentUser(c); ok {
		uid := u.ID
		svcIn.UserID = &uid
	}

	o, err := h.Svc.CreateOrder(c.Request.Context(), svcIn)
	if err != nil {
		middleware.Fail(c, mapOrderError(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": toOrderJSON(o)})
}

// List: GET /api/v1/orders — kendi siparişleri (auth).
func (h *OrdersHandler) List(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	page, pageSize := pageParams(c)

	res, err := h.Svc.ListForUser(c.Request.Context(), orders.ListParams{
		UserID:   u.ID,
		Email:    u.Email,
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	items := make([]orderJSON, 0, len(res.Items))
	for _, o := range res.Items {
		items = append(items, toOrderJSON(o))
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":    items,
		"total":     res.Total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Get: GET /api/v1/orders/:id — başkasının siparişi not_found döner.
func (h *OrdersHandler) Get(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	o, err := h.Svc.GetForUser(c.Request.Context(), c.Param("id"), u.ID)
	if err != nil {
		middleware.Fail(c, mapOrderError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": toOrderJSON(o)})
}

type cancelInput struct {
	Reason string `json:"reason" binding:"required,min=3,max=255"`
}

// Cancel: POST /api/v1/orders/:id/cancel — müşteri iptali, neden zorunlu.
func (h *OrdersHandler) Cancel(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	var in cancelInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fields := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("İptal nedeni zorunludur.", fields))
		return
	}

	// sahiplik kontrolü: sipariş bu hesaba ait değilse not_found
	if _, err := h.Svc.GetForUser(c.Request.Context(), c.Param("id"), u.ID); err != nil {
		middleware.Fail(c, mapOrderError(err))
		return
	}

	o, err := h.Svc.CancelOrder(c.Request.Context(), c.Param("id"), in.Reason, "customer")
	if err != nil {
		middleware.Fail(c, mapOrderError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": toOrderJSON(o)})
}
