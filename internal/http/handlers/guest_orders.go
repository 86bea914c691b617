package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ahmedchetoui/Delta-sub000/internal/http/middleware"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/orders"
	"github.com/Ahmedchetoui/Delta-sub000/internal/shared/apperr"
)

type GuestOrdersHandler struct {
	Svc *orders.Service
}

func NewGuestOrdersHandler(svc *orders.Service) *GuestOrdersHandler {
	return &GuestOrdersHandler{Svc: svc}
}

// Track: GET /api/v1/orders/track?number=DF...&email=...
// Tam (sipariş no, e-posta) çifti eşleşmezse not_found; kısmi bilgi sızmaz.
func (h *GuestOrdersHandler) Track(c *gin.Context) {
	number := c.Query("number")
	email := c.Query("email")
	if number == "" || email == "" {
		middleware.Fail(c, apperr.InvalidErr("Sipariş numarası ve e-posta zorunludur.", map[string]string{
			"number": "Bu alan zorunludur.",
			"email":  "Bu alan zorunludur.",
		}))
		return
	}

	o, err := h.Svc.GetForGuest(c.Request.Context(), number, email)
	if err != nil {
		middleware.Fail(c, mapOrderError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": toOrderJSON(o)})
}
