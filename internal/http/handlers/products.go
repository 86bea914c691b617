package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ahmedchetoui/Delta-sub000/internal/http/middleware"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/catalog"
	"github.com/Ahmedchetoui/Delta-sub000/internal/shared/apperr"
)

type ProductsHandler struct {
	Repo catalog.Repository
}

func NewProductsHandler(repo catalog.Repository) *ProductsHandler {
	return &ProductsHandler{Repo: repo}
}

type variantJSON struct {
	ID    string `json:"id"`
	Size  string `json:"size"`
	Color string `json:"color"`
	SKU   string `json:"sku"`
	// Stock görüntüleme içindir; sipariş anındaki yetkili kontrol ayrıdır.
	Stock int `json:"stock"`
}

type productJSON struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Slug            string        `json:"slug"`
	Description     string        `json:"description,omitempty"`
	Status          string        `json:"status"`
	BasePriceCents  int           `json:"base_price_cents"`
	DiscountPercent int           `json:"discount_percent"`
	FinalPriceCents int           `json:"final_price_cents"`
	Currency        string        `json:"currency"`
	Stock           int           `json:"stock"`
	Variants        []variantJSON `json:"variants,omitempty"`
}

func toProductJSON(p catalog.Product) productJSON {
	out := productJSON{
		ID:              p.ID,
		Name:            p.Name,
		Slug:            p.Slug,
		Description:     p.Description,
		Status:          p.Status,
		BasePriceCents:  p.BasePriceCents,
		DiscountPercent: p.DiscountPercent,
		FinalPriceCents: p.FinalPriceCents(),
		Currency:        p.Currency,
		Stock:           p.Stock,
	}
	for _, v := range p.Variants {
		out.Variants = append(out.Variants, variantJSON{
			ID: v.ID, Size: v.Size, Color: v.Color, SKU: v.SKU, Stock: v.Stock,
		})
	}
	return out
}

// List: GET /api/v1/products
func (h *ProductsHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "24"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.Repo.ListActive(c.Request.Context(), limit, offset)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	out := make([]productJSON, 0, len(items))
	for _, p := range items {
		out = append(out, toProductJSON(p))
	}
	c.JSON(http.StatusOK, gin.H{"products": out})
}

// Get: GET /api/v1/products/:id
func (h *ProductsHandler) Get(c *gin.Context) {
	p, err := h.Repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			middleware.Fail(c, apperr.NotFoundErr("Ürün bulunamadı."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	if p.Status != catalog.StatusActive {
		middleware.Fail(c, apperr.NotFoundErr("Ürün bulunamadı."))
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": toProductJSON(p)})
}
