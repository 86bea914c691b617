package admin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ahmedchetoui/Delta-sub000/internal/http/middleware"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/analytics"
	"github.com/Ahmedchetoui/Delta-sub000/internal/shared/apperr"
)

// Reporter is what the handler needs from the aggregator; both the plain and
// cached services satisfy it.
type Reporter interface {
	Sales(ctx context.Context, w analytics.Window) (analytics.SalesReport, error)
	Products(ctx context.Context, w analytics.Window) (analytics.ProductsReport, error)
	Customers(ctx context.Context, w analytics.Window) (analytics.CustomersReport, error)
}

type AnalyticsHandler struct {
	Svc    Reporter
	Logger *slog.Logger
}

func NewAnalyticsHandler(svc Reporter, logger *slog.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsHandler{Svc: svc, Logger: logger}
}

// Report: GET /api/v1/admin/analytics/:dimension?window=30d
// Aggregator hatası panoyu bloklamaz: sıfırlanmış rapor döner.
func (h *AnalyticsHandler) Report(c *gin.Context) {
	dim := analytics.Dimension(c.Param("dimension"))
	if !analytics.ValidDimension(dim) {
		middleware.Fail(c, apperr.NotFoundErr("Bilinmeyen rapor boyutu."))
		return
	}
	w := analytics.Window(c.DefaultQuery("window", "30d"))

	ctx := c.Request.Context()
	var (
		report any
		err    error
	)
	switch dim {
	case analytics.DimensionSales:
		report, err = h.Svc.Sales(ctx, w)
	case analytics.DimensionProducts:
		report, err = h.Svc.Products(ctx, w)
	case analytics.DimensionCustomers:
		report, err = h.Svc.Customers(ctx, w)
	}
	if err != nil {
		if ae, ok := apperr.As(err); ok && ae.Kind == apperr.Invalid {
			middleware.Fail(c, ae)
			return
		}
		h.Logger.Error("analytics.report_failed",
			slog.String("dimension", string(dim)),
			slog.String("window", string(w)),
			slog.Any("err", err),
		)
		report = zeroReport(dim, w)
		c.JSON(http.StatusOK, gin.H{"report": report, "degraded": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func zeroReport(dim analytics.Dimension, w analytics.Window) any {
	switch dim {
	case analytics.DimensionSales:
		return analytics.SalesReport{Window: w}
	case analytics.DimensionProducts:
		return analytics.ProductsReport{Window: w}
	default:
		return analytics.CustomersReport{Window: w}
	}
}
