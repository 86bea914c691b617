package analytics

import (
	"time"

	"github.com/Ahmedchetoui/Delta-sub000/internal/shared/apperr"
)

// Window is a relative reporting range resolved against "now".
type Window string

const (
	Window7d  Window = "7d"
	Window30d Window = "30d"
	Window90d Window = "90d"
	Window1y  Window = "1y"
)

type Dimension string

const (
	DimensionSales     Dimension = "sales"
	DimensionProducts  Dimension = "products"
	DimensionCustomers Dimension = "customers"
)

func ValidDimension(d Dimension) bool {
	return d == DimensionSales || d == DimensionProducts || d == DimensionCustomers
}

// Resolve turns the window into a half-open [start, now) range. Start is
// truncated to midnight so daily buckets line up with calendar days.
func (w Window) Resolve(now time.Time) (time.Time, time.Time, error) {
	var days int
	switch w {
	case Window7d:
		days = 7
	case Window30d:
		days = 30
	case Window90d:
		days = 90
	case Window1y:
		days = 365
	default:
		return time.Time{}, time.Time{}, apperr.InvalidErr("geçersiz zaman aralığı", map[string]string{
			"window": "7d, 30d, 90d veya 1y olmalı.",
		})
	}
	start := now.AddDate(0, 0, -days)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, now.Location())
	return start, now, nil
}

// DailyPoint is one calendar-day bucket of the sales series.
type DailyPoint struct {
	Date         string `json:"date"` // YYYY-MM-DD
	RevenueCents int    `json:"revenue_cents"`
	OrderCount   int    `json:"order_count"`
}

// SalesReport: gelir metrikleri iptal/iade hariç; TotalOrders ham sayıdır ve
// iptal edilenleri de içerir.
type SalesReport struct {
	Window    Window `json:"window"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	TotalRevenueCents      int `json:"total_revenue_cents"`
	TotalOrders            int `json:"total_orders"`
	RevenueOrders          int `json:"revenue_orders"`
	CancelledOrders        int `json:"cancelled_orders"`
	AverageOrderValueCents int `json:"average_order_value_cents"`

	Currency string       `json:"currency"`
	Daily    []DailyPoint `json:"daily"`
}

type ProductSales struct {
	ProductID    string `json:"product_id"`
	Name         string `json:"name"`
	UnitsSold    int    `json:"units_sold"`
	RevenueCents int    `json:"revenue_cents"`
}

type StockAlert struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Name      string `json:"name"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Stock     int    `json:"stock"`
}

type ProductsReport struct {
	Window    Window `json:"window"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	TotalProducts  int `json:"total_products"`
	TotalStock     int `json:"total_stock"`
	TotalUnitsSold int `json:"total_units_sold"`

	TopProducts []ProductSales `json:"top_products"`
	OutOfStock  []StockAlert   `json:"out_of_stock"`
	LowStock    []StockAlert   `json:"low_stock"`
}

type CustomerSales struct {
	UserID          string `json:"user_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	OrderCount      int    `json:"order_count"`
	TotalSpentCents int    `json:"total_spent_cents"`
}

type CustomersReport struct {
	Window    Window `json:"window"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	TotalCustomers  int `json:"total_customers"`
	ActiveCustomers int `json:"active_customers"`
	NewCustomers    int `json:"new_customers"`

	TopCustomers []CustomerSales `json:"top_customers"`
}

const dateLayout = "2006-01-02"
