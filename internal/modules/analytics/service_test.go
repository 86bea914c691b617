package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/catalog"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/orders"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/users"
)

func TestWindowResolve(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

	start, end, err := Window7d.Resolve(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, now, end)

	start, _, err = Window1y.Resolve(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), start)

	_, _, err = Window("14d").Resolve(now)
	assert.Error(t, err)
}

func TestBuildSalesRevenueExclusion(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	start, end, err := Window30d.Resolve(now)
	require.NoError(t, err)

	day := func(offset int) time.Time { return start.AddDate(0, 0, offset).Add(10 * time.Hour) }
	rows := []orders.Order{
		{ID: "o1", OrderStatus: orders.StatusDelivered, TotalCents: 5000, CreatedAt: day(1)},
		{ID: "o2", OrderStatus: orders.StatusDelivered, TotalCents: 7000, CreatedAt: day(1)},
		{ID: "o3", OrderStatus: orders.StatusCancelled, TotalCents: 4000, CreatedAt: day(2)},
		{ID: "o4", OrderStatus: orders.StatusRefunded, TotalCents: 9000, CreatedAt: day(3)},
	}

	r := buildSales(Window30d, start, end, rows, "TND")

	// iptal/iade gelirden hariç, ham sayımda dahil
	assert.Equal(t, 12000, r.TotalRevenueCents)
	assert.Equal(t, 4, r.TotalOrders)
	assert.Equal(t, 2, r.RevenueOrders)
	assert.Equal(t, 1, r.CancelledOrders)
	assert.Equal(t, 6000, r.AverageOrderValueCents)

	// sıfır dolgulu takvim serisi
	assert.GreaterOrEqual(t, len(r.Daily), 30)
	assert.Equal(t, start.Format("2006-01-02"), r.Daily[0].Date)
	assert.Equal(t, 0, r.Daily[0].RevenueCents)
	assert.Equal(t, 12000, r.Daily[1].RevenueCents)
	assert.Equal(t, 2, r.Daily[1].OrderCount)
	assert.Equal(t, 0, r.Daily[2].OrderCount) // iptal edilen seriye girmez
}

func TestBuildSalesEmptyWindow(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	start, end, _ := Window7d.Resolve(now)

	r := buildSales(Window7d, start, end, nil, "TND")
	assert.Equal(t, 0, r.TotalRevenueCents)
	assert.Equal(t, 0, r.AverageOrderValueCents)
	assert.Len(t, r.Daily, 8) // 7 tam gün + bugünün kısmi günü
}

func TestBuildProducts(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	start, end, _ := Window30d.Resolve(now)

	prods := []catalog.Product{
		{ID: "p1", Name: "Tişört", Variants: []catalog.Variant{
			{ID: "v1", Size: "M", Color: "Black", Stock: 0},
			{ID: "v2", Size: "L", Color: "Black", Stock: 3},
			{ID: "v3", Size: "XL", Color: "Black", Stock: 40},
		}},
		{ID: "p2", Name: "Kemer", Stock: 0},
		{ID: "p3", Name: "Şapka", Stock: 2},
	}
	sold := []soldLine{
		{ProductID: "p1", ProductName: "Tişört", Quantity: 6, LineTotalCents: 30000},
		{ProductID: "p1", ProductName: "Tişört", Quantity: 2, LineTotalCents: 10000},
		{ProductID: "p3", ProductName: "Şapka", Quantity: 3, LineTotalCents: 6000},
	}

	r := buildProducts(Window30d, start, end, prods, sold, 2, 5)

	assert.Equal(t, 3, r.TotalProducts)
	assert.Equal(t, 45, r.TotalStock)
	assert.Equal(t, 11, r.TotalUnitsSold)

	require.Len(t, r.TopProducts, 2)
	assert.Equal(t, "p1", r.TopProducts[0].ProductID)
	assert.Equal(t, 8, r.TopProducts[0].UnitsSold)
	assert.Equal(t, 40000, r.TopProducts[0].RevenueCents)
	assert.Equal(t, "p3", r.TopProducts[1].ProductID)

	require.Len(t, r.OutOfStock, 2) // v1 ve Kemer
	require.Len(t, r.LowStock, 2)   // v2 (3) ve Şapka (2)
	assert.Equal(t, "v1", r.OutOfStock[0].VariantID)
	assert.Equal(t, "p2", r.OutOfStock[1].ProductID)
}

func TestBuildCustomers(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	start, end, _ := Window30d.Resolve(now)

	uid := func(s string) *string { return &s }
	accounts := []users.User{
		{ID: "u1", Name: "Ayşe", Email: "ayse@example.com", CreatedAt: start.AddDate(0, 0, -60)},
		{ID: "u2", Name: "Mehdi", Email: "mehdi@example.com", CreatedAt: start.AddDate(0, 0, 5)},
		{ID: "u3", Name: "Sana", Email: "sana@example.com", CreatedAt: start.AddDate(0, 0, -1)},
	}
	rows := []orders.Order{
		{ID: "o1", UserID: uid("u1"), OrderStatus: orders.StatusDelivered, TotalCents: 8000, CreatedAt: start.AddDate(0, 0, 1)},
		{ID: "o2", UserID: uid("u1"), OrderStatus: orders.StatusCancelled, TotalCents: 5000, CreatedAt: start.AddDate(0, 0, 2)},
		{ID: "o3", UserID: uid("u2"), OrderStatus: orders.StatusConfirmed, TotalCents: 12000, CreatedAt: start.AddDate(0, 0, 3)},
	}

	r := buildCustomers(Window30d, start, end, accounts, rows, 5)

	assert.Equal(t, 3, r.TotalCustomers)
	assert.Equal(t, 2, r.ActiveCustomers)
	assert.Equal(t, 1, r.NewCustomers)

	require.Len(t, r.TopCustomers, 2)
	assert.Equal(t, "u2", r.TopCustomers[0].UserID)
	assert.Equal(t, 12000, r.TopCustomers[0].TotalSpentCents)
	assert.Equal(t, "u1", r.TopCustomers[1].UserID)
	// iptal edilen sipariş harcamaya girmez ama sipariş sayısına girer
	assert.Equal(t, 8000, r.TopCustomers[1].TotalSpentCents)
	assert.Equal(t, 2, r.TopCustomers[1].OrderCount)
}
