package analytics

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/catalog"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/orders"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/users"
)

// Service is the read-only aggregator over the order ledger and catalog.
// Sorguların sipariş mutasyonlarıyla eşzamanlı çalışması kabul edilir;
// raporlar pano içindir, mali kayıt değildir.
type Service struct {
	db       *gorm.DB
	topN     int
	lowStock int
	currency string
	logger   *slog.Logger
	now      func() time.Time
}

type Options struct {
	TopN              int
	LowStockThreshold int
	Currency          string
}

func NewService(db *gorm.DB, opts Options, logger *slog.Logger) *Service {
	if opts.TopN <= 0 {
		opts.TopN = 5
	}
	if opts.LowStockThreshold <= 0 {
		opts.LowStockThreshold = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:       db,
		topN:     opts.TopN,
		lowStock: opts.LowStockThreshold,
		currency: opts.Currency,
		logger:   logger,
		now:      time.Now,
	}
}

// revenueStatuses: iptal ve iade edilen siparişler gelir metriklerinden
// hariçtir; ham sayımlara dahildir.
func countsAsRevenue(s orders.OrderStatus) bool {
	return s != orders.StatusCancelled && s != orders.StatusRefunded
}

func (s *Service) Sales(ctx context.Context, w Window) (SalesReport, error) {
	start, end, err := w.Resolve(s.now())
	if err != nil {
		return SalesReport{}, err
	}

	var rows []orders.Order
	err = s.db.WithContext(ctx).
		Model(&orders.Order{}).
		Select("id", "order_status", "total_cents", "created_at").
		Where("created_at >= ? AND created_at < ?", start, end).
		Find(&rows).Error
	if err != nil {
		return SalesReport{}, err
	}
	return buildSales(w, start, end, rows, s.currency), nil
}

func buildSales(w Window, start, end time.Time, rows []orders.Order, currency string) SalesReport {
	r := SalesReport{
		Window:    w,
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
		Currency:  currency,
	}

	// takvim günlerine göre sıfır dolgulu seri
	buckets := make(map[string]*DailyPoint)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		p := &DailyPoint{Date: key}
		buckets[key] = p
		r.Daily = append(r.Daily, DailyPoint{Date: key})
	}

	for _, o := range rows {
		r.TotalOrders++
		if !countsAsRevenue(o.OrderStatus) {
			if o.OrderStatus == orders.StatusCancelled {
				r.CancelledOrders++
			}
			continue
		}
		r.RevenueOrders++
		r.TotalRevenueCents += o.TotalCents
		if p, ok := buckets[o.CreatedAt.Format(dateLayout)]; ok {
			p.RevenueCents += o.TotalCents
			p.OrderCount++
		}
	}
	if r.RevenueOrders > 0 {
		r.AverageOrderValueCents = r.TotalRevenueCents / r.RevenueOrders
	}
	for i := range r.Daily {
		if p, ok := buckets[r.Daily[i].Date]; ok {
			r.Daily[i] = *p
		}
	}
	return r
}

// soldLine is one historical order line joined with its order's status.
type soldLine struct {
	ProductID      string
	ProductName    string
	Quantity       int
	LineTotalCents int
}

func (s *Service) Products(ctx context.Context, w Window) (ProductsReport, error) {
	start, end, err := w.Resolve(s.now())
	if err != nil {
		return ProductsReport{}, err
	}

	var prods []catalog.Product
	if err := s.db.WithContext(ctx).Preload("Variants").Find(&prods).Error; err != nil {
		return ProductsReport{}, err
	}

	var sold []soldLine
	err = s.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id, order_items.product_name, order_items.quantity, order_items.line_total_cents").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at >= ? AND orders.created_at < ?", start, end).
		Where("orders.order_status NOT IN ?", []orders.OrderStatus{orders.StatusCancelled, orders.StatusRefunded}).
		Scan(&sold).Error
	if err != nil {
		return ProductsReport{}, err
	}

	return buildProducts(w, start, end, prods, sold, s.topN, s.lowStock), nil
}

func buildProducts(w Window, start, end time.Time, prods []catalog.Product, sold []soldLine, topN, lowStock int) ProductsReport {
	r := ProductsReport{
		Window:        w,
		StartDate:     start.Format(dateLayout),
		EndDate:       end.Format(dateLayout),
		TotalProducts: len(prods),
	}

	for _, p := range prods {
		if p.HasVariants() {
			for _, v := range p.Variants {
				r.TotalStock += v.Stock
				alert := StockAlert{
					ProductID: p.ID, VariantID: v.ID,
					Name: p.Name, Size: v.Size, Color: v.Color, Stock: v.Stock,
				}
				switch {
				case v.Stock == 0:
					r.OutOfStock = append(r.OutOfStock, alert)
				case v.Stock <= lowStock:
					r.LowStock = append(r.LowStock, alert)
				}
			}
			continue
		}
		r.TotalStock += p.Stock
		alert := StockAlert{ProductID: p.ID, Name: p.Name, Stock: p.Stock}
		switch {
		case p.Stock == 0:
			r.OutOfStock = append(r.OutOfStock, alert)
		case p.Stock <= lowStock:
			r.LowStock = append(r.LowStock, alert)
		}
	}

	agg := make(map[string]*ProductSales)
	for _, ln := range sold {
		r.TotalUnitsSold += ln.Quantity
		ps, ok := agg[ln.ProductID]
		if !ok {
			ps = &ProductSales{ProductID: ln.ProductID, Name: ln.ProductName}
			agg[ln.ProductID] = ps
		}
		ps.UnitsSold += ln.Quantity
		ps.RevenueCents += ln.LineTotalCents
	}
	top := make([]ProductSales, 0, len(agg))
	for _, ps := range agg {
		top = append(top, *ps)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].UnitsSold != top[j].UnitsSold {
			return top[i].UnitsSold > top[j].UnitsSold
		}
		return top[i].ProductID < top[j].ProductID
	})
	if len(top) > topN {
		top = top[:topN]
	}
	r.TopProducts = top
	return r
}

func (s *Service) Customers(ctx context.Context, w Window) (CustomersReport, error) {
	start, end, err := w.Resolve(s.now())
	if err != nil {
		return CustomersReport{}, err
	}

	var accounts []users.User
	err = s.db.WithContext(ctx).
		Model(&users.User{}).
		Select("id", "email", "name", "created_at").
		Where("role = ?", users.RoleCustomer).
		Find(&accounts).Error
	if err != nil {
		return CustomersReport{}, err
	}

	var rows []orders.Order
	err = s.db.WithContext(ctx).
		Model(&orders.Order{}).
		Select("id", "user_id", "order_status", "total_cents", "created_at").
		Where("user_id IS NOT NULL").
		Where("created_at >= ? AND created_at < ?", start, end).
		Find(&rows).Error
	if err != nil {
		return CustomersReport{}, err
	}

	return buildCustomers(w, start, end, accounts, rows, s.topN), nil
}

func buildCustomers(w Window, start, end time.Time, accounts []users.User, rows []orders.Order, topN int) CustomersReport {
	r := CustomersReport{
		Window:         w,
		StartDate:      start.Format(dateLayout),
		EndDate:        end.Format(dateLayout),
		TotalCustomers: len(accounts),
	}

	byID := make(map[string]users.User, len(accounts))
	for _, u := range accounts {
		byID[u.ID] = u
		if !u.CreatedAt.Before(start) && u.CreatedAt.Before(end) {
			r.NewCustomers++
		}
	}

	agg := make(map[string]*CustomerSales)
	for _, o := range rows {
		if o.UserID == nil {
			continue
		}
		u, known := byID[*o.UserID]
		if !known {
			continue // admin ya da silinmiş hesap
		}
		cs, ok := agg[u.ID]
		if !ok {
			cs = &CustomerSales{UserID: u.ID, Name: u.Name, Email: u.Email}
			agg[u.ID] = cs
		}
		cs.OrderCount++
		if countsAsRevenue(o.OrderStatus) {
			cs.TotalSpentCents += o.TotalCents
		}
	}
	r.ActiveCustomers = len(agg)

	top := make([]CustomerSales, 0, len(agg))
	for _, cs := range agg {
		top = append(top, *cs)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].TotalSpentCents != top[j].TotalSpentCents {
			return top[i].TotalSpentCents > top[j].TotalSpentCents
		}
		return top[i].UserID < top[j].UserID
	})
	if len(top) > topN {
		top = top[:topN]
	}
	r.TopCustomers = top
	return r
}
