package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Ahmedchetoui/Delta-sub000/internal/shared/cache"
)

// ReportTTL: panolar 60 saniyelik bayatlığı tolere eder.
const ReportTTL = 60 * time.Second

// CachedService wraps the aggregator with a short-TTL report cache keyed by
// (dimension, window). Cache failures fall through to the aggregator.
type CachedService struct {
	inner  *Service
	cache  cache.Cache
	logger *slog.Logger
}

func NewCachedService(inner *Service, c cache.Cache, logger *slog.Logger) *CachedService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedService{inner: inner, cache: c, logger: logger}
}

func (c *CachedService) Sales(ctx context.Context, w Window) (SalesReport, error) {
	var out SalesReport
	if c.lookup(ctx, DimensionSales, w, &out) {
		return out, nil
	}
	out, err := c.inner.Sales(ctx, w)
	if err != nil {
		return SalesReport{}, err
	}
	c.store(ctx, DimensionSales, w, out)
	return out, nil
}

func (c *CachedService) Products(ctx context.Context, w Window) (ProductsReport, error) {
	var out ProductsReport
	if c.lookup(ctx, DimensionProducts, w, &out) {
		return out, nil
	}
	out, err := c.inner.Products(ctx, w)
	if err != nil {
		return ProductsReport{}, err
	}
	c.store(ctx, DimensionProducts, w, out)
	return out, nil
}

func (c *CachedService) Customers(ctx context.Context, w Window) (CustomersReport, error) {
	var out CustomersReport
	if c.lookup(ctx, DimensionCustomers, w, &out) {
		return out, nil
	}
	out, err := c.inner.Customers(ctx, w)
	if err != nil {
		return CustomersReport{}, err
	}
	c.store(ctx, DimensionCustomers, w, out)
	return out, nil
}

func (c *CachedService) lookup(ctx context.Context, d Dimension, w Window, dst any) bool {
	if c.cache == nil {
		return false
	}
	key := c.cache.GenerateKey(string(d), string(w))
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("analytics.cache_get_failed", slog.String("key", key), slog.Any("err", err))
		return false
	}
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		c.logger.Warn("analytics.cache_decode_failed", slog.String("key", key), slog.Any("err", err))
		return false
	}
	return true
}

func (c *CachedService) store(ctx context.Context, d Dimension, w Window, v any) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	key := c.cache.GenerateKey(string(d), string(w))
	if err := c.cache.Set(ctx, key, string(raw), ReportTTL); err != nil {
		c.logger.Warn("analytics.cache_set_failed", slog.String("key", key), slog.Any("err", err))
	}
}
