package orders

import (
	"context"
	"strings"
	"time"
)

type AdminListParams struct {
	Q             string // sipariş no veya misafir e-posta
	Status        string
	PaymentStatus string
	From          *time.Time
	To            *time.Time
	Page          int
	PageSize      int
}

type AdminListResult struct {
	Items []Order
	Total int64
}

func (r *GormStore) AdminList(ctx context.Context, in AdminListParams) (AdminListResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size < 1 || size > 100 {
		size = 30
	}

	base := r.db.WithContext(ctx).Model(&Order{})
	if st := strings.TrimSpace(in.Status); st != "" {
		base = base.Where("order_status = ?", st)
	}
	if ps := strings.TrimSpace(in.PaymentStatus); ps != "" {
		base = base.Where("payment_status = ?", ps)
	}
	if q := strings.TrimSpace(in.Q); q != "" {
		like := "%" + q + "%"
		base = base.Where("(order_number LIKE ? OR guest_email LIKE ?)", like, like)
	}
	if in.From != nil {
		base = base.Where("created_at >= ?", *in.From)
	}
	if in.To != nil {
		base = base.Where("created_at < ?", *in.To)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return AdminListResult{}, err
	}

	var items []Order
	if err := base.
		Order("created_at DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&items).Error; err != nil {
		return AdminListResult{}, err
	}

	return AdminListResult{Items: items, Total: total}, nil
}

func (r *GormStore) AdminGetDetail(ctx context.Context, orderID string) (Order, []OrderEvent, error) {
	o, err := r.GetByID(ctx, orderID)
	if err != nil {
		return Order{}, nil, err
	}
	ev, err := r.Events(ctx, orderID)
	if err != nil {
		return Order{}, nil, err
	}
	return o, ev, nil
}
