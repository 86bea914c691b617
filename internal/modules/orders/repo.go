package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore is the MySQL-backed Store.
type GormStore struct{ db *gorm.DB }

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (r *GormStore) Create(ctx context.Context, o *Order) error {
	// order + items + ilk event tek transaction'da
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			return err
		}
		ev := OrderEvent{
			ID:         uuid.NewString(),
			OrderID:    o.ID,
			Actor:      "system",
			Action:     "created",
			FromStatus: StatusPending,
			ToStatus:   StatusPending,
			CreatedAt:  o.CreatedAt,
		}
		return tx.Create(&ev).Error
	})
}

func (r *GormStore) GetByID(ctx context.Context, id string) (Order, error) {
	var o Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&o, "id = ?", id).Error
	return o, err
}

func (r *GormStore) GetByNumber(ctx context.Context, number string) (Order, error) {
	var o Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&o, "order_number = ?", number).Error
	return o, err
}

func (r *GormStore) NumberExists(ctx context.Context, number string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&Order{}).
		Where("order_number = ?", number).
		Count(&n).Error
	return n > 0, err
}

func (r *GormStore) ListByOwner(ctx context.Context, in ListParams) (ListResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size < 1 || size > 100 {
		size = 20
	}

	// hesap siparişleri + aynı e-posta ile verilmiş misafir siparişleri
	email := strings.ToLower(strings.TrimSpace(in.Email))
	q := r.db.WithContext(ctx).Model(&Order{}).
		Where("user_id = ? OR (user_id IS NULL AND guest_email = ?)", in.UserID, email)
	if st := strings.TrimSpace(in.Status); st != "" {
		q = q.Where("order_status = ?", st)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return ListResult{}, err
	}

	var items []Order
	if err := q.
		Preload("Items").
		Order("created_at DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&items).Error; err != nil {
		return ListResult{}, err
	}

	return ListResult{Items: items, Total: total}, nil
}

func (r *GormStore) ApplyTransition(ctx context.Context, orderID string, from OrderStatus, upd TransitionUpdate, ev OrderEvent) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"updated_at": time.Now()}
		if upd.OrderStatus != nil {
			updates["order_status"] = *upd.OrderStatus
		}
		if upd.PaymentStatus != nil {
			updates["payment_status"] = *upd.PaymentStatus
		}
		if upd.TrackingNumber != nil {
			updates["tracking_number"] = *upd.TrackingNumber
		}
		if upd.AdminNote != nil {
			updates["admin_note"] = *upd.AdminNote
		}
		if upd.CancelReason != nil {
			updates["cancel_reason"] = *upd.CancelReason
		}
		if upd.CancelledBy != nil {
			updates["cancelled_by"] = *upd.CancelledBy
		}
		if upd.CancelledAt != nil {
			updates["cancelled_at"] = *upd.CancelledAt
		}

		// optimistic guard: durum bu arada değiştiyse hiçbir şey yazma
		res := tx.Model(&Order{}).
			Where("id = ? AND order_status = ?", orderID, from).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		return tx.Create(&ev).Error
	})
	return applied, err
}

func (r *GormStore) MarkStockRestored(ctx context.Context, orderID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Order{}).
		Where("id = ? AND stock_restored_at IS NULL", orderID).
		Update("stock_restored_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Events returns the audit trail, newest first.
func (r *GormStore) Events(ctx context.Context, orderID string) ([]OrderEvent, error) {
	var ev []OrderEvent
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&ev, "order_id = ?", orderID).Error
	return ev, err
}

// IsNotFound normalises the storage-level not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound)
}
