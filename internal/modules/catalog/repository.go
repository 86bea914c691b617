package catalog

import (
	"context"

	"gorm.io/gorm"
)

// Repository is the read boundary the order lifecycle engine depends on.
// Prices and variant stock are read here only to snapshot and resolve;
// the authoritative stock check lives in the inventory ledger.
type Repository interface {
	Get(ctx context.Context, id string) (Product, error)
	ListActive(ctx context.Context, limit, offset int) ([]Product, error)
}

type GormRepo struct {
	db *gorm.DB
}

func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

func (r *GormRepo) Get(ctx context.Context, id string) (Product, error) {
	var p Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("size asc, color asc") }).
		First(&p, "id = ?", id).Error
	return p, err
}

func (r *GormRepo) ListActive(ctx context.Context, limit, offset int) ([]Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 24
	}
	if offset < 0 {
		offset = 0
	}
	var items []Product
	err := r.db.WithContext(ctx).
		Model(&Product{}).
		Where("status = ?", StatusActive).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("size asc, color asc") }).
		Order("updated_at desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	return items, err
}
