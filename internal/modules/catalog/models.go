package catalog

import "time"

const (
	StatusActive   = "active"
	StatusDraft    = "draft"
	StatusArchived = "archived"
)

type Product struct {
	ID              string `gorm:"primaryKey;type:char(36)"`
	Name            string `gorm:"type:varchar(255);not null"`
	Slug            string `gorm:"type:varchar(255);uniqueIndex:ux_products_slug;not null"`
	Description     string `gorm:"type:text"`
	Status          string `gorm:"type:varchar(16);not null;default:'active';index:ix_products_status"`
	BasePriceCents  int    `gorm:"not null"`
	DiscountPercent int    `gorm:"not null;default:0"`
	Currency        string `gorm:"type:char(3);not null;default:'TND'"`

	// Stock, varyantı olmayan ürünler için tek havuzdur; varyantlı
	// ürünlerde stok product_variants satırlarında tutulur.
	Stock int `gorm:"not null;default:0"`

	Variants []Variant `gorm:"foreignKey:ProductID"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (Product) TableName() string { return "products" }

type Variant struct {
	ID        string `gorm:"primaryKey;type:char(36)"`
	ProductID string `gorm:"type:char(36);not null;uniqueIndex:ux_variants_product_size_color,priority:1"`
	Size      string `gorm:"type:varchar(16);not null;uniqueIndex:ux_variants_product_size_color,priority:2"`
	Color     string `gorm:"type:varchar(32);not null;uniqueIndex:ux_variants_product_size_color,priority:3"`
	SKU       string `gorm:"type:varchar(64);not null"`
	Stock     int    `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (Variant) TableName() string { return "product_variants" }

// HasVariants reports whether stock is tracked per (size, color) variant or
// on the product's single implicit pool.
func (p Product) HasVariants() bool { return len(p.Variants) > 0 }

// FinalPriceCents is the effective unit price: base price minus the active
// discount. Orders snapshot this value at creation; later price or discount
// changes never alter historical orders.
func (p Product) FinalPriceCents() int {
	if p.DiscountPercent <= 0 {
		return p.BasePriceCents
	}
	d := p.DiscountPercent
	if d > 100 {
		d = 100
	}
	return p.BasePriceCents - (p.BasePriceCents*d)/100
}

// FindVariant matches a (size, color) pair. Comparison is exact on the
// stored tags.
func (p Product) FindVariant(size, color string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.Size == size && v.Color == color {
			return v, true
		}
	}
	return Variant{}, false
}
