package orders

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/inventory"
)

type Order struct {
	ID          string  `gorm:"primaryKey;type:char(36)"`
	OrderNumber string  `gorm:"type:varchar(20);uniqueIndex:ux_orders_number;not null"`
	UserID      *string `gorm:"type:char(36);index:ix_orders_user_id"`
	GuestEmail  *string `gorm:"type:varchar(255);index:ix_orders_guest_email"`

	OrderStatus   OrderStatus   `gorm:"type:varchar(16);not null;default:'pending';index:ix_orders_status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(16);not null;default:'pending'"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(24);not null"`

	SubtotalCents int    `gorm:"not null"`
	ShippingCents int    `gorm:"not null;default:0"`
	TaxCents      int    `gorm:"not null;default:0"`
	DiscountCents int    `gorm:"not null;default:0"`
	TotalCents    int    `gorm:"not null"`
	Currency      string `gorm:"type:char(3);not null"`

	ShippingAddressJSON datatypes.JSON `gorm:"not null"`
	BillingAddressJSON  datatypes.JSON

	TrackingNumber *string `gorm:"type:varchar(64)"`

	CustomerNote *string `gorm:"type:text"`
	AdminNote    *string `gorm:"type:text"`
	InternalNote *string `gorm:"type:text"`

	CancelReason *string    `gorm:"type:varchar(255)"`
	CancelledBy  *string    `gorm:"type:varchar(64)"`
	CancelledAt  *time.Time `gorm:"type:datetime(3)"`

	// StockRestoredAt tam-bir-kez iade guard'ıdır: cancelled/refunded'a ilk
	// girişte koşullu olarak set edilir, ikinci iptal stok değiştirmez.
	StockRestoredAt *time.Time `gorm:"type:datetime(3)"`

	Items []OrderItem `gorm:"foreignKey:OrderID"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (Order) TableName() string { return "orders" }

// IsGuest reports whether the order has no owning account.
func (o Order) IsGuest() bool { return o.UserID == nil }

type OrderItem struct {
	ID        string  `gorm:"primaryKey;type:char(36)"`
	OrderID   string  `gorm:"type:char(36);not null;index:ix_order_items_order_id"`
	ProductID string  `gorm:"type:char(36);not null;index:ix_order_items_product_id"`
	VariantID *string `gorm:"type:char(36);index:ix_order_items_variant_id"`

	ProductName string `gorm:"type:varchar(255);not null"`
	SKU         string `gorm:"type:varchar(64)"`
	Size        string `gorm:"type:varchar(16)"`
	Color       string `gorm:"type:varchar(32)"`

	// UnitPriceCents sipariş anındaki nihai fiyattır (snapshot); katalogdaki
	// sonraki fiyat/indirim değişiklikleri geçmiş siparişleri etkilemez.
	UnitPriceCents int    `gorm:"not null"`
	Quantity       int    `gorm:"not null"`
	LineTotalCents int    `gorm:"not null"`
	Currency       string `gorm:"type:char(3);not null"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (OrderItem) TableName() string { return "order_items" }

// Ref resolves the stock pool this line item consumed.
func (it OrderItem) Ref() inventory.ItemRef {
	ref := inventory.ItemRef{ProductID: it.ProductID}
	if it.VariantID != nil {
		ref.VariantID = *it.VariantID
	}
	return ref
}

type OrderEvent struct {
	ID         string      `gorm:"primaryKey;type:char(36)"`
	OrderID    string      `gorm:"type:char(36);not null;index:ix_order_events_order_id"`
	Actor      string      `gorm:"type:varchar(64);not null"` // admin user id, "customer" veya "system"
	Action     string      `gorm:"type:varchar(32);not null"`
	FromStatus OrderStatus `gorm:"type:varchar(16);not null"`
	ToStatus   OrderStatus `gorm:"type:varchar(16);not null"`
	Note       *string     `gorm:"type:text"`
	CreatedAt  time.Time   `gorm:"type:datetime(3);not null"`
}

func (OrderEvent) TableName() string { return "order_events" }

// Address is the destination snapshot stored on the order as JSON.
type Address struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
	Email      string `json:"email"`
}

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// Validate checks required fields. Postal code is the only optional field.
func (a Address) Validate() map[string]string {
	fields := map[string]string{}
	req := []struct{ key, val string }{
		{"first_name", a.FirstName},
		{"last_name", a.LastName},
		{"phone", a.Phone},
		{"street", a.Street},
		{"city", a.City},
		{"country", a.Country},
	}
	for _, f := range req {
		if strings.TrimSpace(f.val) == "" {
			fields[f.key] = "Bu alan zorunludur."
		}
	}
	if !emailRe.MatchString(strings.TrimSpace(a.Email)) {
		fields["email"] = "Geçerli bir e-posta giriniz."
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
