package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentOnline PaymentMethod = "ONLINE"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentOnline
}

type Order struct {
	ID            uint            `gorm:"column:order_id;primaryKey" json:"order_id"`
	UserID        uint            `gorm:"not null" json:"user_id"`
	User          *User           `gorm:"foreignKey:UserID;references:ID" json:"-"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(10);not null" json:"payment_method"`
	Status        OrderStatus     `gorm:"type:varchar(10);not null;default:'pending'" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	Details       []OrderDetail   `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE" json:"order_details"`
}

// OrderDetail is one immutable order line. Price is the unit price captured at
// checkout and is never re-read from the live product.
type OrderDetail struct {
	ID        uint             `gorm:"column:order_detail_id;primaryKey" json:"order_detail_id"`
	OrderID   uint             `gorm:"not null" json:"order_id"`
	ProductID uint             `gorm:"not null" json:"product_id"`
	Quantity  int              `gorm:"not null;check:chk_order_details_quantity,quantity > 0" json:"quantity"`
	Price     decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"price"`
	Product   *ProductSnapshot `gorm:"-" json:"product,omitempty"`
}

func (d OrderDetail) LineTotal() decimal.Decimal {
	return d.Price.Mul(decimal.NewFromInt(int64(d.Quantity)))
}

// SumLines is the conservation rule: an order total is the sum of its line totals.
func SumLines(lines []OrderDetail) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// IdempotencyKey remembers which order a client-supplied retry key produced.
type IdempotencyKey struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:uq_idempotency_user_key" json:"user_id"`
	Key       string    `gorm:"column:idempotency_key;size:255;not null;uniqueIndex:uq_idempotency_user_key" json:"key"`
	OrderID   uint      `gorm:"not null" json:"order_id"`
	Order     *Order    `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
