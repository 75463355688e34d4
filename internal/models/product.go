package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint             `gorm:"column:product_id;primaryKey" json:"product_id"`
	Name        string           `gorm:"size:150;not null" json:"name"`
	Description string           `gorm:"type:text" json:"description,omitempty"`
	Price       decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"price"`
	SalePrice   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"sale_price,omitempty"`
	Stock       int              `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	Brand       string           `gorm:"size:100" json:"brand,omitempty"`
	RAM         string           `gorm:"column:ram;size:20" json:"ram,omitempty"`
	Storage     string           `gorm:"size:50" json:"storage,omitempty"`
	ImageURL    string           `gorm:"size:255" json:"image_url,omitempty"`
	CategoryID  *uint            `gorm:"column:category_id" json:"category_id,omitempty"`
	Category    *Category        `gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	IsPromotion bool             `gorm:"not null;default:false" json:"is_promotion"`
	IsNew       bool             `gorm:"not null;default:false" json:"is_new"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ProductSnapshot is the read-only view of a product embedded in order reads.
type ProductSnapshot struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  *string         `json:"image_url"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
}

const UnavailableProductName = "Product no longer available"

func SnapshotOf(p Product) ProductSnapshot {
	s := ProductSnapshot{ProductID: p.ID, Name: p.Name, Price: p.Price, Available: true}
	if p.ImageURL != "" {
		img := p.ImageURL
		s.ImageURL = &img
	}
	return s
}

// MissingProduct stands in for a product deleted after it was ordered.
func MissingProduct(productID uint) ProductSnapshot {
	return ProductSnapshot{ProductID: productID, Name: UnavailableProductName, Price: decimal.Zero}
}
