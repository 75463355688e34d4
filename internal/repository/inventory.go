package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kevin-vien/web-mobile-tranning/internal/models"
)

// LockForUpdate reads a product and holds an exclusive row lock on it until tx
// ends. Callers must lock products in ascending id order.
func LockForUpdate(tx *gorm.DB, productID uint) (*models.Product, error) {
	var product models.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, productID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// DecrementStock lowers stock by amount. The guard on stock keeps the column
// non-negative even if a caller skipped LockForUpdate.
func DecrementStock(tx *gorm.DB, productID uint, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("decrement %d for product %d: %w", amount, productID, ErrInvalidInput)
	}

	res := tx.Model(&models.Product{}).
		Where("product_id = ? AND stock >= ?", productID, amount).
		Update("stock", gorm.Expr("stock - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("decrement %d for product %d: %w", amount, productID, ErrNotEnough)
	}
	return nil
}
