package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kevin-vien/web-mobile-tranning/internal/models"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the header and its lines inside tx.
func (r *OrderRepository) Create(tx *gorm.DB, order *models.Order) error {
	return tx.Create(order).Error
}

// Get loads an order with its lines and a snapshot of every ordered product.
func (r *OrderRepository) Get(ctx context.Context, id uint) (*models.Order, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetTx is Get inside an open transaction.
func (r *OrderRepository) GetTx(tx *gorm.DB, id uint) (*models.Order, error) {
	return r.get(tx, id)
}

func (r *OrderRepository) get(db *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	err := db.Preload("Details", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_detail_id")
	}).First(&order, id).Error
	if err != nil {
		return nil, translate(err)
	}

	orders := []*models.Order{&order}
	if err := attachSnapshots(db, orders); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser returns a user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	db := r.db.WithContext(ctx)

	var orders []models.Order
	err := db.Preload("Details", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_detail_id")
	}).Where("user_id = ?", userID).Order("order_id DESC").Find(&orders).Error
	if err != nil {
		return nil, err
	}

	ptrs := make([]*models.Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	if err := attachSnapshots(db, ptrs); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus moves an order along the status machine under a row lock.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, next models.OrderStatus) (*models.Order, error) {
	var updated *models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
			return translate(err)
		}
		if !order.Status.CanTransition(next) {
			return ErrInvalidTransition
		}
		if err := tx.Model(&order).Update("status", next).Error; err != nil {
			return err
		}

		var err error
		updated, err = r.get(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// FindIdempotent returns the order id previously stored for (userID, key).
func (r *OrderRepository) FindIdempotent(tx *gorm.DB, userID uint, key string) (uint, bool, error) {
	var rec models.IdempotencyKey
	err := tx.Where("user_id = ? AND idempotency_key = ?", userID, key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return rec.OrderID, true, nil
}

// SaveIdempotent records key → order. A concurrent request with the same key
// makes this fail with ErrDuplicate.
func (r *OrderRepository) SaveIdempotent(tx *gorm.DB, userID uint, key string, orderID uint) error {
	rec := models.IdempotencyKey{UserID: userID, Key: key, OrderID: orderID}
	return translate(tx.Create(&rec).Error)
}

// attachSnapshots fills OrderDetail.Product. Lines whose product has since been
// deleted get a placeholder instead of an error.
func attachSnapshots(db *gorm.DB, orders []*models.Order) error {
	var ids []uint
	for _, o := range orders {
		for _, d := range o.Details {
			ids = append(ids, d.ProductID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var products []models.Product
	if err := db.Where("product_id IN ?", ids).Find(&products).Error; err != nil {
		return err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, o := range orders {
		for i := range o.Details {
			line := &o.Details[i]
			snap := models.MissingProduct(line.ProductID)
			if p, ok := byID[line.ProductID]; ok {
				snap = models.SnapshotOf(p)
			}
			line.Product = &snap
		}
	}
	return nil
}
