package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kevin-vien/web-mobile-tranning/internal/models"
	"github.com/kevin-vien/web-mobile-tranning/internal/utils"
)

const (
	DefaultListLimit    = 8
	DefaultShowcaseSize = 20
)

type ProductFilter struct {
	Search     string
	Brand      string
	RAM        string
	Storage    string
	CategoryID *uint
	Category   string // category name, ignored when CategoryID is set
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Limit      int
	Random     bool
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	db := r.db.WithContext(ctx)
	q := db.Model(&models.Product{}).Preload("Category")

	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where(db.Where("products.name LIKE ?", like).
			Or("products.brand LIKE ?", like).
			Or("products.description LIKE ?", like))
	}
	if f.Brand != "" {
		q = q.Where("products.brand = ?", f.Brand)
	}
	if f.RAM != "" {
		q = q.Where("products.ram = ?", f.RAM)
	}
	if f.Storage != "" {
		q = q.Where("products.storage = ?", f.Storage)
	}

	switch {
	case f.CategoryID != nil:
		ids, err := utils.CategoryTreeIDs(ctx, r.db, *f.CategoryID)
		if err != nil {
			return nil, err
		}
		q = q.Where("products.category_id IN ?", ids)
	case f.Category != "":
		q = q.Joins("JOIN categories ON categories.category_id = products.category_id").
			Where("categories.name = ?", f.Category)
	}

	if f.MinPrice != nil {
		q = q.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("products.price <= ?", *f.MaxPrice)
	}

	if f.Random {
		q = q.Order("RANDOM()")
	} else {
		q = q.Order("products.product_id")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var products []models.Product
	if err := q.Limit(limit).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.Stock < 0 || product.Price.IsNegative() {
		return ErrInvalidInput
	}
	if err := r.checkCategory(ctx, product.CategoryID); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	if product.Stock < 0 || product.Price.IsNegative() {
		return ErrInvalidInput
	}
	if err := r.checkCategory(ctx, product.CategoryID); err != nil {
		return err
	}
	// Category is reloaded by the caller; saving it here would upsert a stale copy.
	if err := r.db.WithContext(ctx).Omit("Category").Save(product).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Promotions(ctx context.Context, limit int) ([]models.Product, error) {
	return r.showcase(ctx, limit, "is_promotion = ?", true)
}

func (r *ProductRepository) Newest(ctx context.Context, limit int) ([]models.Product, error) {
	return r.showcase(ctx, limit, "is_new = ?", true)
}

// Latest lists every product, most recently created first.
func (r *ProductRepository) Latest(ctx context.Context, limit int) ([]models.Product, error) {
	return r.showcase(ctx, limit, "1 = 1")
}

// Bestsellers ranks products by units sold. Products that never sold are left
// out; when nothing has sold yet the latest products are returned instead.
func (r *ProductRepository) Bestsellers(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = DefaultShowcaseSize
	}

	var ranked []soldCount
	err := r.db.WithContext(ctx).
		Table("order_details").
		Select("order_details.product_id AS product_id, SUM(order_details.quantity) AS total_sold").
		Joins("JOIN products ON products.product_id = order_details.product_id").
		Group("order_details.product_id").
		Having("SUM(order_details.quantity) > 0").
		Order("total_sold DESC").
		Limit(limit).
		Scan(&ranked).Error
	if err != nil || len(ranked) == 0 {
		return r.Latest(ctx, limit)
	}

	ids := make([]uint, 0, len(ranked))
	for _, row := range ranked {
		ids = append(ids, row.ProductID)
	}

	var found []models.Product
	if err := r.db.WithContext(ctx).Preload("Category").Where("product_id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

type soldCount struct {
	ProductID uint
	TotalSold int64
}

// AveragePrice averages list prices over a category and all its descendants.
func (r *ProductRepository) AveragePrice(ctx context.Context, categoryID uint) (decimal.Decimal, error) {
	categoryIDs, err := utils.CategoryTreeIDs(ctx, r.db, categoryID)
	if err != nil {
		return decimal.Zero, err
	}

	var avg float64
	err = r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id IN ?", categoryIDs).
		Select("COALESCE(AVG(price), 0)").
		Scan(&avg).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(avg).Round(2), nil
}

func (r *ProductRepository) showcase(ctx context.Context, limit int, cond string, args ...any) ([]models.Product, error) {
	if limit <= 0 {
		limit = DefaultShowcaseSize
	}
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where(cond, args...).
		Order("created_at DESC").
		Order("product_id DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *ProductRepository) checkCategory(ctx context.Context, categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Where("category_id = ?", *categoryID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("category %d: %w", *categoryID, ErrNotFound)
	}
	return nil
}
