package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kevin-vien/web-mobile-tranning/internal/models"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Order("category_id").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Preload("Parent").First(&category, id).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

// ErrParentNotFound is returned when a category names a parent that does not exist.
var ErrParentNotFound = fmt.Errorf("parent category: %w", ErrNotFound)

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.checkParent(ctx, category.ID, category.ParentID); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	if err := r.checkParent(ctx, category.ID, category.ParentID); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Omit("Parent", "Children").Save(category).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) checkParent(ctx context.Context, selfID uint, parentID *uint) error {
	if parentID == nil {
		return nil
	}
	if selfID != 0 && *parentID == selfID {
		return fmt.Errorf("category %d cannot be its own parent: %w", selfID, ErrInvalidInput)
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Where("category_id = ?", *parentID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrParentNotFound
	}
	return nil
}
