package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kevin-vien/web-mobile-tranning/internal/models"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return fmt.Errorf("rating %d: %w", review.Rating, ErrInvalidInput)
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("product_id = ?", review.ProductID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("product %d: %w", review.ProductID, ErrNotFound)
	}

	return translate(r.db.WithContext(ctx).Create(review).Error)
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("review_id DESC").Find(&reviews).Error
	return reviews, err
}
