package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kevin-vien/web-mobile-tranning/internal/models"
)

type BannerRepository struct {
	db *gorm.DB
}

func NewBannerRepository(db *gorm.DB) *BannerRepository {
	return &BannerRepository{db: db}
}

func (r *BannerRepository) List(ctx context.Context) ([]models.Banner, error) {
	var banners []models.Banner
	err := r.db.WithContext(ctx).Order("banner_id").Find(&banners).Error
	return banners, err
}

func (r *BannerRepository) Create(ctx context.Context, banner *models.Banner) error {
	return translate(r.db.WithContext(ctx).Create(banner).Error)
}
