// Package seed loads the demo catalogue. Every row is matched on a natural
// key first, so running it twice changes nothing.
package seed

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kevin-vien/web-mobile-tranning/internal/auth"
	"github.com/kevin-vien/web-mobile-tranning/internal/models"
)

type Options struct {
	AdminPassword string
	UserPassword  string
}

type product struct {
	name, description, brand, ram, storage, image, category string
	price                                                   int64
	stock                                                   int
}

var categories = []models.Category{
	{Name: "Điện thoại", Description: "Smartphones"},
	{Name: "Tablet", Description: "Tablets"},
	{Name: "Phụ kiện", Description: "Accessories"},
}

var products = []product{
	{"iPhone 15 128GB", "iPhone 15, màn hình Super Retina XDR, chip A16 Bionic", "Apple", "6GB", "128GB", "uploads/products/Smart_phones/iphone/iphone_1.webp", "Điện thoại", 21990000, 50},
	{"Samsung Galaxy S24 256GB", "Galaxy S24 với màn hình Dynamic AMOLED 2X", "Samsung", "8GB", "256GB", "uploads/products/Smart_phones/samsung/samsung_1.webp", "Điện thoại", 18990000, 70},
	{"iPad Air M2 10.9-inch Wi‑Fi 128GB", "iPad Air M2 hiệu năng cao, màn 10.9-inch", "Apple", "8GB", "128GB", "uploads/products/Laptops/macbook/mac_1.webp", "Tablet", 15990000, 30},
	{"Xiaomi Pad 6 8GB/256GB", "Xiaomi Pad 6 màn 11-inch 144Hz", "Xiaomi", "8GB", "256GB", "uploads/products/Tables/pc_1.webp", "Tablet", 8990000, 40},
	{"Tai nghe Bluetooth AirPods Pro 2", "Chống ồn chủ động, sạc MagSafe", "Apple", "-", "-", "uploads/products/Accessories/ariport/blu_1.webp", "Phụ kiện", 5490000, 100},
	{"Sạc nhanh Samsung 25W USB-C", "Sạc nhanh 25W chính hãng Samsung", "Samsung", "-", "-", "uploads/products/Accessories/voice/voice_1.webp", "Phụ kiện", 390000, 200},
}

var banners = []models.Banner{
	{Title: "Giảm giá cuối tuần", ImageURL: "https://images.unsplash.com/photo-1511707171634-5f897ff02aa9?q=80&w=1600&auto=format&fit=crop", Link: "#"},
	{Title: "Deal hot điện thoại", ImageURL: "https://images.unsplash.com/photo-1510557880182-3d4d3cba35a5?q=80&w=1600&auto=format&fit=crop", Link: "#"},
}

func Run(ctx context.Context, db *gorm.DB, opts Options) error {
	if opts.AdminPassword == "" {
		opts.AdminPassword = "Admin@123"
	}
	if opts.UserPassword == "" {
		opts.UserPassword = "User@123"
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := seedUser(tx, "Admin", "admin@example.com", opts.AdminPassword, models.RoleAdmin); err != nil {
			return err
		}
		if err := seedUser(tx, "User", "user@example.com", opts.UserPassword, models.RoleUser); err != nil {
			return err
		}

		categoryIDs := make(map[string]uint, len(categories))
		for _, c := range categories {
			if err := tx.Where(models.Category{Name: c.Name}).Attrs(models.Category{Description: c.Description}).FirstOrCreate(&c).Error; err != nil {
				return err
			}
			categoryIDs[c.Name] = c.ID
		}

		for _, p := range products {
			categoryID := categoryIDs[p.category]
			row := models.Product{
				Name:        p.name,
				Description: p.description,
				Price:       decimal.NewFromInt(p.price),
				Stock:       p.stock,
				Brand:       p.brand,
				RAM:         p.ram,
				Storage:     p.storage,
				ImageURL:    p.image,
				CategoryID:  &categoryID,
			}
			if err := tx.Where(models.Product{Name: p.name}).Attrs(row).FirstOrCreate(&models.Product{}).Error; err != nil {
				return err
			}
		}

		for _, b := range banners {
			if err := tx.Where(models.Banner{Title: b.Title}).Attrs(b).FirstOrCreate(&models.Banner{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func seedUser(tx *gorm.DB, name, email, password string, role models.Role) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return tx.Create(&models.User{Name: name, Email: email, Password: hash, Role: role}).Error
}
