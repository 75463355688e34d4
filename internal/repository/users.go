package repository

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kevin-vien/web-mobile-tranning/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create fails with ErrDuplicate when the email is taken.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("user_id = ?", id).Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ProfileUpdate holds the editable profile fields; nil leaves a field unchanged.
type ProfileUpdate struct {
	Name    *string
	Phone   *string
	Address *string
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uint, p ProfileUpdate) (*models.User, error) {
	updates := map[string]any{}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Phone != nil {
		updates["phone"] = *p.Phone
	}
	if p.Address != nil {
		updates["address"] = *p.Address
	}
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&models.User{}).Where("user_id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) Favorites(ctx context.Context, id uint) ([]uint, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return parseFavorites(user.FavouriteProduct), nil
}

// ToggleFavorite adds productID to the user's favourites, or removes it when
// already present, and returns the resulting list.
func (r *UserRepository) ToggleFavorite(ctx context.Context, id, productID uint) ([]uint, error) {
	var favs []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
			return translate(err)
		}

		favs = parseFavorites(user.FavouriteProduct)
		idx := -1
		for i, f := range favs {
			if f == productID {
				idx = i
				break
			}
		}
		if idx >= 0 {
			favs = append(favs[:idx], favs[idx+1:]...)
		} else {
			favs = append(favs, productID)
		}

		data, err := json.Marshal(favs)
		if err != nil {
			return err
		}
		return tx.Model(&user).Update("favourite_product", string(data)).Error
	})
	if err != nil {
		return nil, err
	}
	return favs, nil
}

type OIDCProfile struct {
	Subject string
	Name    string
	Email   string
	Phone   string
}

// UpsertOIDC finds the user bound to an OpenID subject. An existing account
// with the same email is linked; otherwise a new password-less user is made.
func (r *UserRepository) UpsertOIDC(ctx context.Context, p OIDCProfile) (*models.User, error) {
	if p.Subject == "" || p.Email == "" {
		return nil, ErrInvalidInput
	}

	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("oidc_subject = ?", p.Subject).First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		subject := p.Subject
		err = tx.Where("email = ?", p.Email).First(&user).Error
		switch {
		case err == nil:
			return tx.Model(&user).Update("oidc_subject", subject).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{
				Name:        p.Name,
				Email:       p.Email,
				Phone:       p.Phone,
				Role:        models.RoleUser,
				OIDCSubject: &subject,
			}
			return translate(tx.Create(&user).Error)
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func parseFavorites(raw string) []uint {
	favs := []uint{}
	if raw == "" {
		return favs
	}
	var parsed []uint
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return favs
	}
	seen := make(map[uint]bool, len(parsed))
	for _, id := range parsed {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		favs = append(favs, id)
	}
	return favs
}
