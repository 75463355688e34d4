package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID               uint      `gorm:"column:user_id;primaryKey" json:"user_id"`
	Name             string    `gorm:"size:100;not null" json:"name"`
	Email            string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Password         string    `gorm:"size:255;not null;default:''" json:"-"`
	Phone            string    `gorm:"size:20" json:"phone,omitempty"`
	Address          string    `gorm:"size:255" json:"address,omitempty"`
	Role             Role      `gorm:"type:varchar(10);not null;default:'user'" json:"role"`
	FavouriteProduct string    `gorm:"type:text" json:"-"`
	OIDCSubject      *string   `gorm:"column:oidc_subject;size:255;uniqueIndex" json:"-"` // OpenID Connect identifier
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
