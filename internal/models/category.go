package models

import "time"

type Category struct {
	ID          uint       `gorm:"column:category_id;primaryKey" json:"category_id"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	ParentID    *uint      `gorm:"column:parent_id" json:"parent_id,omitempty"` // nullable
	Parent      *Category  `gorm:"foreignKey:ParentID;references:ID" json:"parent,omitempty"`
	Children    []Category `gorm:"foreignKey:ParentID;references:ID;constraint:OnDelete:SET NULL" json:"children,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
