package models

type Banner struct {
	ID       uint   `gorm:"column:banner_id;primaryKey" json:"banner_id"`
	Title    string `gorm:"size:150" json:"title"`
	ImageURL string `gorm:"size:255" json:"image_url"`
	Link     string `gorm:"size:255" json:"link"`
}
