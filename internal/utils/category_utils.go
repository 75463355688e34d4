package utils

import (
	"context"

	"gorm.io/gorm"

	"github.com/kevin-vien/web-mobile-tranning/internal/models"
)

// CategoryTreeIDs returns rootID followed by every descendant category id,
// breadth first. A parent cycle in the data is visited only once.
func CategoryTreeIDs(ctx context.Context, db *gorm.DB, rootID uint) ([]uint, error) {
	result := []uint{rootID}
	seen := map[uint]bool{rootID: true}

	queue := []uint{rootID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		var children []models.Category
		err := db.WithContext(ctx).Where("parent_id = ?", current).Find(&children).Error
		if err != nil {
			return nil, err
		}

		for _, child := range children {
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			result = append(result, child.ID)
			queue = append(queue, child.ID)
		}
	}

	return result, nil
}
