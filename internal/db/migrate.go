package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/kevin-vien/web-mobile-tranning/internal/logging"
	"github.com/kevin-vien/web-mobile-tranning/internal/models"
)

// MaxIndexesPerTable is the smallest per-table index cap among the engines we
// target (MySQL/InnoDB: 64). Foreign keys are declared as constraints only,
// never with an extra secondary index, so the schema stays well below it.
const MaxIndexesPerTable = 64

// Schema lists every table in dependency order.
func Schema() []any {
	return []any{
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderDetail{},
		&models.Review{},
		&models.Banner{},
		&models.IdempotencyKey{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Schema()...); err != nil {
		return fmt.Errorf("failed to migrate DB: %w", err)
	}

	for _, model := range Schema() {
		indexes, err := db.Migrator().GetIndexes(model)
		if err != nil {
			// Not every dialect can introspect indexes; the budget check is advisory.
			continue
		}
		if len(indexes) > MaxIndexesPerTable {
			logging.Log(logging.Fields{
				Step:    "migrate",
				Status:  "index_budget_exceeded",
				Message: fmt.Sprintf("%T declares %d indexes (cap %d)", model, len(indexes), MaxIndexesPerTable),
			})
		}
	}

	return nil
}
