package utils

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kevin-vien/web-mobile-tranning/internal/models"
)

func TestCategoryTreeIDs(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Category{}))

	phones := models.Category{Name: "Phones"}
	require.NoError(t, db.Create(&phones).Error)
	android := models.Category{Name: "Android", ParentID: &phones.ID}
	require.NoError(t, db.Create(&android).Error)
	samsung := models.Category{Name: "Samsung", ParentID: &android.ID}
	require.NoError(t, db.Create(&samsung).Error)
	laptops := models.Category{Name: "Laptops"}
	require.NoError(t, db.Create(&laptops).Error)

	ids, err := CategoryTreeIDs(context.Background(), db, phones.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{phones.ID, android.ID, samsung.ID}, ids)

	ids, err = CategoryTreeIDs(context.Background(), db, laptops.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{laptops.ID}, ids)

	// unknown roots are returned as-is so callers get an empty product set
	ids, err = CategoryTreeIDs(context.Background(), db, 999)
	require.NoError(t, err)
	assert.Equal(t, []uint{999}, ids)
}
