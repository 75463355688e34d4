package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin-vien/web-mobile-tranning/internal/auth"
	"github.com/kevin-vien/web-mobile-tranning/internal/db/dbtest"
	"github.com/kevin-vien/web-mobile-tranning/internal/models"
	"github.com/kevin-vien/web-mobile-tranning/internal/seed"
)

func TestRunIsRepeatable(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	require.NoError(t, seed.Run(ctx, db, seed.Options{AdminPassword: "Root@999"}))
	require.NoError(t, seed.Run(ctx, db, seed.Options{}))

	count := func(model any) int64 {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		return n
	}
	assert.EqualValues(t, 2, count(&models.User{}))
	assert.EqualValues(t, 3, count(&models.Category{}))
	assert.EqualValues(t, 6, count(&models.Product{}))
	assert.EqualValues(t, 2, count(&models.Banner{}))

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@example.com").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, auth.CheckPassword(admin.Password, "Root@999"), "second run keeps the first password")

	var iphone models.Product
	require.NoError(t, db.Preload("Category").Where("name = ?", "iPhone 15 128GB").First(&iphone).Error)
	require.NotNil(t, iphone.Category)
	assert.Equal(t, "Điện thoại", iphone.Category.Name)
	assert.Equal(t, 50, iphone.Stock)
}
