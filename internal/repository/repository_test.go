package repository_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kevin-vien/web-mobile-tranning/internal/db/dbtest"
	"github.com/kevin-vien/web-mobile-tranning/internal/models"
	"github.com/kevin-vien/web-mobile-tranning/internal/repository"
)

func seedProduct(t *testing.T, db *gorm.DB, p models.Product) models.Product {
	t.Helper()
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Name: "Test User", Email: email, Password: "x"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func TestInventoryLockAndDecrement(t *testing.T) {
	db := dbtest.Open(t)
	p := seedProduct(t, db, models.Product{Name: "Phone X", Price: decimal.NewFromInt(100), Stock: 3})

	t.Run("missing product", func(t *testing.T) {
		_, err := repository.LockForUpdate(db, 9999)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("decrement within stock", func(t *testing.T) {
		err := db.Transaction(func(tx *gorm.DB) error {
			locked, err := repository.LockForUpdate(tx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, 3, locked.Stock)
			return repository.DecrementStock(tx, p.ID, 2)
		})
		require.NoError(t, err)

		var stored models.Product
		require.NoError(t, db.First(&stored, p.ID).Error)
		assert.Equal(t, 1, stored.Stock)
	})

	t.Run("decrement beyond stock is refused", func(t *testing.T) {
		err := repository.DecrementStock(db, p.ID, 2)
		assert.ErrorIs(t, err, repository.ErrNotEnough)

		var stored models.Product
		require.NoError(t, db.First(&stored, p.ID).Error)
		assert.Equal(t, 1, stored.Stock)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		assert.ErrorIs(t, repository.DecrementStock(db, p.ID, 0), repository.ErrInvalidInput)
	})
}

func TestProductList(t *testing.T) {
	db := dbtest.Open(t)
	repo := repository.NewProductRepository(db)
	ctx := context.Background()

	phones := models.Category{Name: "Phones"}
	require.NoError(t, db.Create(&phones).Error)
	android := models.Category{Name: "Android", ParentID: &phones.ID}
	require.NoError(t, db.Create(&android).Error)
	laptops := models.Category{Name: "Laptops"}
	require.NoError(t, db.Create(&laptops).Error)

	iphone := seedProduct(t, db, models.Product{Name: "iPhone 15", Brand: "Apple", RAM: "6GB", Price: decimal.NewFromInt(1000), CategoryID: &phones.ID})
	galaxy := seedProduct(t, db, models.Product{Name: "Galaxy S24", Brand: "Samsung", RAM: "8GB", Price: decimal.NewFromInt(800), CategoryID: &android.ID})
	macbook := seedProduct(t, db, models.Product{Name: "MacBook Air", Brand: "Apple", RAM: "16GB", Price: decimal.NewFromInt(1500), CategoryID: &laptops.ID})

	ids := func(ps []models.Product) []uint {
		out := make([]uint, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}
	price := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}

	tests := []struct {
		name   string
		filter repository.ProductFilter
		want   []uint
	}{
		{"no filter", repository.ProductFilter{}, []uint{iphone.ID, galaxy.ID, macbook.ID}},
		{"search matches brand", repository.ProductFilter{Search: "Apple"}, []uint{iphone.ID, macbook.ID}},
		{"brand and ram", repository.ProductFilter{Brand: "Apple", RAM: "16GB"}, []uint{macbook.ID}},
		{"category subtree", repository.ProductFilter{CategoryID: &phones.ID}, []uint{iphone.ID, galaxy.ID}},
		{"category name", repository.ProductFilter{Category: "Laptops"}, []uint{macbook.ID}},
		{"price range", repository.ProductFilter{MinPrice: price(900), MaxPrice: price(1200)}, []uint{iphone.ID}},
		{"limit", repository.ProductFilter{Limit: 1}, []uint{iphone.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	t.Run("random keeps the limit", func(t *testing.T) {
		got, err := repo.List(ctx, repository.ProductFilter{Random: true, Limit: 2})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("average over subtree", func(t *testing.T) {
		avg, err := repo.AveragePrice(ctx, phones.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(900).Equal(avg), avg.String())

		avg, err = repo.AveragePrice(ctx, 4242)
		require.NoError(t, err)
		assert.True(t, avg.IsZero())
	})
}

func TestProductCreateRequiresCategory(t *testing.T) {
	db := dbtest.Open(t)
	repo := repository.NewProductRepository(db)

	missing := uint(77)
	err := repo.Create(context.Background(), &models.Product{Name: "Orphan", Price: decimal.NewFromInt(1), CategoryID: &missing})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = repo.Create(context.Background(), &models.Product{Name: "Negative", Price: decimal.NewFromInt(1), Stock: -1})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestBestsellers(t *testing.T) {
	db := dbtest.Open(t)
	repo := repository.NewProductRepository(db)
	ctx := context.Background()

	a := seedProduct(t, db, models.Product{Name: "A", Price: decimal.NewFromInt(10), Stock: 10})
	b := seedProduct(t, db, models.Product{Name: "B", Price: decimal.NewFromInt(10), Stock: 10})

	t.Run("falls back to latest when nothing sold", func(t *testing.T) {
		got, err := repo.Bestsellers(ctx, 20)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	user := seedUser(t, db, "buyer@example.com")
	order := models.Order{
		UserID: user.ID, TotalPrice: decimal.NewFromInt(40), PaymentMethod: models.PaymentCOD,
		Details: []models.OrderDetail{
			{ProductID: a.ID, Quantity: 1, Price: decimal.NewFromInt(10)},
			{ProductID: b.ID, Quantity: 3, Price: decimal.NewFromInt(10)},
		},
	}
	require.NoError(t, db.Create(&order).Error)

	got, err := repo.Bestsellers(ctx, 20)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, a.ID, got[1].ID)
}

func TestOrderReadsAndStatus(t *testing.T) {
	db := dbtest.Open(t)
	repo := repository.NewOrderRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "reader@example.com")
	kept := seedProduct(t, db, models.Product{Name: "Kept", ImageURL: "/img/kept.png", Price: decimal.NewFromInt(5), Stock: 1})
	gone := seedProduct(t, db, models.Product{Name: "Gone", Price: decimal.NewFromInt(7), Stock: 1})

	first := models.Order{UserID: user.ID, TotalPrice: decimal.NewFromInt(12), PaymentMethod: models.PaymentCOD,
		Details: []models.OrderDetail{
			{ProductID: kept.ID, Quantity: 1, Price: decimal.NewFromInt(5)},
			{ProductID: gone.ID, Quantity: 1, Price: decimal.NewFromInt(7)},
		}}
	require.NoError(t, repo.Create(db, &first))
	second := models.Order{UserID: user.ID, TotalPrice: decimal.NewFromInt(5), PaymentMethod: models.PaymentOnline,
		Details: []models.OrderDetail{{ProductID: kept.ID, Quantity: 1, Price: decimal.NewFromInt(5)}}}
	require.NoError(t, repo.Create(db, &second))

	require.NoError(t, db.Delete(&models.Product{}, gone.ID).Error)

	t.Run("get with snapshots", func(t *testing.T) {
		order, err := repo.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, order.Status)
		require.Len(t, order.Details, 2)

		assert.True(t, order.Details[0].Product.Available)
		assert.Equal(t, "Kept", order.Details[0].Product.Name)
		require.NotNil(t, order.Details[0].Product.ImageURL)

		assert.False(t, order.Details[1].Product.Available)
		assert.Equal(t, models.UnavailableProductName, order.Details[1].Product.Name)
		assert.True(t, decimal.NewFromInt(7).Equal(order.Details[1].Price), "line keeps its captured price")
	})

	t.Run("get twice is identical", func(t *testing.T) {
		a, err := repo.Get(ctx, first.ID)
		require.NoError(t, err)
		b, err := repo.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := repo.Get(ctx, 9999)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		orders, err := repo.ListByUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, second.ID, orders[0].ID)
		assert.Equal(t, first.ID, orders[1].ID)
		assert.NotNil(t, orders[1].Details[1].Product)
	})

	t.Run("status machine", func(t *testing.T) {
		_, err := repo.UpdateStatus(ctx, first.ID, models.StatusDone)
		assert.ErrorIs(t, err, repository.ErrInvalidTransition)

		order, err := repo.UpdateStatus(ctx, first.ID, models.StatusShipped)
		require.NoError(t, err)
		assert.Equal(t, models.StatusShipped, order.Status)

		_, err = repo.UpdateStatus(ctx, first.ID, models.StatusCancel)
		assert.ErrorIs(t, err, repository.ErrInvalidTransition)

		_, err = repo.UpdateStatus(ctx, 9999, models.StatusShipped)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("idempotency keys are unique per user", func(t *testing.T) {
		require.NoError(t, repo.SaveIdempotent(db, user.ID, "retry-1", second.ID))

		id, ok, err := repo.FindIdempotent(db, user.ID, "retry-1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, second.ID, id)

		err = repo.SaveIdempotent(db, user.ID, "retry-1", first.ID)
		assert.ErrorIs(t, err, repository.ErrDuplicate)

		_, ok, err = repo.FindIdempotent(db, user.ID+1, "retry-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestUserRepository(t *testing.T) {
	db := dbtest.Open(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	user := models.User{Name: "Lan", Email: "lan@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, &user))
	assert.Equal(t, models.RoleUser, user.Role)

	dup := models.User{Name: "Lan 2", Email: "lan@example.com", Password: "hash"}
	assert.ErrorIs(t, repo.Create(ctx, &dup), repository.ErrDuplicate)

	t.Run("favorites toggle", func(t *testing.T) {
		favs, err := repo.ToggleFavorite(ctx, user.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, []uint{3}, favs)

		favs, err = repo.ToggleFavorite(ctx, user.ID, 5)
		require.NoError(t, err)
		assert.Equal(t, []uint{3, 5}, favs)

		favs, err = repo.ToggleFavorite(ctx, user.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, []uint{5}, favs)

		stored, err := repo.Favorites(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{5}, stored)
	})

	t.Run("oidc links existing email", func(t *testing.T) {
		linked, err := repo.UpsertOIDC(ctx, repository.OIDCProfile{Subject: "sub-1", Email: "lan@example.com", Name: "Lan"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, linked.ID)

		again, err := repo.UpsertOIDC(ctx, repository.OIDCProfile{Subject: "sub-1", Email: "other@example.com"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, again.ID)

		fresh, err := repo.UpsertOIDC(ctx, repository.OIDCProfile{Subject: "sub-2", Email: "new@example.com", Name: "New"})
		require.NoError(t, err)
		assert.NotEqual(t, user.ID, fresh.ID)
		assert.Equal(t, models.RoleUser, fresh.Role)
	})

	t.Run("password update", func(t *testing.T) {
		require.NoError(t, repo.UpdatePassword(ctx, user.ID, "new-hash"))
		assert.ErrorIs(t, repo.UpdatePassword(ctx, 9999, "x"), repository.ErrNotFound)
	})

	t.Run("profile update", func(t *testing.T) {
		phone := "0912345678"
		updated, err := repo.UpdateProfile(ctx, user.ID, repository.ProfileUpdate{Phone: &phone})
		require.NoError(t, err)
		assert.Equal(t, phone, updated.Phone)
		assert.Equal(t, user.Name, updated.Name)

		_, err = repo.UpdateProfile(ctx, 9999, repository.ProfileUpdate{Phone: &phone})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestReviewsAndBanners(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	reviews := repository.NewReviewRepository(db)
	banners := repository.NewBannerRepository(db)

	user := seedUser(t, db, "critic@example.com")
	p := seedProduct(t, db, models.Product{Name: "Tablet", Price: decimal.NewFromInt(300)})

	assert.ErrorIs(t, reviews.Create(ctx, &models.Review{ProductID: p.ID, UserID: user.ID, Rating: 6}), repository.ErrInvalidInput)
	assert.ErrorIs(t, reviews.Create(ctx, &models.Review{ProductID: 9999, UserID: user.ID, Rating: 4}), repository.ErrNotFound)
	require.NoError(t, reviews.Create(ctx, &models.Review{ProductID: p.ID, UserID: user.ID, Rating: 5, Comment: "great"}))

	list, err := reviews.ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "great", list[0].Comment)

	require.NoError(t, banners.Create(ctx, &models.Banner{Title: "Sale", ImageURL: "/b.png"}))
	all, err := banners.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLockForUpdateTakesRowLockOnPostgres(t *testing.T) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=shop dbname=shop sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	var statements []string
	require.NoError(t, gdb.Callback().Query().After("gorm:query").Register("test:capture", func(d *gorm.DB) {
		statements = append(statements, d.Statement.SQL.String())
	}))

	_, err = repository.LockForUpdate(gdb, 42)
	require.NoError(t, err)

	require.Len(t, statements, 1)
	assert.Contains(t, statements[0], `"product_id" = $1`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(statements[0]), "FOR UPDATE"), statements[0])
}
