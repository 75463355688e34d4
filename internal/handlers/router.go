package handlers

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kevin-vien/web-mobile-tranning/internal/auth"
	"github.com/kevin-vien/web-mobile-tranning/internal/cache"
	"github.com/kevin-vien/web-mobile-tranning/internal/checkout"
	"github.com/kevin-vien/web-mobile-tranning/internal/metrics"
	"github.com/kevin-vien/web-mobile-tranning/internal/repository"
)

type Deps struct {
	DB            *gorm.DB
	Readiness     Readiness
	Coordinator   *checkout.Coordinator
	Tokens        *auth.Tokens
	SessionSecret string
	StaticDir     string

	// Optional.
	OIDC         *auth.OIDC
	ProductCache *cache.ProductCache
	Metrics      *metrics.Metrics
}

func NewRouter(d Deps) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), RequestID())
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	// ── session store ──
	store := cookie.NewStore([]byte(d.SessionSecret))
	r.Use(sessions.Sessions(auth.SessionName, store))

	// ── public endpoints ──
	r.GET("/health", Health(d.Readiness))
	r.GET("/ready", Ready(d.Readiness))
	if d.StaticDir != "" {
		r.Static("/static", d.StaticDir)
	}
	if d.OIDC != nil {
		oidc := r.Group("/auth/oidc", RequireStorage(d.Readiness))
		oidc.GET("/login", d.OIDC.Login)
		oidc.GET("/callback", d.OIDC.Callback)
	}

	products := repository.NewProductRepository(d.DB)
	orders := repository.NewOrderRepository(d.DB)
	users := repository.NewUserRepository(d.DB)

	productHandler := newProductHandler(products, d.ProductCache)
	categoryHandler := NewCategoryHandler(repository.NewCategoryRepository(d.DB))
	orderHandler := NewOrderHandler(d.Coordinator, orders)
	authHandler := NewAuthHandler(users, d.Tokens)
	reviewHandler := NewReviewHandler(repository.NewReviewRepository(d.DB))
	bannerHandler := NewBannerHandler(repository.NewBannerRepository(d.DB))

	requireAuth := auth.RequireAuth(d.Tokens)
	requireAdmin := auth.RequireAdmin()

	api := r.Group("/api")
	api.Use(RequireStorage(d.Readiness))

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", requireAuth, authHandler.Me)
		authGroup.PUT("/profile", requireAuth, authHandler.UpdateProfile)
		authGroup.POST("/change-password", requireAuth, authHandler.ChangePassword)
		authGroup.GET("/favorites", requireAuth, authHandler.Favorites)
		authGroup.POST("/favorites/toggle", requireAuth, authHandler.ToggleFavorite)
	}

	productGroup := api.Group("/products")
	{
		productGroup.GET("", productHandler.List)
		productGroup.GET("/promotion", productHandler.Promotions)
		productGroup.GET("/new", productHandler.Newest)
		productGroup.GET("/bestseller", productHandler.Bestsellers)
		productGroup.GET("/average", productHandler.AveragePrice)
		productGroup.GET("/:id", productHandler.Get)
		productGroup.POST("", requireAuth, requireAdmin, productHandler.Create)
		productGroup.PUT("/:id", requireAuth, requireAdmin, productHandler.Update)
		productGroup.DELETE("/:id", requireAuth, requireAdmin, productHandler.Delete)
	}

	categoryGroup := api.Group("/categories")
	{
		categoryGroup.GET("", categoryHandler.List)
		categoryGroup.GET("/:id", categoryHandler.Get)
		categoryGroup.POST("", requireAuth, requireAdmin, categoryHandler.Create)
		categoryGroup.PUT("/:id", requireAuth, requireAdmin, categoryHandler.Update)
		categoryGroup.DELETE("/:id", requireAuth, requireAdmin, categoryHandler.Delete)
	}

	orderGroup := api.Group("/orders", requireAuth)
	{
		orderGroup.POST("", orderHandler.Create)
		orderGroup.GET("/user/:id", orderHandler.ListByUser)
		orderGroup.GET("/:id", orderHandler.Get)
		orderGroup.PUT("/:id", requireAdmin, orderHandler.UpdateStatus)
	}

	reviewGroup := api.Group("/reviews")
	{
		reviewGroup.POST("", requireAuth, reviewHandler.Create)
		reviewGroup.GET("/:product_id", reviewHandler.ListByProduct)
	}

	bannerGroup := api.Group("/banners")
	{
		bannerGroup.GET("", bannerHandler.List)
		bannerGroup.POST("", requireAuth, requireAdmin, bannerHandler.Create)
	}

	return r
}

// newProductHandler keeps a nil cache from turning into a non-nil interface.
func newProductHandler(products *repository.ProductRepository, pc *cache.ProductCache) *ProductHandler {
	if pc == nil {
		return NewProductHandler(products, nil, nil)
	}
	return NewProductHandler(products, pc, pc)
}
