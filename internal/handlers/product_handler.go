package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kevin-vien/web-mobile-tranning/internal/models"
	"github.com/kevin-vien/web-mobile-tranning/internal/repository"
)

// ProductReader serves single-product reads; the redis cache and the
// repository both satisfy it.
type ProductReader interface {
	GetByID(ctx context.Context, id uint) (*models.Product, error)
}

type ProductInvalidator interface {
	InvalidateProducts(ctx context.Context, ids ...uint)
}

type ProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=150"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	Stock       *int             `json:"stock" binding:"omitempty,gte=0"`
	Brand       *string          `json:"brand" binding:"omitempty,max=100"`
	RAM         *string          `json:"ram" binding:"omitempty,max=20"`
	Storage     *string          `json:"storage" binding:"omitempty,max=50"`
	ImageURL    *string          `json:"image_url" binding:"omitempty,max=255"`
	CategoryID  *uint            `json:"category_id"`
	IsPromotion *bool            `json:"is_promotion"`
	IsNew       *bool            `json:"is_new"`
}

func (r ProductRequest) apply(p *models.Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.SalePrice != nil {
		p.SalePrice = r.SalePrice
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	if r.Brand != nil {
		p.Brand = *r.Brand
	}
	if r.RAM != nil {
		p.RAM = *r.RAM
	}
	if r.Storage != nil {
		p.Storage = *r.Storage
	}
	if r.ImageURL != nil {
		p.ImageURL = *r.ImageURL
	}
	if r.CategoryID != nil {
		p.CategoryID = r.CategoryID
	}
	if r.IsPromotion != nil {
		p.IsPromotion = *r.IsPromotion
	}
	if r.IsNew != nil {
		p.IsNew = *r.IsNew
	}
}

type ProductHandler struct {
	products    *repository.ProductRepository
	reader      ProductReader
	invalidator ProductInvalidator
}

// NewProductHandler reads single products through reader when given,
// otherwise straight from the repository.
func NewProductHandler(products *repository.ProductRepository, reader ProductReader, invalidator ProductInvalidator) *ProductHandler {
	if reader == nil {
		reader = products
	}
	return &ProductHandler{products: products, reader: reader, invalidator: invalidator}
}

// GET /api/products
func (h *ProductHandler) List(c *gin.Context) {
	f := repository.ProductFilter{
		Search:   c.Query("search"),
		Brand:    c.Query("brand"),
		RAM:      c.Query("ram"),
		Storage:  c.Query("storage"),
		Category: c.Query("category"),
		Limit:    queryLimit(c, repository.DefaultListLimit),
		Random:   c.Query("random") == "true",
	}

	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(c, http.StatusBadRequest, "bad_request", "Invalid category_id", nil)
			return
		}
		cid := uint(id)
		f.CategoryID = &cid
	}

	var ok bool
	if f.MinPrice, ok = queryDecimal(c, "min_price"); !ok {
		return
	}
	if f.MaxPrice, ok = queryDecimal(c, "max_price"); !ok {
		return
	}

	products, err := h.products.List(c.Request.Context(), f)
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func queryDecimal(c *gin.Context, name string) (*decimal.Decimal, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", "Invalid "+name, nil)
		return nil, false
	}
	return &d, true
}

// GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	product, err := h.reader.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(c, http.StatusNotFound, "not_found", "Product not found", nil)
			return
		}
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Promotions(c *gin.Context) {
	h.showcase(c, h.products.Promotions)
}

func (h *ProductHandler) Newest(c *gin.Context) {
	h.showcase(c, h.products.Newest)
}

func (h *ProductHandler) Bestsellers(c *gin.Context) {
	h.showcase(c, h.products.Bestsellers)
}

func (h *ProductHandler) showcase(c *gin.Context, load func(context.Context, int) ([]models.Product, error)) {
	products, err := load(c.Request.Context(), queryLimit(c, repository.DefaultShowcaseSize))
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// POST /api/products (admin)
func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if req.Name == nil || *req.Name == "" {
		writeError(c, http.StatusBadRequest, "invalid_data", "name is required", nil)
		return
	}
	if req.Price == nil || !req.Price.IsPositive() {
		writeError(c, http.StatusBadRequest, "invalid_data", "price must be greater than 0", nil)
		return
	}

	var product models.Product
	req.apply(&product)
	if err := h.products.Create(c.Request.Context(), &product); err != nil {
		h.writeWriteError(c, err, product.CategoryID)
		return
	}

	created, err := h.products.GetByID(c.Request.Context(), product.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal_error", "failed to retrieve Product with Category details", nil)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// PUT /api/products/:id (admin)
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if req.Price != nil && !req.Price.IsPositive() {
		writeError(c, http.StatusBadRequest, "invalid_data", "price must be greater than 0", nil)
		return
	}

	ctx := c.Request.Context()
	product, err := h.products.GetByID(ctx, id)
	if err != nil {
		writeRepoError(c, err)
		return
	}
	req.apply(product)
	product.Category = nil
	if err := h.products.Update(ctx, product); err != nil {
		h.writeWriteError(c, err, product.CategoryID)
		return
	}
	h.invalidate(ctx, id)

	updated, err := h.products.GetByID(ctx, id)
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DELETE /api/products/:id (admin)
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		writeRepoError(c, err)
		return
	}
	h.invalidate(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/products/average?category_id=
func (h *ProductHandler) AveragePrice(c *gin.Context) {
	raw := c.Query("category_id")
	if raw == "" {
		writeError(c, http.StatusBadRequest, "bad_request", "category_id is required", nil)
		return
	}
	categoryID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", "Invalid category_id", nil)
		return
	}

	avg, err := h.products.AveragePrice(c.Request.Context(), uint(categoryID))
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category_id": uint(categoryID), "average_price": avg})
}

func (h *ProductHandler) writeWriteError(c *gin.Context, err error, categoryID *uint) {
	if errors.Is(err, repository.ErrNotFound) && categoryID != nil {
		writeError(c, http.StatusNotFound, "not_found", fmt.Sprintf("Category not found with ID: %d", *categoryID), nil)
		return
	}
	writeRepoError(c, err)
}

func (h *ProductHandler) invalidate(ctx context.Context, id uint) {
	if h.invalidator != nil {
		h.invalidator.InvalidateProducts(ctx, id)
	}
}
