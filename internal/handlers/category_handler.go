package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kevin-vien/web-mobile-tranning/internal/models"
	"github.com/kevin-vien/web-mobile-tranning/internal/repository"
)

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parent_id"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	ParentID    *uint   `json:"parent_id"`
}

type CategoryHandler struct {
	categories *repository.CategoryRepository
}

func NewCategoryHandler(categories *repository.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// GET /api/categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GET /api/categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	category, err := h.categories.GetByID(c.Request.Context(), id)
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// POST /api/categories (admin)
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	category := models.Category{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	}
	if err := h.categories.Create(c.Request.Context(), &category); err != nil {
		writeCategoryError(c, err, req.ParentID)
		return
	}

	created, err := h.categories.GetByID(c.Request.Context(), category.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal_error", "failed to retrieve category with parent details", nil)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// PUT /api/categories/:id (admin)
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	category, err := h.categories.GetByID(ctx, id)
	if err != nil {
		writeRepoError(c, err)
		return
	}
	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.ParentID != nil {
		category.ParentID = req.ParentID
	}
	category.Parent = nil

	if err := h.categories.Update(ctx, category); err != nil {
		writeCategoryError(c, err, req.ParentID)
		return
	}

	updated, err := h.categories.GetByID(ctx, id)
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DELETE /api/categories/:id (admin)
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func writeCategoryError(c *gin.Context, err error, parentID *uint) {
	if errors.Is(err, repository.ErrParentNotFound) && parentID != nil {
		writeError(c, http.StatusNotFound, "not_found", fmt.Sprintf("Parent category not found with ID: %d", *parentID), nil)
		return
	}
	writeRepoError(c, err)
}
