package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kevin-vien/web-mobile-tranning/internal/auth"
	"github.com/kevin-vien/web-mobile-tranning/internal/models"
	"github.com/kevin-vien/web-mobile-tranning/internal/repository"
)

type CreateReviewRequest struct {
	ProductID FlexInt `json:"product_id" binding:"required,gt=0"`
	Rating    FlexInt `json:"rating" binding:"required,min=1,max=5"`
	Comment   string  `json:"comment" binding:"max=2000"`
}

type ReviewHandler struct {
	reviews *repository.ReviewRepository
}

func NewReviewHandler(reviews *repository.ReviewRepository) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// POST /api/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	id, _ := auth.IdentityFrom(c)

	review := models.Review{
		ProductID: uint(req.ProductID),
		UserID:    id.UserID,
		Rating:    int(req.Rating),
		Comment:   req.Comment,
	}
	if err := h.reviews.Create(c.Request.Context(), &review); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(c, http.StatusNotFound, "not_found", "Product not found", nil)
			return
		}
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// GET /api/reviews/:product_id
func (h *ReviewHandler) ListByProduct(c *gin.Context) {
	productID, ok := paramID(c, "product_id")
	if !ok {
		return
	}
	reviews, err := h.reviews.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}
