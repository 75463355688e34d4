package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kevin-vien/web-mobile-tranning/internal/models"
	"github.com/kevin-vien/web-mobile-tranning/internal/repository"
)

type CreateBannerRequest struct {
	Title    string `json:"title" binding:"max=150"`
	ImageURL string `json:"image_url" binding:"required,max=255"`
	Link     string `json:"link" binding:"max=255"`
}

type BannerHandler struct {
	banners *repository.BannerRepository
}

func NewBannerHandler(banners *repository.BannerRepository) *BannerHandler {
	return &BannerHandler{banners: banners}
}

func (h *BannerHandler) List(c *gin.Context) {
	banners, err := h.banners.List(c.Request.Context())
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, banners)
}

func (h *BannerHandler) Create(c *gin.Context) {
	var req CreateBannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	banner := models.Banner{Title: req.Title, ImageURL: req.ImageURL, Link: req.Link}
	if err := h.banners.Create(c.Request.Context(), &banner); err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusCreated, banner)
}
