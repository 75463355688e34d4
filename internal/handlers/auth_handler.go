package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kevin-vien/web-mobile-tranning/internal/auth"
	"github.com/kevin-vien/web-mobile-tranning/internal/logging"
	"github.com/kevin-vien/web-mobile-tranning/internal/models"
	"github.com/kevin-vien/web-mobile-tranning/internal/repository"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50,personname"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=8,max=128,strongpassword"`
	Phone    string `json:"phone" binding:"omitempty,vnphone"`
	Address  string `json:"address" binding:"omitempty,min=5,max=200,address"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=128"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128,strongpassword"`
}

type UpdateProfileRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=2,max=50,personname"`
	Phone   *string `json:"phone" binding:"omitempty,vnphone"`
	Address *string `json:"address" binding:"omitempty,min=5,max=200,address"`
}

type ToggleFavoriteRequest struct {
	ProductID FlexInt `json:"product_id"`
}

type AuthHandler struct {
	users  *repository.UserRepository
	tokens *auth.Tokens
}

func NewAuthHandler(users *repository.UserRepository, tokens *auth.Tokens) *AuthHandler {
	registerValidators()
	return &AuthHandler{users: users, tokens: tokens}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal_error", "Server error", nil)
		return
	}

	user := models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    normalizeEmail(req.Email),
		Password: hash,
		Phone:    strings.TrimSpace(req.Phone),
		Address:  strings.TrimSpace(req.Address),
	}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"message": "Validation failed",
				"errors":  []fieldError{{Field: "email", Message: "Email đã được sử dụng", Value: user.Email}},
			})
			return
		}
		logging.Err(logging.Fields{RequestID: requestID(c), Step: "register"}, err)
		writeError(c, http.StatusInternalServerError, "internal_error", "Server error", nil)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user_id": user.ID, "name": user.Name, "email": user.Email})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), normalizeEmail(req.Email))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		writeError(c, http.StatusInternalServerError, "internal_error", "Server error", nil)
		return
	}
	if user == nil || !auth.CheckPassword(user.Password, req.Password) {
		writeError(c, http.StatusUnauthorized, "unauthorized", "Invalid credentials", nil)
		return
	}

	token, err := h.tokens.Issue(*user)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	if err := auth.StartSession(c, *user); err != nil {
		logging.Err(logging.Fields{RequestID: requestID(c), UserID: user.ID, Step: "session"}, err)
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := auth.EndSession(c); err != nil {
		logging.Err(logging.Fields{RequestID: requestID(c), Step: "logout"}, err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	id, _ := auth.IdentityFrom(c)
	user, err := h.users.GetByID(c.Request.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(c, http.StatusNotFound, "not_found", "User not found", nil)
			return
		}
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	id, _ := auth.IdentityFrom(c)
	ctx := c.Request.Context()

	user, err := h.users.GetByID(ctx, id.UserID)
	if err != nil {
		writeRepoError(c, err)
		return
	}
	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		writeError(c, http.StatusUnauthorized, "unauthorized", "Current password incorrect", nil)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal_error", "Server error", nil)
		return
	}
	if err := h.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	id, _ := auth.IdentityFrom(c)

	user, err := h.users.UpdateProfile(c.Request.Context(), id.UserID, repository.ProfileUpdate{
		Name:    trimmed(req.Name),
		Phone:   trimmed(req.Phone),
		Address: trimmed(req.Address),
	})
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// GET /api/auth/favorites
func (h *AuthHandler) Favorites(c *gin.Context) {
	id, _ := auth.IdentityFrom(c)
	favs, err := h.users.Favorites(c.Request.Context(), id.UserID)
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favs})
}

// POST /api/auth/favorites/toggle
func (h *AuthHandler) ToggleFavorite(c *gin.Context) {
	var req ToggleFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductID <= 0 {
		writeError(c, http.StatusBadRequest, "bad_request", "product_id required", nil)
		return
	}
	id, _ := auth.IdentityFrom(c)

	favs, err := h.users.ToggleFavorite(c.Request.Context(), id.UserID, uint(req.ProductID))
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favs})
}
