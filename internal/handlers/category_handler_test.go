package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin-vien/web-mobile-tranning/internal/models"
)

func TestCategoryHandlers(t *testing.T) {
	env := setupTestRouter(t)
	_, adminToken := env.user(t, "admin@example.com", models.RoleAdmin)
	_, userToken := env.user(t, "user@example.com", models.RoleUser)

	var parent models.Category

	t.Run("Successfully creates a top-level category", func(t *testing.T) {
		recorder := performRequest(env.router, http.MethodPost, "/api/categories", gin.H{"name": "Electronics"}, adminToken)
		require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

		decodeJSON(t, recorder, &parent)
		assert.Greater(t, parent.ID, uint(0))
		assert.Equal(t, "Electronics", parent.Name)
		assert.Nil(t, parent.ParentID)
	})

	t.Run("Successfully creates a sub-category", func(t *testing.T) {
		body := gin.H{"name": "Phones", "parent_id": parent.ID}
		recorder := performRequest(env.router, http.MethodPost, "/api/categories", body, adminToken)
		require.Equal(t, http.StatusCreated, recorder.Code)

		var child models.Category
		decodeJSON(t, recorder, &child)
		require.NotNil(t, child.ParentID)
		assert.Equal(t, parent.ID, *child.ParentID)
		require.NotNil(t, child.Parent)
		assert.Equal(t, "Electronics", child.Parent.Name)
	})

	t.Run("Returns 400 for invalid request (missing name)", func(t *testing.T) {
		recorder := performRequest(env.router, http.MethodPost, "/api/categories", gin.H{}, adminToken)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Validation failed")
	})

	t.Run("Returns 404 if parent category does not exist", func(t *testing.T) {
		body := gin.H{"name": "Orphan", "parent_id": 999}
		recorder := performRequest(env.router, http.MethodPost, "/api/categories", body, adminToken)
		assert.Equal(t, http.StatusNotFound, recorder.Code)

		var resp map[string]any
		decodeJSON(t, recorder, &resp)
		assert.Equal(t, "Parent category not found with ID: 999", resp["message"])
	})

	t.Run("Requires admin for writes", func(t *testing.T) {
		recorder := performRequest(env.router, http.MethodPost, "/api/categories", gin.H{"name": "X"}, userToken)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("Lists publicly", func(t *testing.T) {
		recorder := performRequest(env.router, http.MethodGet, "/api/categories", nil, "")
		require.Equal(t, http.StatusOK, recorder.Code)
		var categories []models.Category
		decodeJSON(t, recorder, &categories)
		assert.Len(t, categories, 2)
	})

	t.Run("Updates and rejects self parenting", func(t *testing.T) {
		path := fmt.Sprintf("/api/categories/%d", parent.ID)
		recorder := performRequest(env.router, http.MethodPut, path, gin.H{"name": "Gadgets"}, adminToken)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"name":"Gadgets"`)

		recorder = performRequest(env.router, http.MethodPut, path, gin.H{"parent_id": parent.ID}, adminToken)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("Deletes", func(t *testing.T) {
		path := fmt.Sprintf("/api/categories/%d", parent.ID)
		assert.Equal(t, http.StatusOK, performRequest(env.router, http.MethodDelete, path, nil, adminToken).Code)
		assert.Equal(t, http.StatusNotFound, performRequest(env.router, http.MethodDelete, path, nil, adminToken).Code)
		assert.Equal(t, http.StatusNotFound, performRequest(env.router, http.MethodGet, path, nil, "").Code)
	})
}
