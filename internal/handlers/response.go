package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/kevin-vien/web-mobile-tranning/internal/repository"
)

// writeError aborts with {"error": code, "message": message, ...details}.
func writeError(c *gin.Context, status int, code, message string, details gin.H) {
	body := gin.H{}
	for k, v := range details {
		body[k] = v
	}
	body["error"] = code
	body["message"] = message
	c.AbortWithStatusJSON(status, body)
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value"`
}

// writeBindError reports a binding failure. Validation failures list every
// offending field; malformed JSON gets a plain bad_request.
func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeError(c, http.StatusBadRequest, "bad_request", "invalid json body", nil)
		return
	}

	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldError{Field: fe.Field(), Message: validationMessage(fe), Value: fe.Value()})
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": out})
}

// writeRepoError maps repository sentinels onto HTTP statuses.
func writeRepoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", "Not found", nil)
	case errors.Is(err, repository.ErrDuplicate):
		writeError(c, http.StatusConflict, "duplicate", "Already exists", nil)
	case errors.Is(err, repository.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, "invalid_data", err.Error(), nil)
	case errors.Is(err, repository.ErrInvalidTransition):
		writeError(c, http.StatusConflict, "invalid_transition", err.Error(), nil)
	default:
		writeError(c, http.StatusInternalServerError, "internal_error", "Server error", nil)
	}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		writeError(c, http.StatusBadRequest, "bad_request", "invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}

func queryLimit(c *gin.Context, def int) int {
	if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
		return n
	}
	return def
}
