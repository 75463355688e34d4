package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// Readiness reports whether storage has been bootstrapped.
type Readiness interface {
	Ready() bool
}

// RequestID reuses the caller's X-Request-ID or mints a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequireStorage rejects requests until the schema is in place.
func RequireStorage(r Readiness) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.Ready() {
			writeError(c, http.StatusServiceUnavailable, "storage_unavailable", "Storage is starting, retry shortly", nil)
			return
		}
		c.Next()
	}
}

func Health(r Readiness) gin.HandlerFunc {
	return func(c *gin.Context) {
		storage := "starting"
		if r.Ready() {
			storage = "ready"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "storage": storage})
	}
}

func Ready(r Readiness) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
