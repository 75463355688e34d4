package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kevin-vien/web-mobile-tranning/internal/auth"
	"github.com/kevin-vien/web-mobile-tranning/internal/checkout"
	"github.com/kevin-vien/web-mobile-tranning/internal/db"
	"github.com/kevin-vien/web-mobile-tranning/internal/db/dbtest"
	"github.com/kevin-vien/web-mobile-tranning/internal/handlers"
	"github.com/kevin-vien/web-mobile-tranning/internal/metrics"
	"github.com/kevin-vien/web-mobile-tranning/internal/models"
)

type testEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	store   *db.Store
	tokens  *auth.Tokens
	metrics *metrics.Metrics
}

// setupTestRouter builds the full router over a fresh sqlite database. The
// store is marked ready unless a test says otherwise through configure.
func setupTestRouter(t *testing.T, configure ...func(*handlers.Deps, *checkout.Coordinator)) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb := dbtest.Open(t)
	store := db.NewStore(gdb)
	store.MarkReady()

	m := metrics.New()
	tokens := auth.NewTokens("test-secret-key", time.Hour)
	coordinator := checkout.NewCoordinator(gdb, checkout.Options{MaxAttempts: 3}).WithMetrics(m)

	deps := handlers.Deps{
		DB:            gdb,
		Readiness:     store,
		Coordinator:   coordinator,
		Tokens:        tokens,
		SessionSecret: "test-secret-key",
		Metrics:       m,
	}
	for _, fn := range configure {
		fn(&deps, coordinator)
	}

	return testEnv{router: handlers.NewRouter(deps), db: gdb, store: store, tokens: tokens, metrics: m}
}

func (e testEnv) user(t *testing.T, email string, role models.Role) (models.User, string) {
	t.Helper()
	hash, err := auth.HashPassword("Secret@123")
	require.NoError(t, err)
	u := models.User{Name: "Test User", Email: email, Password: hash, Role: role}
	require.NoError(t, e.db.Create(&u).Error)
	token, err := e.tokens.Issue(u)
	require.NoError(t, err)
	return u, token
}

func (e testEnv) product(t *testing.T, name string, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, e.db.Create(&p).Error)
	return p
}

func (e testEnv) stock(t *testing.T, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, e.db.First(&p, id).Error)
	return p.Stock
}

func createRequest(method, path string, body any) *http.Request {
	var reader io.Reader
	if body != nil {
		reqBody, _ := json.Marshal(body)
		reader = bytes.NewBuffer(reqBody)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func performRequest(router *gin.Engine, method, path string, body any, token string, headers ...string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := createRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeJSON(t *testing.T, recorder *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), v), recorder.Body.String())
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
