package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kevin-vien/web-mobile-tranning/internal/auth"
	"github.com/kevin-vien/web-mobile-tranning/internal/checkout"
	"github.com/kevin-vien/web-mobile-tranning/internal/models"
	"github.com/kevin-vien/web-mobile-tranning/internal/repository"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	ReplayedHeader       = "Idempotent-Replayed"
)

type OrderItemRequest struct {
	ProductID FlexInt         `json:"product_id"`
	Quantity  FlexInt         `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type CreateOrderRequest struct {
	Items         []OrderItemRequest `json:"items"`
	PaymentMethod string             `json:"payment_method"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type OrderHandler struct {
	coordinator *checkout.Coordinator
	orders      *repository.OrderRepository
}

func NewOrderHandler(coordinator *checkout.Coordinator, orders *repository.OrderRepository) *OrderHandler {
	return &OrderHandler{coordinator: coordinator, orders: orders}
}

// POST /api/orders
func (h *OrderHandler) Create(c *gin.Context) {
	id, _ := auth.IdentityFrom(c)

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, string(checkout.KindInvalidRequest), "invalid json body", nil)
		return
	}

	items := make([]checkout.Item, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ProductID < 0 {
			writeError(c, http.StatusBadRequest, string(checkout.KindInvalidRequest), "product_id must be positive", nil)
			return
		}
		if it.Quantity > checkout.MaxQuantity {
			writeError(c, http.StatusBadRequest, string(checkout.KindInvalidRequest), fmt.Sprintf("quantity must be at most %d", checkout.MaxQuantity), nil)
			return
		}
		items = append(items, checkout.Item{
			ProductID: uint(it.ProductID),
			Quantity:  int(it.Quantity),
			UnitPrice: it.Price,
		})
	}

	res, err := h.coordinator.PlaceOrder(c.Request.Context(), checkout.Request{
		UserID:         id.UserID,
		Email:          id.Email,
		Items:          items,
		PaymentMethod:  models.PaymentMethod(req.PaymentMethod),
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
		RequestID:      requestID(c),
	})
	if err != nil {
		writeCheckoutError(c, err)
		return
	}

	if res.Replayed {
		c.Header(ReplayedHeader, "true")
		c.JSON(http.StatusOK, res.Order)
		return
	}
	c.JSON(http.StatusCreated, res.Order)
}

func writeCheckoutError(c *gin.Context, err error) {
	cerr, ok := checkout.AsError(err)
	if !ok {
		writeError(c, http.StatusInternalServerError, string(checkout.KindInternal), "Server error", nil)
		return
	}

	switch cerr.Kind {
	case checkout.KindInvalidRequest:
		writeError(c, http.StatusBadRequest, string(cerr.Kind), cerr.Message, nil)
	case checkout.KindProductNotFound:
		writeError(c, http.StatusBadRequest, string(cerr.Kind), "Product not found", gin.H{"product_id": cerr.ProductID})
	case checkout.KindInsufficientStock:
		writeError(c, http.StatusConflict, string(cerr.Kind), "Insufficient stock", gin.H{
			"product_id": cerr.ProductID,
			"available":  cerr.Available,
			"requested":  cerr.Requested,
		})
	default:
		writeError(c, http.StatusInternalServerError, string(checkout.KindInternal), "Server error", nil)
	}
}

// GET /api/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), orderID)
	if err != nil {
		writeRepoError(c, err)
		return
	}

	id, _ := auth.IdentityFrom(c)
	if !id.IsAdmin() && order.UserID != id.UserID {
		writeError(c, http.StatusForbidden, "forbidden", "Forbidden", nil)
		return
	}

	c.JSON(http.StatusOK, order)
}

// GET /api/orders/user/:id
func (h *OrderHandler) ListByUser(c *gin.Context) {
	id, _ := auth.IdentityFrom(c)

	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if !id.IsAdmin() && (err != nil || uint(userID) != id.UserID) {
		writeError(c, http.StatusForbidden, "forbidden", "Forbidden", nil)
		return
	}
	if err != nil || userID == 0 {
		writeError(c, http.StatusBadRequest, "bad_request", "Invalid user ID", nil)
		return
	}

	orders, err := h.orders.ListByUser(c.Request.Context(), uint(userID))
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// PUT /api/orders/:id (admin)
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_status", "Invalid data", nil)
		return
	}
	next, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_status", err.Error(), nil)
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), orderID, next)
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
