package controllers

import (
	"fmt"
	"time"

	"zuricart/gateway"
	"zuricart/models"
	"zuricart/repository"
	"zuricart/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler is the thin checkout boundary: it creates pending orders
// for the payment flow to pick up and reads them back. Catalog, cart
// and fulfillment live in other services.
type OrderHandler struct {
	orders *repository.OrderRepository
}

func NewOrderHandler(orders *repository.OrderRepository) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CreateOrder creates a pending order for the authenticated user.
// POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		TotalAmount float64 `json:"total_amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "total_amount is required", err.Error())
		return
	}
	if req.TotalAmount <= 0 {
		utils.BadRequest(c, "total_amount must be greater than zero", nil)
		return
	}
	currency, ok := gateway.CurrencyForCountry(user.Country)
	if !ok {
		utils.BadRequest(c, "No supported currency for your country", nil)
		return
	}

	order := models.Order{
		ID:            newOrderID(),
		UserID:        user.ID,
		TotalAmount:   req.TotalAmount,
		Currency:      currency,
		PaymentStatus: models.PaymentStatusPending,
		Status:        models.OrderStatusPending,
	}
	if err := h.orders.Create(&order); err != nil {
		utils.LogError("Failed to create order for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to create order", nil)
		return
	}
	utils.LogInfo("Order %s created for user %d (%.2f %s)", order.ID, user.ID, order.TotalAmount, order.Currency)

	utils.Created(c, "Order created successfully", gin.H{"order": order})
}

// GetOrder returns one of the caller's orders.
// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	order, err := h.orders.GetForUser(c.Param("id"), user.ID)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	utils.Success(c, "Order retrieved successfully", gin.H{"order": order})
}

// newOrderID yields a short sortable identifier; payment references
// embed it, so it stays free of underscores.
func newOrderID() string {
	return fmt.Sprintf("ord-%d-%s", time.Now().Unix(), uuid.NewString()[:8])
}
