package controllers

import (
	"errors"
	"strings"

	"zuricart/gateway"
	"zuricart/models"
	"zuricart/payments"
	"zuricart/utils"

	"github.com/gin-gonic/gin"
)

// PaymentHandler exposes the payment surface. All dependencies are
// injected at startup; handlers never reach for globals.
type PaymentHandler struct {
	orchestrator *payments.Orchestrator
	registry     *gateway.Registry
}

func NewPaymentHandler(orchestrator *payments.Orchestrator, registry *gateway.Registry) *PaymentHandler {
	return &PaymentHandler{orchestrator: orchestrator, registry: registry}
}

// GetPaymentMethods returns the methods available for a country.
// GET /payments/methods?country=CC
func (h *PaymentHandler) GetPaymentMethods(c *gin.Context) {
	country := strings.ToUpper(c.Query("country"))
	if country == "" {
		if userVal, exists := c.Get("user"); exists {
			country = userVal.(models.User).Country
		}
	}
	if country == "" {
		utils.BadRequest(c, "country is required", nil)
		return
	}

	methods := h.registry.ListAvailableMethods(country)
	utils.LogInfo("Listed %d payment methods for country %s", len(methods), country)
	utils.Success(c, "Payment methods retrieved successfully", gin.H{
		"country": country,
		"methods": methods,
	})
}

// InitializePayment starts one payment attempt for an order.
// POST /payments/initialize
func (h *PaymentHandler) InitializePayment(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		OrderID       string `json:"order_id" binding:"required"`
		PaymentMethod string `json:"payment_method" binding:"required"`
		ReturnURL     string `json:"return_url"`
		PhoneNumber   string `json:"phone_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. order_id and payment_method are required", err.Error())
		return
	}
	utils.LogInfo("Payment initialization requested: order=%s method=%s user=%d", req.OrderID, req.PaymentMethod, user.ID)

	result, err := h.orchestrator.Initialize(c.Request.Context(), user, payments.InitializeRequest{
		OrderID:   req.OrderID,
		Method:    req.PaymentMethod,
		ReturnURL: req.ReturnURL,
		Phone:     req.PhoneNumber,
	})
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	utils.Success(c, "Payment initiated successfully", result)
}

// GetPaymentStatus returns a payment and its parent order, owner-only.
// GET /payments/status/:paymentId
func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	payment, order, err := h.orchestrator.Status(user.ID, c.Param("paymentId"))
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	utils.Success(c, "Payment status retrieved successfully", gin.H{
		"payment": gin.H{
			"id":           payment.ID,
			"method":       payment.Method,
			"amount":       payment.Amount,
			"currency":     payment.Currency,
			"status":       payment.Status,
			"processed_at": payment.ProcessedAt,
			"created_at":   payment.CreatedAt,
		},
		"order": gin.H{
			"id":             order.ID,
			"payment_status": order.PaymentStatus,
			"status":         order.Status,
			"total_amount":   order.TotalAmount,
			"currency":       order.Currency,
		},
	})
}

// VerifyPayment polls the provider for an advisory status. It never
// mutates payment or order state.
// POST /payments/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		PaymentID            string `json:"payment_id" binding:"required"`
		TransactionReference string `json:"transaction_reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. payment_id is required", err.Error())
		return
	}

	result, err := h.orchestrator.Verify(c.Request.Context(), user.ID, req.PaymentID, req.TransactionReference)
	if err != nil {
		if errors.Is(err, gateway.ErrVerificationUnavailable) {
			utils.Success(c, "Verification is not available for this payment method", gin.H{
				"payment_id": req.PaymentID,
				"verified":   false,
				"detail":     "This provider has no query endpoint; status will arrive via webhook.",
			})
			return
		}
		respondPaymentError(c, err)
		return
	}

	utils.Success(c, "Verification completed", gin.H{
		"payment_id":     result.PaymentID,
		"status":         result.Status,
		"gateway_status": result.GatewayStatus,
	})
}

// respondPaymentError maps orchestrator errors onto the response
// taxonomy. Provider detail never reaches the client.
func respondPaymentError(c *gin.Context, err error) {
	var vErr *payments.ValidationError
	var appErr *utils.AppError
	switch {
	case errors.As(err, &appErr):
		utils.Error(c, appErr.Code, appErr.Message, nil)
	case errors.As(err, &vErr):
		utils.BadRequest(c, "Invalid request", gin.H{"field": vErr.Field, "message": vErr.Message})
	case errors.Is(err, payments.ErrOrderNotFound), errors.Is(err, payments.ErrPaymentNotFound):
		utils.NotFound(c, "Not found")
	case errors.Is(err, payments.ErrAlreadyProcessed):
		utils.Conflict(c, "Payment for this order has already been processed", nil)
	case errors.Is(err, gateway.ErrUnsupportedMethod):
		utils.BadRequest(c, "Payment method not available for your country", nil)
	case errors.Is(err, payments.ErrPaymentInitFailed):
		utils.InternalServerError(c, "Payment initialization failed", nil)
	default:
		utils.LogError("Unhandled payment error: %v", err)
		utils.InternalServerError(c, "Something went wrong", nil)
	}
}
