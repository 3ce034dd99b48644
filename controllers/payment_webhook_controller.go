package controllers

import (
	"errors"
	"io"
	"net/http"

	"zuricart/gateway"
	"zuricart/payments"
	"zuricart/utils"

	"github.com/gin-gonic/gin"
)

// WebhookHandler is the unauthenticated inbound boundary for provider
// notifications. Providers deliver at-least-once, so a 200 here means
// "received and absorbed", not "state changed": replays, interim
// statuses and references to unknown payments all acknowledge cleanly.
// Only a bad signature or an unrecognizable source gets a non-200, and
// that failure closes before any state is touched.
type WebhookHandler struct {
	orchestrator *payments.Orchestrator
}

func NewWebhookHandler(orchestrator *payments.Orchestrator) *WebhookHandler {
	return &WebhookHandler{orchestrator: orchestrator}
}

// HandleWebhook accepts a notification from any of the five providers.
// POST /payments/webhook
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.LogError("Failed to read webhook body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	err = h.orchestrator.Reconcile(c.Request.Context(), c.Request.Header, c.ContentType(), body)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"received": true})
	case errors.Is(err, gateway.ErrSignatureInvalid):
		utils.LogError("Webhook rejected: invalid signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
	case errors.Is(err, gateway.ErrUnknownWebhookSource):
		utils.LogError("Webhook rejected: unrecognized source")
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown webhook source"})
	case errors.Is(err, gateway.ErrUnparseablePayload):
		utils.LogError("Webhook rejected: unparseable payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "unparseable payload"})
	case errors.Is(err, payments.ErrPaymentNotFound):
		// Already logged by the orchestrator; acknowledge so the
		// provider stops retrying a notification that can never apply.
		c.JSON(http.StatusOK, gin.H{"received": true})
	default:
		utils.LogError("Webhook processing failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
	}
}
