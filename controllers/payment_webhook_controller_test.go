package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"zuricart/gateway"
	"zuricart/models"
	"zuricart/payments"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// webhookAdapter scripts ParseWebhook for handler-level tests.
type webhookAdapter struct {
	result *gateway.WebhookResult
	err    error
}

func (a *webhookAdapter) Method() string { return "mintgate" }

func (a *webhookAdapter) Initiate(ctx context.Context, req gateway.InitiateRequest) (*gateway.InitiationResult, error) {
	return nil, gateway.ErrVerificationUnavailable
}

func (a *webhookAdapter) ParseWebhook(body []byte, header http.Header) (*gateway.WebhookResult, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.result, nil
}

func (a *webhookAdapter) Verify(ctx context.Context, paymentID, transactionRef string) (*gateway.VerificationResult, error) {
	return nil, gateway.ErrVerificationUnavailable
}

type webhookGateways struct {
	adapter   gateway.Adapter
	detectErr error
}

func (g *webhookGateways) Resolve(methodID, country string) (gateway.Adapter, error) {
	return g.adapter, nil
}
func (g *webhookGateways) Adapter(methodID string) (gateway.Adapter, error) {
	return g.adapter, nil
}
func (g *webhookGateways) Describe(methodID string) (gateway.MethodDescriptor, bool) {
	return gateway.MethodDescriptor{ID: methodID, Type: gateway.TypeCard}, true
}
func (g *webhookGateways) DetectSource(header http.Header, contentType string, body []byte) (gateway.Adapter, error) {
	if g.detectErr != nil {
		return nil, g.detectErr
	}
	return g.adapter, nil
}

type singleOrderStore struct{ order models.Order }

func (s *singleOrderStore) GetForUser(orderID string, userID uint) (*models.Order, error) {
	cp := s.order
	return &cp, nil
}
func (s *singleOrderStore) GetByID(orderID string) (*models.Order, error) {
	cp := s.order
	return &cp, nil
}
func (s *singleOrderStore) SetPaymentOutcome(orderID, paymentStatus, fulfillmentStatus string) (bool, error) {
	return true, nil
}

type singlePaymentStore struct{ payment *models.Payment }

func (s *singlePaymentStore) Create(p *models.Payment) error { return nil }
func (s *singlePaymentStore) GetByID(id string) (*models.Payment, error) {
	if s.payment == nil || s.payment.ID != id {
		return nil, payments.ErrPaymentNotFound
	}
	cp := *s.payment
	return &cp, nil
}
func (s *singlePaymentStore) FinalizeIfPending(id, status, gatewayTxnID, rawResponse string, processedAt *time.Time) (bool, error) {
	s.payment.Status = status
	return true, nil
}

func webhookRouter(gw payments.Gateways, store payments.PaymentStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	orch := payments.NewOrchestrator(
		gw,
		&singleOrderStore{order: models.Order{ID: "ord-1", PaymentStatus: models.PaymentStatusPending}},
		store,
		nil,
		nil,
		"https://shop.example.com/v1/payments/webhook",
	)
	router := gin.New()
	router.POST("/v1/payments/webhook", NewWebhookHandler(orch).HandleWebhook)
	return router
}

func postWebhook(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookEndpointAcknowledgesProcessed(t *testing.T) {
	store := &singlePaymentStore{payment: &models.Payment{ID: "mg_ord-1_1", OrderID: "ord-1", Status: models.PaymentStatusPending}}
	gw := &webhookGateways{adapter: &webhookAdapter{result: &gateway.WebhookResult{PaymentID: "mg_ord-1_1", Status: gateway.StatusSuccess}}}

	w := postWebhook(t, webhookRouter(gw, store), "TRANSACTION_STATUS=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"received":true`)
	assert.Equal(t, models.PaymentStatusSuccess, store.payment.Status)
}

func TestWebhookEndpointAcknowledgesReplay(t *testing.T) {
	store := &singlePaymentStore{payment: &models.Payment{ID: "mg_ord-1_1", OrderID: "ord-1", Status: models.PaymentStatusSuccess}}
	gw := &webhookGateways{adapter: &webhookAdapter{result: &gateway.WebhookResult{PaymentID: "mg_ord-1_1", Status: gateway.StatusSuccess}}}

	w := postWebhook(t, webhookRouter(gw, store), "TRANSACTION_STATUS=1")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookEndpointAcknowledgesUnknownPayment(t *testing.T) {
	// a notification for a payment we never created still gets a 200 so
	// the provider stops retrying
	store := &singlePaymentStore{}
	gw := &webhookGateways{adapter: &webhookAdapter{result: &gateway.WebhookResult{PaymentID: "mg_ghost_1", Status: gateway.StatusSuccess}}}

	w := postWebhook(t, webhookRouter(gw, store), "TRANSACTION_STATUS=1")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookEndpointRejectsBadSignature(t *testing.T) {
	store := &singlePaymentStore{}
	gw := &webhookGateways{adapter: &webhookAdapter{err: gateway.ErrSignatureInvalid}}

	w := postWebhook(t, webhookRouter(gw, store), "TRANSACTION_STATUS=1")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookEndpointRejectsUnknownSource(t *testing.T) {
	store := &singlePaymentStore{}
	gw := &webhookGateways{detectErr: gateway.ErrUnknownWebhookSource}

	w := postWebhook(t, webhookRouter(gw, store), "whatever")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookEndpointRejectsUnparseablePayload(t *testing.T) {
	store := &singlePaymentStore{}
	gw := &webhookGateways{adapter: &webhookAdapter{err: gateway.ErrUnparseablePayload}}

	w := postWebhook(t, webhookRouter(gw, store), "%%%")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
