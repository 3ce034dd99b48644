package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Status is the generic tri-state every provider vocabulary collapses to.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Adapter type constants
const (
	TypeCard        = "card"
	TypeMobileMoney = "mobile_money"
)

// InitiateRequest is the generic payment-initiation request the
// orchestrator hands to an adapter. Amount is in major currency units;
// each adapter converts to whatever unit its provider expects.
type InitiateRequest struct {
	OrderID     string
	Amount      float64
	Currency    string
	Email       string
	FirstName   string
	LastName    string
	Phone       string // required by mobile-money adapters
	ReturnURL   string // optional, redirect-based card adapters
	CallbackURL string
	Description string
}

// InitiationResult is the generic outcome of a provider initiation call.
type InitiationResult struct {
	PaymentID    string // gateway reference, doubles as the Payment row ID
	GatewayTxnID string // provider-assigned ID, may be empty until webhook
	RedirectURL  string // empty for on-device confirmation flows
	Currency     string
	ExpiresAt    time.Time
	RawResponse  string
	Instructions string
}

// WebhookResult is a parsed, signature-verified provider notification.
type WebhookResult struct {
	PaymentID     string
	TransactionID string
	Status        Status
	RawPayload    string
}

// VerificationResult is the outcome of an active status poll.
type VerificationResult struct {
	PaymentID     string
	Status        Status
	GatewayStatus string // provider's own vocabulary, for diagnostics
	RawResponse   string
}

// Adapter unifies one provider's wire protocol behind the generic
// contract. The orchestrator never branches on the concrete type.
type Adapter interface {
	// Method is the stable payment-method identifier, e.g. "mintgate".
	Method() string
	// Initiate builds and sends the provider-specific initiation request.
	Initiate(ctx context.Context, req InitiateRequest) (*InitiationResult, error)
	// ParseWebhook verifies and translates an inbound notification.
	// It performs no I/O and never mutates state.
	ParseWebhook(body []byte, header http.Header) (*WebhookResult, error)
	// Verify polls the provider's query endpoint where one exists.
	Verify(ctx context.Context, paymentID, transactionRef string) (*VerificationResult, error)
}

// Webhook-boundary sentinels. A signature mismatch fails closed.
var (
	ErrSignatureInvalid        = errors.New("webhook signature invalid")
	ErrUnparseablePayload      = errors.New("webhook payload unparseable")
	ErrVerificationUnavailable = errors.New("provider has no verification endpoint; rely on webhook delivery")
)

// ErrorKind classifies adapter failures for the orchestrator's logging;
// clients only ever see a generic initialization failure.
type ErrorKind int

const (
	NetworkFailure ErrorKind = iota + 1
	InvalidResponse
	ProviderRejected
	NotConfigured
)

func (k ErrorKind) String() string {
	switch k {
	case NetworkFailure:
		return "network failure"
	case InvalidResponse:
		return "invalid response"
	case ProviderRejected:
		return "provider rejected"
	case NotConfigured:
		return "not configured"
	}
	return "unknown"
}

// GatewayError wraps a provider-side failure with enough context for
// server-side logs.
type GatewayError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// newReference builds the deterministic per-attempt reference,
// {prefix}_{orderID}_{unixMilli}, unique across retries of one order.
func newReference(prefix, orderID string) string {
	return fmt.Sprintf("%s_%s_%d", prefix, orderID, time.Now().UnixMilli())
}

// callTimeout bounds every outbound gateway call.
const callTimeout = 10 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: callTimeout}
}
