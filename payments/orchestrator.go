package payments

import (
	"context"
	"errors"
	"net/http"
	"time"

	"zuricart/gateway"
	"zuricart/models"
	"zuricart/utils"
)

// OrderStore is the relational persistence boundary for orders.
type OrderStore interface {
	GetForUser(orderID string, userID uint) (*models.Order, error)
	GetByID(orderID string) (*models.Order, error)
	// SetPaymentOutcome conditionally resolves the order's payment
	// status; it only applies while the current status is "pending",
	// and the return reports whether this caller won the transition.
	// An empty fulfillment leaves the fulfillment status untouched.
	SetPaymentOutcome(orderID, paymentStatus, fulfillmentStatus string) (bool, error)
}

// PaymentStore is the relational persistence boundary for payments.
type PaymentStore interface {
	Create(p *models.Payment) error
	GetByID(id string) (*models.Payment, error)
	// FinalizeIfPending is the row-level compare-and-set: the update
	// applies only if the payment is still "pending", and the return
	// reports whether this caller won the transition.
	FinalizeIfPending(id, status, gatewayTxnID, rawResponse string, processedAt *time.Time) (bool, error)
}

// NotificationSink receives best-effort confirmation events. Failures
// are logged by the orchestrator and never affect payment state.
type NotificationSink interface {
	PaymentConfirmed(order *models.Order, payment *models.Payment) error
}

// CommissionSink credits affiliate commission on successful payments,
// best-effort like notifications.
type CommissionSink interface {
	RecordCommission(order *models.Order) error
}

// Gateways is the registry surface the orchestrator depends on.
type Gateways interface {
	Resolve(methodID, country string) (gateway.Adapter, error)
	Adapter(methodID string) (gateway.Adapter, error)
	Describe(methodID string) (gateway.MethodDescriptor, bool)
	DetectSource(header http.Header, contentType string, body []byte) (gateway.Adapter, error)
}

// InitializeRequest carries the client's initiation parameters.
type InitializeRequest struct {
	OrderID   string
	Method    string
	ReturnURL string
	Phone     string
}

// InitResult is the client-facing subset of a gateway initiation.
type InitResult struct {
	PaymentID    string    `json:"payment_id"`
	PaymentURL   string    `json:"payment_url,omitempty"`
	Currency     string    `json:"currency"`
	ExpiresAt    time.Time `json:"expires_at"`
	Instructions string    `json:"instructions"`
}

// Orchestrator drives the payment state machine: it validates orders,
// selects adapters, persists payment attempts, and reconciles webhook
// results. Payments move pending -> success or pending -> failed,
// exactly once, regardless of how often a webhook is delivered.
type Orchestrator struct {
	gateways   Gateways
	orders     OrderStore
	payments   PaymentStore
	notifier   NotificationSink
	commission CommissionSink
	webhookURL string
}

func NewOrchestrator(gateways Gateways, orders OrderStore, payments PaymentStore, notifier NotificationSink, commission CommissionSink, webhookURL string) *Orchestrator {
	return &Orchestrator{
		gateways:   gateways,
		orders:     orders,
		payments:   payments,
		notifier:   notifier,
		commission: commission,
		webhookURL: webhookURL,
	}
}

// Initialize validates the order, selects the adapter and starts one
// payment attempt. No Payment row is written unless the provider call
// succeeds, so a failed initiation leaves nothing to clean up.
func (o *Orchestrator) Initialize(ctx context.Context, user models.User, req InitializeRequest) (*InitResult, error) {
	order, err := o.orders.GetForUser(req.OrderID, user.ID)
	if err != nil {
		return nil, err
	}

	// First idempotency guard: a resolved order cannot be re-initiated.
	// Checked before any external call.
	if order.PaymentStatus != models.PaymentStatusPending {
		return nil, ErrAlreadyProcessed
	}
	if order.TotalAmount <= 0 {
		return nil, &ValidationError{Field: "order", Message: "order total must be greater than zero"}
	}

	adapter, err := o.gateways.Resolve(req.Method, user.Country)
	if err != nil {
		return nil, err
	}

	currency, ok := gateway.CurrencyForCountry(user.Country)
	if !ok {
		return nil, &ValidationError{Field: "country", Message: "no supported currency for country " + user.Country}
	}

	phone := req.Phone
	if phone == "" {
		phone = user.Phone
	}
	if desc, ok := o.gateways.Describe(req.Method); ok && desc.Type == gateway.TypeMobileMoney {
		if !utils.ValidPhone(phone) {
			return nil, &ValidationError{Field: "phone_number", Message: "a valid phone number is required for mobile money payments"}
		}
	}

	result, err := adapter.Initiate(ctx, gateway.InitiateRequest{
		OrderID:     order.ID,
		Amount:      order.TotalAmount,
		Currency:    currency,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Phone:       phone,
		ReturnURL:   req.ReturnURL,
		CallbackURL: o.webhookURL,
		Description: "ZuriCart order " + order.ID,
	})
	if err != nil {
		utils.LogError("Payment initiation failed for order %s via %s: %v", order.ID, req.Method, err)
		return nil, ErrPaymentInitFailed
	}

	payment := &models.Payment{
		ID:           result.PaymentID,
		OrderID:      order.ID,
		UserID:       user.ID,
		Method:       req.Method,
		Amount:       order.TotalAmount,
		Currency:     currency,
		Status:       models.PaymentStatusPending,
		GatewayTxnID: result.GatewayTxnID,
		RawResponse:  result.RawResponse,
	}
	if err := o.payments.Create(payment); err != nil {
		utils.LogError("Failed to persist payment %s for order %s: %v", result.PaymentID, order.ID, err)
		return nil, err
	}
	utils.LogInfo("Payment %s initiated for order %s via %s", result.PaymentID, order.ID, req.Method)

	return &InitResult{
		PaymentID:    result.PaymentID,
		PaymentURL:   result.RedirectURL,
		Currency:     result.Currency,
		ExpiresAt:    result.ExpiresAt,
		Instructions: result.Instructions,
	}, nil
}

// Reconcile applies one provider notification to internal state. It is
// safe under at-least-once delivery: once a payment is terminal, every
// replay is a no-op that still reports success so the provider stops
// retrying. Only a signature failure or an unrecognized source returns
// an error to the webhook boundary.
func (o *Orchestrator) Reconcile(ctx context.Context, header http.Header, contentType string, body []byte) error {
	adapter, err := o.gateways.DetectSource(header, contentType, body)
	if err != nil {
		return err
	}

	result, err := adapter.ParseWebhook(body, header)
	if err != nil {
		return err
	}

	payment, err := o.payments.GetByID(result.PaymentID)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			// Possibly stale or forged; observable in logs, never mutates.
			utils.LogError("Webhook from %s references unknown payment %s", adapter.Method(), result.PaymentID)
		}
		return err
	}

	// Idempotency guard: terminal payments absorb replays silently.
	if payment.Status != models.PaymentStatusPending {
		utils.LogInfo("Webhook replay for terminal payment %s (status %s), no-op", payment.ID, payment.Status)
		return nil
	}

	// Order-level guard: an order may carry several pending attempts,
	// but only one may ever resolve it. Once another attempt has, every
	// sibling's webhook is a no-op too.
	order, err := o.orders.GetByID(payment.OrderID)
	if err != nil {
		return err
	}
	if order.PaymentStatus != models.PaymentStatusPending {
		utils.LogInfo("Webhook for payment %s ignored, order %s already resolved (%s)", payment.ID, order.ID, order.PaymentStatus)
		return nil
	}

	// Interim provider notification; nothing to transition yet.
	if result.Status == gateway.StatusPending {
		utils.LogDebug("Webhook for payment %s still pending at %s", payment.ID, adapter.Method())
		return nil
	}

	var processedAt *time.Time
	if result.Status == gateway.StatusSuccess {
		now := time.Now()
		processedAt = &now
	}
	won, err := o.payments.FinalizeIfPending(payment.ID, string(result.Status), result.TransactionID, result.RawPayload, processedAt)
	if err != nil {
		return err
	}
	if !won {
		// A concurrent delivery finalized first; same no-op as the guard.
		utils.LogInfo("Concurrent reconcile lost the race for payment %s, no-op", payment.ID)
		return nil
	}

	if result.Status == gateway.StatusSuccess {
		orderWon, err := o.orders.SetPaymentOutcome(payment.OrderID, models.PaymentStatusSuccess, models.OrderStatusPaid)
		if err != nil {
			utils.LogError("Failed to mark order %s paid after payment %s: %v", payment.OrderID, payment.ID, err)
			return err
		}
		if !orderWon {
			// A sibling attempt resolved the order in between; the
			// side effects belong to that attempt alone.
			utils.LogInfo("Order %s resolved concurrently, skipping side effects for payment %s", payment.OrderID, payment.ID)
			return nil
		}
		utils.LogInfo("Payment %s succeeded, order %s marked paid", payment.ID, payment.OrderID)
		o.fireSideEffects(payment)
		return nil
	}

	// Failed: resolve the order's payment status but leave fulfillment
	// untouched so a later attempt could pick the order back up.
	if _, err := o.orders.SetPaymentOutcome(payment.OrderID, models.PaymentStatusFailed, ""); err != nil {
		utils.LogError("Failed to mark order %s payment failed: %v", payment.OrderID, err)
		return err
	}
	utils.LogInfo("Payment %s failed for order %s", payment.ID, payment.OrderID)
	return nil
}

// fireSideEffects runs the best-effort post-success hooks. Failures are
// logged and swallowed; payment state is already final.
func (o *Orchestrator) fireSideEffects(payment *models.Payment) {
	order, err := o.orders.GetByID(payment.OrderID)
	if err != nil {
		utils.LogError("Post-payment side effects skipped, order %s unavailable: %v", payment.OrderID, err)
		return
	}
	if o.notifier != nil {
		if err := o.notifier.PaymentConfirmed(order, payment); err != nil {
			utils.LogError("Payment confirmation email failed for order %s: %v", order.ID, err)
		}
	}
	if o.commission != nil {
		if err := o.commission.RecordCommission(order); err != nil {
			utils.LogError("Affiliate commission credit failed for order %s: %v", order.ID, err)
		}
	}
}

// Verify authorizes the caller and polls the provider. Purely advisory:
// only webhook-driven reconciliation mutates Payment or Order state.
func (o *Orchestrator) Verify(ctx context.Context, userID uint, paymentID, transactionRef string) (*gateway.VerificationResult, error) {
	payment, err := o.payments.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		return nil, ErrPaymentNotFound
	}

	adapter, err := o.gateways.Adapter(payment.Method)
	if err != nil {
		return nil, err
	}
	if transactionRef == "" {
		transactionRef = payment.GatewayTxnID
	}
	return adapter.Verify(ctx, paymentID, transactionRef)
}

// Status returns the payment and its parent order, owner-only.
func (o *Orchestrator) Status(userID uint, paymentID string) (*models.Payment, *models.Order, error) {
	payment, err := o.payments.GetByID(paymentID)
	if err != nil {
		return nil, nil, err
	}
	if payment.UserID != userID {
		return nil, nil, ErrPaymentNotFound
	}
	order, err := o.orders.GetByID(payment.OrderID)
	if err != nil {
		return nil, nil, err
	}
	return payment, order, nil
}
