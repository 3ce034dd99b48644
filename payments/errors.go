package payments

import "errors"

// Orchestrator error taxonomy. The handler layer maps these onto HTTP
// responses; provider detail never crosses this boundary.
var (
	// ErrOrderNotFound covers both a missing order and an order owned by
	// another user, so responses never leak record existence.
	ErrOrderNotFound = errors.New("order not found")

	// ErrAlreadyProcessed rejects re-initialization of an order whose
	// payment status has left "pending".
	ErrAlreadyProcessed = errors.New("payment for this order has already been processed")

	// ErrPaymentNotFound covers missing payments and ownership failures.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrPaymentInitFailed is the generic client-facing initiation
	// failure; the provider-level cause stays in server logs.
	ErrPaymentInitFailed = errors.New("payment initialization failed")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
