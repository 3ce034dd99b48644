package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"

	"zuricart/config"
	"zuricart/utils"
)

const (
	celloCashLiveURL    = "https://api.cellocash.io"
	celloCashSandboxURL = "https://sandbox.cellocash.io"
)

var celloCashStatuses = map[string]Status{
	"success":    StatusSuccess,
	"error":      StatusFailed,
	"processing": StatusPending,
}

// CelloCash is a mobile-money gateway speaking JSON REST. Every request
// and webhook body is authenticated with a hex HMAC-SHA512 over the raw
// payload, carried in the X-CelloCash-Signature header. Amounts travel
// in integer minor units.
type CelloCash struct {
	apiKey        string
	signingSecret string
	webhookSecret string
	baseURL       string
	client        *http.Client
}

func NewCelloCash(creds config.GatewayCredentials, sandbox bool) *CelloCash {
	baseURL := creds.BaseURL
	if baseURL == "" {
		baseURL = celloCashLiveURL
		if sandbox {
			baseURL = celloCashSandboxURL
		}
	}
	return &CelloCash{
		apiKey:        creds.MerchantID,
		signingSecret: creds.Secret,
		webhookSecret: creds.Passphrase,
		baseURL:       baseURL,
		client:        newHTTPClient(),
	}
}

func (c *CelloCash) Method() string { return "cellocash" }

func (c *CelloCash) configured() error {
	if c.apiKey == "" || c.signingSecret == "" {
		return &GatewayError{Provider: "cellocash", Kind: NotConfigured, Err: fmt.Errorf("CELLOCASH_MERCHANT_ID and CELLOCASH_SECRET must be set")}
	}
	return nil
}

type celloCashChargeReq struct {
	Reference   string `json:"reference"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	MSISDN      string `json:"msisdn"`
	Description string `json:"description,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type celloCashChargeResp struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

func (c *CelloCash) Initiate(ctx context.Context, req InitiateRequest) (*InitiationResult, error) {
	if err := c.configured(); err != nil {
		return nil, err
	}

	reference := newReference("cc", req.OrderID)
	payload := celloCashChargeReq{
		Reference:   reference,
		AmountCents: int64(math.Round(req.Amount * 100)),
		Currency:    req.Currency,
		MSISDN:      req.Phone,
		Description: req.Description,
		CallbackURL: req.CallbackURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &GatewayError{Provider: "cellocash", Kind: InvalidResponse, Err: err}
	}

	utils.LogDebug("CelloCash initiate: reference=%s amount_cents=%d", reference, payload.AmountCents)
	respBody, err := c.call(ctx, http.MethodPost, "/api/v2/charges", body)
	if err != nil {
		return nil, err
	}

	var out celloCashChargeResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, &GatewayError{Provider: "cellocash", Kind: InvalidResponse, Err: err}
	}
	if out.Status == "error" {
		return nil, &GatewayError{Provider: "cellocash", Kind: ProviderRejected, Err: fmt.Errorf("%s", out.Message)}
	}

	return &InitiationResult{
		PaymentID:    reference,
		GatewayTxnID: out.TransactionID,
		Currency:     req.Currency,
		ExpiresAt:    initiationExpiry(),
		RawResponse:  truncate(respBody, 2048),
		Instructions: "Enter your mobile money PIN when prompted to authorize this payment.",
	}, nil
}

type celloCashWebhook struct {
	Reference     string `json:"reference"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
}

func (c *CelloCash) ParseWebhook(body []byte, header http.Header) (*WebhookResult, error) {
	signature := header.Get("X-CelloCash-Signature")
	if c.webhookSecret == "" || signature == "" || !VerifyHMACSHA512(body, c.webhookSecret, signature) {
		return nil, fmt.Errorf("cellocash: %w", ErrSignatureInvalid)
	}

	var payload celloCashWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("cellocash: %w", ErrUnparseablePayload)
	}
	status, ok := celloCashStatuses[payload.Status]
	if !ok {
		return nil, fmt.Errorf("cellocash: status %q: %w", payload.Status, ErrUnparseablePayload)
	}
	if payload.Reference == "" {
		return nil, fmt.Errorf("cellocash: missing reference: %w", ErrUnparseablePayload)
	}

	return &WebhookResult{
		PaymentID:     payload.Reference,
		TransactionID: payload.TransactionID,
		Status:        status,
		RawPayload:    string(body),
	}, nil
}

func (c *CelloCash) Verify(ctx context.Context, paymentID, transactionRef string) (*VerificationResult, error) {
	if err := c.configured(); err != nil {
		return nil, err
	}

	respBody, err := c.call(ctx, http.MethodGet, "/api/v2/charges/"+paymentID, nil)
	if err != nil {
		return nil, err
	}
	var out celloCashChargeResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, &GatewayError{Provider: "cellocash", Kind: InvalidResponse, Err: err}
	}
	status, ok := celloCashStatuses[out.Status]
	if !ok {
		return nil, &GatewayError{Provider: "cellocash", Kind: InvalidResponse, Err: fmt.Errorf("unknown status %q", out.Status)}
	}
	return &VerificationResult{
		PaymentID:     paymentID,
		Status:        status,
		GatewayStatus: out.Status,
		RawResponse:   truncate(respBody, 2048),
	}, nil
}

// call sends a signed request: the signature covers the raw body, or the
// request path for bodiless GETs.
func (c *CelloCash) call(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	signed := []byte(path)
	if body != nil {
		reader = bytes.NewReader(body)
		signed = body
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &GatewayError{Provider: "cellocash", Kind: NetworkFailure, Err: err}
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("X-CelloCash-Key", c.apiKey)
	httpReq.Header.Set("X-CelloCash-Signature", SignHMACSHA512(signed, c.signingSecret))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &GatewayError{Provider: "cellocash", Kind: NetworkFailure, Err: err}
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &GatewayError{Provider: "cellocash", Kind: ProviderRejected, Err: fmt.Errorf("status %d: %s", resp.StatusCode, truncate(respBody, 512))}
	}
	return respBody, nil
}
