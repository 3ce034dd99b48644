package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"zuricart/config"
	"zuricart/utils"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	flexcoreLiveURL    = "https://api.flexcore.africa"
	flexcoreSandboxURL = "https://sandbox.flexcore.africa"
)

var flexcoreStatuses = map[string]Status{
	"successful": StatusSuccess,
	"failed":     StatusFailed,
	"pending":    StatusPending,
	"reversed":   StatusFailed,
}

// Flexcore is a pan-African card gateway speaking JSON REST behind an
// OAuth2 client-credentials token. Webhooks carry a static verification
// hash header instead of a payload signature.
type Flexcore struct {
	clientID    string
	webhookHash string
	baseURL     string
	client      *http.Client
}

func NewFlexcore(creds config.GatewayCredentials, sandbox bool) *Flexcore {
	baseURL := creds.BaseURL
	if baseURL == "" {
		baseURL = flexcoreLiveURL
		if sandbox {
			baseURL = flexcoreSandboxURL
		}
	}
	f := &Flexcore{
		clientID:    creds.MerchantID,
		webhookHash: creds.Passphrase,
		baseURL:     baseURL,
	}
	if creds.MerchantID != "" && creds.Secret != "" {
		cc := &clientcredentials.Config{
			ClientID:     creds.MerchantID,
			ClientSecret: creds.Secret,
			TokenURL:     baseURL + "/oauth/token",
		}
		// Bound the token fetch and every API call by the same timeout.
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, newHTTPClient())
		f.client = cc.Client(ctx)
		f.client.Timeout = callTimeout
	}
	return f
}

func (f *Flexcore) Method() string { return "flexcore" }

func (f *Flexcore) configured() error {
	if f.client == nil {
		return &GatewayError{Provider: "flexcore", Kind: NotConfigured, Err: fmt.Errorf("FLEXCORE_MERCHANT_ID and FLEXCORE_SECRET must be set")}
	}
	return nil
}

type flexcoreChargeReq struct {
	TxRef       string            `json:"tx_ref"`
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency"`
	RedirectURL string            `json:"redirect_url,omitempty"`
	Customer    flexcoreCustomer  `json:"customer"`
	Meta        map[string]string `json:"meta,omitempty"`
}

type flexcoreCustomer struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phonenumber,omitempty"`
}

type flexcoreChargeResp struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID     int64  `json:"id"`
		TxRef  string `json:"tx_ref"`
		Link   string `json:"link"`
		Status string `json:"status"`
	} `json:"data"`
}

func (f *Flexcore) Initiate(ctx context.Context, req InitiateRequest) (*InitiationResult, error) {
	if err := f.configured(); err != nil {
		return nil, err
	}

	reference := newReference("fx", req.OrderID)
	payload := flexcoreChargeReq{
		TxRef:       reference,
		Amount:      fmt.Sprintf("%.2f", req.Amount),
		Currency:    req.Currency,
		RedirectURL: req.ReturnURL,
		Customer: flexcoreCustomer{
			Email: req.Email,
			Name:  req.FirstName + " " + req.LastName,
			Phone: req.Phone,
		},
		Meta: map[string]string{"webhook_url": req.CallbackURL},
	}

	var out flexcoreChargeResp
	raw, err := f.call(ctx, http.MethodPost, "/v3/charges", payload, &out)
	if err != nil {
		return nil, err
	}
	if out.Status != "success" {
		return nil, &GatewayError{Provider: "flexcore", Kind: ProviderRejected, Err: fmt.Errorf("%s: %s", out.Status, out.Message)}
	}
	if out.Data.Link == "" {
		return nil, &GatewayError{Provider: "flexcore", Kind: InvalidResponse, Err: fmt.Errorf("missing checkout link")}
	}

	utils.LogDebug("Flexcore initiate: tx_ref=%s id=%d", reference, out.Data.ID)
	return &InitiationResult{
		PaymentID:    reference,
		GatewayTxnID: fmt.Sprintf("%d", out.Data.ID),
		RedirectURL:  out.Data.Link,
		Currency:     req.Currency,
		ExpiresAt:    initiationExpiry(),
		RawResponse:  raw,
		Instructions: "Complete your card payment on the Flexcore checkout page.",
	}, nil
}

type flexcoreWebhook struct {
	Event string `json:"event"`
	Data  struct {
		ID     int64  `json:"id"`
		TxRef  string `json:"tx_ref"`
		Status string `json:"status"`
	} `json:"data"`
}

func (f *Flexcore) ParseWebhook(body []byte, header http.Header) (*WebhookResult, error) {
	hash := header.Get("X-Flexcore-Hash")
	if f.webhookHash == "" || !SecureCompare(hash, f.webhookHash) {
		return nil, fmt.Errorf("flexcore: %w", ErrSignatureInvalid)
	}

	var payload flexcoreWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("flexcore: %w", ErrUnparseablePayload)
	}
	status, ok := flexcoreStatuses[payload.Data.Status]
	if !ok {
		return nil, fmt.Errorf("flexcore: status %q: %w", payload.Data.Status, ErrUnparseablePayload)
	}
	if payload.Data.TxRef == "" {
		return nil, fmt.Errorf("flexcore: missing tx_ref: %w", ErrUnparseablePayload)
	}

	return &WebhookResult{
		PaymentID:     payload.Data.TxRef,
		TransactionID: fmt.Sprintf("%d", payload.Data.ID),
		Status:        status,
		RawPayload:    string(body),
	}, nil
}

func (f *Flexcore) Verify(ctx context.Context, paymentID, transactionRef string) (*VerificationResult, error) {
	if err := f.configured(); err != nil {
		return nil, err
	}

	var out flexcoreChargeResp
	raw, err := f.call(ctx, http.MethodGet, "/v3/charges/verify?tx_ref="+url.QueryEscape(paymentID), nil, &out)
	if err != nil {
		return nil, err
	}
	status, ok := flexcoreStatuses[out.Data.Status]
	if !ok {
		return nil, &GatewayError{Provider: "flexcore", Kind: InvalidResponse, Err: fmt.Errorf("unknown status %q", out.Data.Status)}
	}
	return &VerificationResult{
		PaymentID:     paymentID,
		Status:        status,
		GatewayStatus: out.Data.Status,
		RawResponse:   raw,
	}, nil
}

func (f *Flexcore) call(ctx context.Context, method, path string, payload, out interface{}) (string, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return "", &GatewayError{Provider: "flexcore", Kind: InvalidResponse, Err: err}
		}
		reqBody = bytes.NewReader(b)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, reqBody)
	if err != nil {
		return "", &GatewayError{Provider: "flexcore", Kind: NetworkFailure, Err: err}
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return "", &GatewayError{Provider: "flexcore", Kind: NetworkFailure, Err: err}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", &GatewayError{Provider: "flexcore", Kind: ProviderRejected, Err: fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 512))}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return "", &GatewayError{Provider: "flexcore", Kind: InvalidResponse, Err: err}
	}
	return truncate(body, 2048), nil
}
