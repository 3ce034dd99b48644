package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"zuricart/config"
	"zuricart/utils"
)

const (
	payHavenLiveURL    = "https://secure.payhaven.co.za"
	payHavenSandboxURL = "https://sandbox.payhaven.co.za"
)

// payHavenStatuses maps the provider's payment_status vocabulary to the
// generic tri-state.
var payHavenStatuses = map[string]Status{
	"COMPLETE": StatusSuccess,
	"FAILED":   StatusFailed,
	"PENDING":  StatusPending,
}

// redirect URL embedded in the hosted payment page returned on initiate
var payHavenRedirectPattern = regexp.MustCompile(`https://[^"'\s<>]+/pay/[A-Za-z0-9-]+`)

// PayHaven is a redirect-based card gateway. Initiation is a signed form
// POST whose response is an HTML page embedding the hosted checkout URL;
// webhooks arrive as signed form posts. PayHaven exposes no query
// endpoint, so Verify always reports VerificationUnavailable.
type PayHaven struct {
	merchantID  string
	merchantKey string
	passphrase  string
	baseURL     string
	client      *http.Client
}

func NewPayHaven(creds config.GatewayCredentials, sandbox bool) *PayHaven {
	baseURL := creds.BaseURL
	if baseURL == "" {
		baseURL = payHavenLiveURL
		if sandbox {
			baseURL = payHavenSandboxURL
		}
	}
	return &PayHaven{
		merchantID:  creds.MerchantID,
		merchantKey: creds.Secret,
		passphrase:  creds.Passphrase,
		baseURL:     baseURL,
		client:      newHTTPClient(),
	}
}

func (p *PayHaven) Method() string { return "payhaven" }

func (p *PayHaven) configured() error {
	if p.merchantID == "" || p.merchantKey == "" || p.passphrase == "" {
		return &GatewayError{Provider: "payhaven", Kind: NotConfigured, Err: fmt.Errorf("PAYHAVEN_MERCHANT_ID, PAYHAVEN_SECRET and PAYHAVEN_PASSPHRASE must be set")}
	}
	return nil
}

func (p *PayHaven) Initiate(ctx context.Context, req InitiateRequest) (*InitiationResult, error) {
	if err := p.configured(); err != nil {
		return nil, err
	}

	reference := newReference("ph", req.OrderID)
	fields := map[string]string{
		"merchant_id":  p.merchantID,
		"merchant_key": p.merchantKey,
		"m_payment_id": reference,
		"amount":       fmt.Sprintf("%.2f", req.Amount),
		"currency":     req.Currency,
		"item_name":    req.Description,
		"email":        req.Email,
		"return_url":   req.ReturnURL,
		"notify_url":   req.CallbackURL,
	}
	fields["signature"] = SignMD5(withoutKey(fields, "signature"), p.passphrase)

	form := url.Values{}
	for k, v := range fields {
		if v != "" {
			form.Set(k, v)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/eng/process", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &GatewayError{Provider: "payhaven", Kind: NetworkFailure, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	utils.LogDebug("PayHaven initiate: reference=%s amount=%.2f %s", reference, req.Amount, req.Currency)
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &GatewayError{Provider: "payhaven", Kind: NetworkFailure, Err: err}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, &GatewayError{Provider: "payhaven", Kind: ProviderRejected, Err: fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 512))}
	}

	redirect := payHavenRedirectPattern.FindString(string(body))
	if redirect == "" {
		return nil, &GatewayError{Provider: "payhaven", Kind: InvalidResponse, Err: fmt.Errorf("no checkout URL in response page")}
	}

	return &InitiationResult{
		PaymentID:    reference,
		RedirectURL:  redirect,
		Currency:     req.Currency,
		ExpiresAt:    initiationExpiry(),
		RawResponse:  truncate(body, 2048),
		Instructions: "Complete your card payment on the PayHaven checkout page.",
	}, nil
}

func (p *PayHaven) ParseWebhook(body []byte, header http.Header) (*WebhookResult, error) {
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("payhaven: %w", ErrUnparseablePayload)
	}

	fields := make(map[string]string, len(form))
	for k := range form {
		fields[k] = form.Get(k)
	}
	signature := fields["signature"]
	if signature == "" || !VerifyMD5(withoutKey(fields, "signature"), p.passphrase, signature) {
		return nil, fmt.Errorf("payhaven: %w", ErrSignatureInvalid)
	}

	status, ok := payHavenStatuses[fields["payment_status"]]
	if !ok {
		return nil, fmt.Errorf("payhaven: status %q: %w", fields["payment_status"], ErrUnparseablePayload)
	}
	paymentID := fields["m_payment_id"]
	if paymentID == "" {
		return nil, fmt.Errorf("payhaven: missing m_payment_id: %w", ErrUnparseablePayload)
	}

	return &WebhookResult{
		PaymentID:     paymentID,
		TransactionID: fields["ph_payment_id"],
		Status:        status,
		RawPayload:    string(body),
	}, nil
}

// Verify is a documented no-op: PayHaven has no transaction query API,
// so status can only come from webhook delivery.
func (p *PayHaven) Verify(ctx context.Context, paymentID, transactionRef string) (*VerificationResult, error) {
	return nil, fmt.Errorf("payhaven: %w", ErrVerificationUnavailable)
}
