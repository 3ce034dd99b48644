package gateway

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"zuricart/config"
	"zuricart/utils"
)

const (
	mintGateLiveURL    = "https://gateway.mintgate.co.za"
	mintGateSandboxURL = "https://sandbox.mintgate.co.za"
)

// mintGateStatuses maps TRANSACTION_STATUS codes to the tri-state:
// 0 = not done, 1 = approved, 2 = declined, 3 = cancelled,
// 4 = cancelled by user, 5 = received (awaiting settlement).
var mintGateStatuses = map[string]Status{
	"0": StatusPending,
	"1": StatusSuccess,
	"2": StatusFailed,
	"3": StatusFailed,
	"4": StatusFailed,
	"5": StatusPending,
}

// MintGate is a redirect-based card gateway. Both the initiation call
// and its response are URL-encoded key/value sets protected by an MD5
// CHECKSUM; amounts travel in integer minor units (cents).
type MintGate struct {
	merchantID string
	secret     string
	baseURL    string
	client     *http.Client
}

func NewMintGate(creds config.GatewayCredentials, sandbox bool) *MintGate {
	baseURL := creds.BaseURL
	if baseURL == "" {
		baseURL = mintGateLiveURL
		if sandbox {
			baseURL = mintGateSandboxURL
		}
	}
	return &MintGate{
		merchantID: creds.MerchantID,
		secret:     creds.Secret,
		baseURL:    baseURL,
		client:     newHTTPClient(),
	}
}

func (m *MintGate) Method() string { return "mintgate" }

func (m *MintGate) configured() error {
	if m.merchantID == "" || m.secret == "" {
		return &GatewayError{Provider: "mintgate", Kind: NotConfigured, Err: fmt.Errorf("MINTGATE_MERCHANT_ID and MINTGATE_SECRET must be set")}
	}
	return nil
}

func (m *MintGate) Initiate(ctx context.Context, req InitiateRequest) (*InitiationResult, error) {
	if err := m.configured(); err != nil {
		return nil, err
	}

	reference := newReference("mg", req.OrderID)
	fields := map[string]string{
		"MERCHANT_ID": m.merchantID,
		"REFERENCE":   reference,
		"AMOUNT":      strconv.FormatInt(int64(math.Round(req.Amount*100)), 10),
		"CURRENCY":    req.Currency,
		"RETURN_URL":  req.ReturnURL,
		"NOTIFY_URL":  req.CallbackURL,
		"EMAIL":       req.Email,
	}
	fields["CHECKSUM"] = SignMD5(withoutKey(fields, "CHECKSUM"), m.secret)

	respFields, err := m.post(ctx, "/payweb/initiate", fields)
	if err != nil {
		return nil, err
	}
	if respFields["ERROR"] != "" {
		return nil, &GatewayError{Provider: "mintgate", Kind: ProviderRejected, Err: fmt.Errorf("error code %s", respFields["ERROR"])}
	}
	payRequestID := respFields["PAY_REQUEST_ID"]
	if payRequestID == "" {
		return nil, &GatewayError{Provider: "mintgate", Kind: InvalidResponse, Err: fmt.Errorf("missing PAY_REQUEST_ID")}
	}
	checksum := respFields["CHECKSUM"]
	if !VerifyMD5(withoutKey(respFields, "CHECKSUM"), m.secret, checksum) {
		return nil, &GatewayError{Provider: "mintgate", Kind: InvalidResponse, Err: fmt.Errorf("response checksum mismatch")}
	}

	utils.LogDebug("MintGate initiate: reference=%s pay_request_id=%s", reference, payRequestID)
	return &InitiationResult{
		PaymentID:    reference,
		GatewayTxnID: payRequestID,
		RedirectURL:  m.baseURL + "/payweb/redirect?PAY_REQUEST_ID=" + url.QueryEscape(payRequestID),
		Currency:     req.Currency,
		ExpiresAt:    initiationExpiry(),
		RawResponse:  encodeFields(respFields),
		Instructions: "Complete your card payment on the MintGate secure page.",
	}, nil
}

func (m *MintGate) ParseWebhook(body []byte, header http.Header) (*WebhookResult, error) {
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("mintgate: %w", ErrUnparseablePayload)
	}
	fields := make(map[string]string, len(form))
	for k := range form {
		fields[k] = form.Get(k)
	}
	checksum := fields["CHECKSUM"]
	if checksum == "" || !VerifyMD5(withoutKey(fields, "CHECKSUM"), m.secret, checksum) {
		return nil, fmt.Errorf("mintgate: %w", ErrSignatureInvalid)
	}

	status, ok := mintGateStatuses[fields["TRANSACTION_STATUS"]]
	if !ok {
		return nil, fmt.Errorf("mintgate: status %q: %w", fields["TRANSACTION_STATUS"], ErrUnparseablePayload)
	}
	reference := fields["REFERENCE"]
	if reference == "" {
		return nil, fmt.Errorf("mintgate: missing REFERENCE: %w", ErrUnparseablePayload)
	}

	return &WebhookResult{
		PaymentID:     reference,
		TransactionID: fields["PAY_REQUEST_ID"],
		Status:        status,
		RawPayload:    string(body),
	}, nil
}

func (m *MintGate) Verify(ctx context.Context, paymentID, transactionRef string) (*VerificationResult, error) {
	if err := m.configured(); err != nil {
		return nil, err
	}
	if transactionRef == "" {
		return nil, &GatewayError{Provider: "mintgate", Kind: InvalidResponse, Err: fmt.Errorf("query requires the PAY_REQUEST_ID from initiation")}
	}

	fields := map[string]string{
		"MERCHANT_ID":    m.merchantID,
		"PAY_REQUEST_ID": transactionRef,
		"REFERENCE":      paymentID,
	}
	fields["CHECKSUM"] = SignMD5(withoutKey(fields, "CHECKSUM"), m.secret)

	respFields, err := m.post(ctx, "/payweb/query", fields)
	if err != nil {
		return nil, err
	}
	status, ok := mintGateStatuses[respFields["TRANSACTION_STATUS"]]
	if !ok {
		return nil, &GatewayError{Provider: "mintgate", Kind: InvalidResponse, Err: fmt.Errorf("unknown TRANSACTION_STATUS %q", respFields["TRANSACTION_STATUS"])}
	}
	return &VerificationResult{
		PaymentID:     paymentID,
		Status:        status,
		GatewayStatus: respFields["TRANSACTION_STATUS"],
		RawResponse:   encodeFields(respFields),
	}, nil
}

// post sends a form-encoded request and parses the URL-encoded response.
func (m *MintGate) post(ctx context.Context, path string, fields map[string]string) (map[string]string, error) {
	form := url.Values{}
	for k, v := range fields {
		if v != "" {
			form.Set(k, v)
		}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &GatewayError{Provider: "mintgate", Kind: NetworkFailure, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, &GatewayError{Provider: "mintgate", Kind: NetworkFailure, Err: err}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, &GatewayError{Provider: "mintgate", Kind: ProviderRejected, Err: fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 512))}
	}

	parsed, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, &GatewayError{Provider: "mintgate", Kind: InvalidResponse, Err: err}
	}
	out := make(map[string]string, len(parsed))
	for k := range parsed {
		out[k] = parsed.Get(k)
	}
	return out, nil
}

func encodeFields(fields map[string]string) string {
	v := url.Values{}
	for k, val := range fields {
		v.Set(k, val)
	}
	return v.Encode()
}
