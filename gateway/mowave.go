package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"zuricart/config"
	"zuricart/utils"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	moWaveLiveURL    = "https://api.mowave.africa"
	moWaveSandboxURL = "https://sandbox.mowave.africa"
)

// moWaveStatuses covers the provider's six collection states.
var moWaveStatuses = map[string]Status{
	"PENDING":    StatusPending,
	"ONGOING":    StatusPending,
	"SUCCESSFUL": StatusSuccess,
	"FAILED":     StatusFailed,
	"TIMEOUT":    StatusFailed,
	"REJECTED":   StatusFailed,
}

// MoWave is a mobile-money collection gateway. Initiation pushes an
// approval prompt to the customer's handset: the API answers 202 with no
// body and the caller-generated X-Reference-Id is the transaction
// handle from then on. Webhooks carry a static callback token header.
type MoWave struct {
	callbackToken string
	baseURL       string
	environment   string
	client        *http.Client
}

func NewMoWave(creds config.GatewayCredentials, sandbox bool) *MoWave {
	baseURL := creds.BaseURL
	environment := "production"
	if sandbox {
		environment = "sandbox"
	}
	if baseURL == "" {
		baseURL = moWaveLiveURL
		if sandbox {
			baseURL = moWaveSandboxURL
		}
	}
	m := &MoWave{
		callbackToken: creds.Passphrase,
		baseURL:       baseURL,
		environment:   environment,
	}
	if creds.MerchantID != "" && creds.Secret != "" {
		cc := &clientcredentials.Config{
			ClientID:     creds.MerchantID,
			ClientSecret: creds.Secret,
			TokenURL:     baseURL + "/oauth2/token",
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, newHTTPClient())
		m.client = cc.Client(ctx)
		m.client.Timeout = callTimeout
	}
	return m
}

func (m *MoWave) Method() string { return "mowave" }

func (m *MoWave) configured() error {
	if m.client == nil {
		return &GatewayError{Provider: "mowave", Kind: NotConfigured, Err: fmt.Errorf("MOWAVE_MERCHANT_ID and MOWAVE_SECRET must be set")}
	}
	return nil
}

type moWaveCollectReq struct {
	Amount       string      `json:"amount"`
	Currency     string      `json:"currency"`
	ExternalID   string      `json:"externalId"`
	Payer        moWaveParty `json:"payer"`
	PayerMessage string      `json:"payerMessage,omitempty"`
	CallbackURL  string      `json:"callbackUrl,omitempty"`
}

type moWaveParty struct {
	PartyIDType string `json:"partyIdType"`
	PartyID     string `json:"partyId"`
}

func (m *MoWave) Initiate(ctx context.Context, req InitiateRequest) (*InitiationResult, error) {
	if err := m.configured(); err != nil {
		return nil, err
	}

	reference := newReference("mw", req.OrderID)
	referenceID := uuid.New().String()
	payload := moWaveCollectReq{
		Amount:       fmt.Sprintf("%.2f", req.Amount),
		Currency:     req.Currency,
		ExternalID:   reference,
		Payer:        moWaveParty{PartyIDType: "MSISDN", PartyID: req.Phone},
		PayerMessage: req.Description,
		CallbackURL:  req.CallbackURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &GatewayError{Provider: "mowave", Kind: InvalidResponse, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/collection/v1/requesttopay", bytes.NewReader(body))
	if err != nil {
		return nil, &GatewayError{Provider: "mowave", Kind: NetworkFailure, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Reference-Id", referenceID)
	httpReq.Header.Set("X-Target-Environment", m.environment)

	utils.LogDebug("MoWave initiate: externalId=%s referenceId=%s", reference, referenceID)
	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, &GatewayError{Provider: "mowave", Kind: NetworkFailure, Err: err}
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusAccepted {
		return nil, &GatewayError{Provider: "mowave", Kind: ProviderRejected, Err: fmt.Errorf("status %d: %s", resp.StatusCode, truncate(respBody, 512))}
	}

	// A request-to-pay prompt expires on the handset after ~2 minutes;
	// give the customer a little slack beyond that.
	return &InitiationResult{
		PaymentID:    reference,
		GatewayTxnID: referenceID,
		Currency:     req.Currency,
		ExpiresAt:    time.Now().Add(5 * time.Minute),
		RawResponse:  truncate(respBody, 2048),
		Instructions: "Approve the payment prompt on your phone to complete this purchase.",
	}, nil
}

type moWaveWebhook struct {
	ReferenceID            string `json:"referenceId"`
	ExternalID             string `json:"externalId"`
	Status                 string `json:"status"`
	FinancialTransactionID string `json:"financialTransactionId"`
	Reason                 string `json:"reason"`
}

func (m *MoWave) ParseWebhook(body []byte, header http.Header) (*WebhookResult, error) {
	token := header.Get("X-Callback-Token")
	if m.callbackToken == "" || !SecureCompare(token, m.callbackToken) {
		return nil, fmt.Errorf("mowave: %w", ErrSignatureInvalid)
	}

	var payload moWaveWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("mowave: %w", ErrUnparseablePayload)
	}
	status, ok := moWaveStatuses[payload.Status]
	if !ok {
		return nil, fmt.Errorf("mowave: status %q: %w", payload.Status, ErrUnparseablePayload)
	}
	if payload.ExternalID == "" {
		return nil, fmt.Errorf("mowave: missing externalId: %w", ErrUnparseablePayload)
	}

	txnID := payload.FinancialTransactionID
	if txnID == "" {
		txnID = payload.ReferenceID
	}
	return &WebhookResult{
		PaymentID:     payload.ExternalID,
		TransactionID: txnID,
		Status:        status,
		RawPayload:    string(body),
	}, nil
}

type moWaveStatusResp struct {
	Status                 string `json:"status"`
	FinancialTransactionID string `json:"financialTransactionId"`
	Reason                 string `json:"reason"`
}

func (m *MoWave) Verify(ctx context.Context, paymentID, transactionRef string) (*VerificationResult, error) {
	if err := m.configured(); err != nil {
		return nil, err
	}
	if transactionRef == "" {
		return nil, &GatewayError{Provider: "mowave", Kind: InvalidResponse, Err: fmt.Errorf("query requires the reference ID from initiation")}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/collection/v1/requesttopay/"+transactionRef, nil)
	if err != nil {
		return nil, &GatewayError{Provider: "mowave", Kind: NetworkFailure, Err: err}
	}
	httpReq.Header.Set("X-Target-Environment", m.environment)

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, &GatewayError{Provider: "mowave", Kind: NetworkFailure, Err: err}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, &GatewayError{Provider: "mowave", Kind: ProviderRejected, Err: fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 512))}
	}

	var out moWaveStatusResp
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &GatewayError{Provider: "mowave", Kind: InvalidResponse, Err: err}
	}
	status, ok := moWaveStatuses[out.Status]
	if !ok {
		return nil, &GatewayError{Provider: "mowave", Kind: InvalidResponse, Err: fmt.Errorf("unknown status %q", out.Status)}
	}
	return &VerificationResult{
		PaymentID:     paymentID,
		Status:        status,
		GatewayStatus: out.Status,
		RawResponse:   truncate(body, 2048),
	}, nil
}
