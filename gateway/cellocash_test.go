package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"zuricart/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func celloCashCreds(baseURL string) config.GatewayCredentials {
	return config.GatewayCredentials{
		BaseURL:    baseURL,
		MerchantID: "api-key",
		Secret:     "signing-secret",
		Passphrase: "webhook-secret",
	}
}

func TestCelloCashInitiate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/charges", r.URL.Path)
		assert.Equal(t, "api-key", r.Header.Get("X-CelloCash-Key"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		// request signature covers the raw body
		assert.True(t, VerifyHMACSHA512(body, "signing-secret", r.Header.Get("X-CelloCash-Signature")))

		var req celloCashChargeReq
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, int64(12050), req.AmountCents)
		assert.Equal(t, "KES", req.Currency)
		assert.Equal(t, "+254712345678", req.MSISDN)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"processing","transaction_id":"txn-889"}`))
	}))
	defer srv.Close()

	c := NewCelloCash(celloCashCreds(srv.URL), true)
	result, err := c.Initiate(context.Background(), InitiateRequest{
		OrderID:  "ord-17",
		Amount:   120.50,
		Currency: "KES",
		Phone:    "+254712345678",
	})
	require.NoError(t, err)

	assert.Regexp(t, `^cc_ord-17_\d+$`, result.PaymentID)
	assert.Equal(t, "txn-889", result.GatewayTxnID)
	assert.Empty(t, result.RedirectURL)
}

func TestCelloCashInitiateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"error","message":"Unsupported MSISDN"}`))
	}))
	defer srv.Close()

	c := NewCelloCash(celloCashCreds(srv.URL), true)
	_, err := c.Initiate(context.Background(), InitiateRequest{OrderID: "ord-17", Amount: 10, Currency: "KES", Phone: "+111"})

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, ProviderRejected, gwErr.Kind)
}

func TestCelloCashInitiateNotConfigured(t *testing.T) {
	c := NewCelloCash(config.GatewayCredentials{Passphrase: "wh"}, true)
	_, err := c.Initiate(context.Background(), InitiateRequest{OrderID: "ord-17", Amount: 10, Currency: "KES"})

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, NotConfigured, gwErr.Kind)
}

func celloCashWebhookBody(t *testing.T, secret, status string) ([]byte, http.Header) {
	t.Helper()
	body := []byte(`{"reference":"cc_ord-17_1700000000000","transaction_id":"txn-889","status":"` + status + `","amount_cents":12050,"currency":"KES"}`)
	header := http.Header{}
	header.Set("X-CelloCash-Signature", SignHMACSHA512(body, secret))
	return body, header
}

func TestCelloCashParseWebhookStatuses(t *testing.T) {
	c := NewCelloCash(celloCashCreds(""), true)
	tests := []struct {
		provider string
		want     Status
	}{
		{"success", StatusSuccess},
		{"error", StatusFailed},
		{"processing", StatusPending},
	}
	for _, tt := range tests {
		body, header := celloCashWebhookBody(t, "webhook-secret", tt.provider)
		result, err := c.ParseWebhook(body, header)
		require.NoError(t, err, tt.provider)
		assert.Equal(t, tt.want, result.Status)
		assert.Equal(t, "cc_ord-17_1700000000000", result.PaymentID)
		assert.Equal(t, "txn-889", result.TransactionID)
	}
}

func TestCelloCashParseWebhookBadSignature(t *testing.T) {
	c := NewCelloCash(celloCashCreds(""), true)

	body, header := celloCashWebhookBody(t, "wrong-secret", "success")
	_, err := c.ParseWebhook(body, header)
	assert.ErrorIs(t, err, ErrSignatureInvalid)

	// body tampered after signing
	body, header = celloCashWebhookBody(t, "webhook-secret", "success")
	tampered := append([]byte{}, body...)
	tampered[len(tampered)-2] = 'X'
	_, err = c.ParseWebhook(tampered, header)
	assert.ErrorIs(t, err, ErrSignatureInvalid)

	// missing header
	_, err = c.ParseWebhook(body, http.Header{})
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestCelloCashParseWebhookUnknownStatus(t *testing.T) {
	c := NewCelloCash(celloCashCreds(""), true)
	body, header := celloCashWebhookBody(t, "webhook-secret", "limbo")
	_, err := c.ParseWebhook(body, header)
	assert.ErrorIs(t, err, ErrUnparseablePayload)
}

func TestCelloCashVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/charges/cc_ord-17_1700000000000", r.URL.Path)
		// bodiless GETs sign the request path
		assert.True(t, VerifyHMACSHA512([]byte(r.URL.Path), "signing-secret", r.Header.Get("X-CelloCash-Signature")))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","transaction_id":"txn-889"}`))
	}))
	defer srv.Close()

	c := NewCelloCash(celloCashCreds(srv.URL), true)
	result, err := c.Verify(context.Background(), "cc_ord-17_1700000000000", "")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "success", result.GatewayStatus)
}
