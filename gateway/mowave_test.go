package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"zuricart/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moWaveServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/", handler)
	return httptest.NewServer(mux)
}

func moWaveCreds(baseURL string) config.GatewayCredentials {
	return config.GatewayCredentials{
		BaseURL:    baseURL,
		MerchantID: "api-user",
		Secret:     "api-key",
		Passphrase: "callback-token-value",
	}
}

func TestMoWaveInitiate(t *testing.T) {
	var referenceID string
	srv := moWaveServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collection/v1/requesttopay", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "sandbox", r.Header.Get("X-Target-Environment"))

		referenceID = r.Header.Get("X-Reference-Id")
		_, err := uuid.Parse(referenceID)
		assert.NoError(t, err, "X-Reference-Id must be a UUID")

		var req moWaveCollectReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "75.00", req.Amount)
		assert.Equal(t, "GHS", req.Currency)
		assert.Equal(t, "MSISDN", req.Payer.PartyIDType)
		assert.Equal(t, "+233201234567", req.Payer.PartyID)

		w.WriteHeader(http.StatusAccepted)
	})
	defer srv.Close()

	m := NewMoWave(moWaveCreds(srv.URL), true)
	result, err := m.Initiate(context.Background(), InitiateRequest{
		OrderID:     "ord-13",
		Amount:      75,
		Currency:    "GHS",
		Phone:       "+233201234567",
		Description: "ZuriCart order ord-13",
	})
	require.NoError(t, err)

	assert.Regexp(t, `^mw_ord-13_\d+$`, result.PaymentID)
	assert.Equal(t, referenceID, result.GatewayTxnID)
	assert.Empty(t, result.RedirectURL, "on-device flow has no redirect")
	assert.NotEmpty(t, result.Instructions)
}

func TestMoWaveInitiateRejected(t *testing.T) {
	srv := moWaveServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"Duplicated reference id"}`))
	})
	defer srv.Close()

	m := NewMoWave(moWaveCreds(srv.URL), true)
	_, err := m.Initiate(context.Background(), InitiateRequest{OrderID: "ord-13", Amount: 75, Currency: "GHS", Phone: "+233201234567"})

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, ProviderRejected, gwErr.Kind)
}

func TestMoWaveInitiateNotConfigured(t *testing.T) {
	m := NewMoWave(config.GatewayCredentials{Passphrase: "tok"}, true)
	_, err := m.Initiate(context.Background(), InitiateRequest{OrderID: "ord-13", Amount: 75, Currency: "GHS"})

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, NotConfigured, gwErr.Kind)
}

func TestMoWaveParseWebhookStatuses(t *testing.T) {
	m := NewMoWave(moWaveCreds(""), true)
	tests := []struct {
		provider string
		want     Status
	}{
		{"PENDING", StatusPending},
		{"ONGOING", StatusPending},
		{"SUCCESSFUL", StatusSuccess},
		{"FAILED", StatusFailed},
		{"TIMEOUT", StatusFailed},
		{"REJECTED", StatusFailed},
	}
	header := http.Header{}
	header.Set("X-Callback-Token", "callback-token-value")
	for _, tt := range tests {
		body := []byte(`{"referenceId":"ref-uuid","externalId":"mw_ord-13_1700000000000","status":"` + tt.provider + `","financialTransactionId":"363440463"}`)
		result, err := m.ParseWebhook(body, header)
		require.NoError(t, err, tt.provider)
		assert.Equal(t, tt.want, result.Status)
		assert.Equal(t, "mw_ord-13_1700000000000", result.PaymentID)
		assert.Equal(t, "363440463", result.TransactionID)
	}
}

func TestMoWaveParseWebhookFallsBackToReferenceID(t *testing.T) {
	m := NewMoWave(moWaveCreds(""), true)
	header := http.Header{}
	header.Set("X-Callback-Token", "callback-token-value")

	body := []byte(`{"referenceId":"ref-uuid","externalId":"mw_ord-13_1700000000000","status":"FAILED"}`)
	result, err := m.ParseWebhook(body, header)
	require.NoError(t, err)
	assert.Equal(t, "ref-uuid", result.TransactionID)
}

func TestMoWaveParseWebhookBadToken(t *testing.T) {
	m := NewMoWave(moWaveCreds(""), true)
	body := []byte(`{"referenceId":"r","externalId":"mw_x_1","status":"SUCCESSFUL"}`)

	header := http.Header{}
	header.Set("X-Callback-Token", "forged")
	_, err := m.ParseWebhook(body, header)
	assert.ErrorIs(t, err, ErrSignatureInvalid)

	_, err = m.ParseWebhook(body, http.Header{})
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestMoWaveVerify(t *testing.T) {
	srv := moWaveServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collection/v1/requesttopay/ref-uuid", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"SUCCESSFUL","financialTransactionId":"363440463"}`))
	})
	defer srv.Close()

	m := NewMoWave(moWaveCreds(srv.URL), true)
	result, err := m.Verify(context.Background(), "mw_ord-13_1700000000000", "ref-uuid")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "SUCCESSFUL", result.GatewayStatus)
}

func TestMoWaveVerifyRequiresReference(t *testing.T) {
	m := NewMoWave(moWaveCreds(""), true)
	_, err := m.Verify(context.Background(), "mw_ord-13_1700000000000", "")

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, InvalidResponse, gwErr.Kind)
}
