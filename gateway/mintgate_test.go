package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"zuricart/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintGateCreds(baseURL string) config.GatewayCredentials {
	return config.GatewayCredentials{
		BaseURL:    baseURL,
		MerchantID: "10011072130",
		Secret:     "secret",
	}
}

func mintGateResponse(secret string, fields map[string]string) string {
	fields["CHECKSUM"] = SignMD5(withoutKey(fields, "CHECKSUM"), secret)
	v := url.Values{}
	for k, val := range fields {
		v.Set(k, val)
	}
	return v.Encode()
}

func TestMintGateInitiate(t *testing.T) {
	var received url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payweb/initiate", r.URL.Path)
		require.NoError(t, r.ParseForm())
		received = r.PostForm
		w.Write([]byte(mintGateResponse("secret", map[string]string{
			"PAY_REQUEST_ID": "23B785AE-C96C-32AF-4879-D2C9363DB6E8",
			"REFERENCE":      r.PostForm.Get("REFERENCE"),
		})))
	}))
	defer srv.Close()

	m := NewMintGate(mintGateCreds(srv.URL), true)
	result, err := m.Initiate(context.Background(), InitiateRequest{
		OrderID:     "ord-9",
		Amount:      250.50,
		Currency:    "ZAR",
		Email:       "lerato@example.com",
		CallbackURL: "https://shop.example.com/v1/payments/webhook",
	})
	require.NoError(t, err)

	assert.Regexp(t, `^mg_ord-9_\d+$`, result.PaymentID)
	assert.Equal(t, "23B785AE-C96C-32AF-4879-D2C9363DB6E8", result.GatewayTxnID)
	assert.True(t, strings.HasPrefix(result.RedirectURL, srv.URL+"/payweb/redirect?PAY_REQUEST_ID="))

	// amounts travel in integer cents
	assert.Equal(t, "25050", received.Get("AMOUNT"))

	fields := map[string]string{}
	for k := range received {
		fields[k] = received.Get(k)
	}
	assert.True(t, VerifyMD5(withoutKey(fields, "CHECKSUM"), "secret", fields["CHECKSUM"]))
}

func TestMintGateInitiateProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ERROR=DATA_AMT"))
	}))
	defer srv.Close()

	m := NewMintGate(mintGateCreds(srv.URL), true)
	_, err := m.Initiate(context.Background(), InitiateRequest{OrderID: "ord-9", Amount: 10, Currency: "ZAR"})

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, ProviderRejected, gwErr.Kind)
}

func TestMintGateInitiateBadResponseChecksum(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mintGateResponse("not-the-secret", map[string]string{
			"PAY_REQUEST_ID": "ABC",
		})))
	}))
	defer srv.Close()

	m := NewMintGate(mintGateCreds(srv.URL), true)
	_, err := m.Initiate(context.Background(), InitiateRequest{OrderID: "ord-9", Amount: 10, Currency: "ZAR"})

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, InvalidResponse, gwErr.Kind)
}

func mintGateWebhookBody(secret string, overrides map[string]string) []byte {
	fields := map[string]string{
		"REFERENCE":          "mg_ord-9_1700000000000",
		"PAY_REQUEST_ID":     "23B785AE-C96C-32AF-4879-D2C9363DB6E8",
		"TRANSACTION_STATUS": "1",
		"AMOUNT":             "25050",
	}
	for k, v := range overrides {
		fields[k] = v
	}
	return []byte(mintGateResponse(secret, fields))
}

func TestMintGateParseWebhookStatuses(t *testing.T) {
	m := NewMintGate(mintGateCreds(""), true)
	tests := []struct {
		code string
		want Status
	}{
		{"0", StatusPending},
		{"1", StatusSuccess},
		{"2", StatusFailed},
		{"3", StatusFailed},
		{"4", StatusFailed},
		{"5", StatusPending},
	}
	for _, tt := range tests {
		result, err := m.ParseWebhook(mintGateWebhookBody("secret", map[string]string{"TRANSACTION_STATUS": tt.code}), http.Header{})
		require.NoError(t, err, "status code %s", tt.code)
		assert.Equal(t, tt.want, result.Status)
		assert.Equal(t, "mg_ord-9_1700000000000", result.PaymentID)
	}
}

func TestMintGateParseWebhookBadChecksum(t *testing.T) {
	m := NewMintGate(mintGateCreds(""), true)

	_, err := m.ParseWebhook(mintGateWebhookBody("wrong", nil), http.Header{})
	assert.ErrorIs(t, err, ErrSignatureInvalid)

	tampered := strings.Replace(string(mintGateWebhookBody("secret", nil)), "25050", "1", 1)
	_, err = m.ParseWebhook([]byte(tampered), http.Header{})
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestMintGateVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payweb/query", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "23B785AE", r.PostForm.Get("PAY_REQUEST_ID"))
		w.Write([]byte("TRANSACTION_STATUS=1&REFERENCE=mg_ord-9_1700000000000"))
	}))
	defer srv.Close()

	m := NewMintGate(mintGateCreds(srv.URL), true)
	result, err := m.Verify(context.Background(), "mg_ord-9_1700000000000", "23B785AE")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "1", result.GatewayStatus)
}

func TestMintGateVerifyRequiresTransactionRef(t *testing.T) {
	m := NewMintGate(mintGateCreds(""), true)
	_, err := m.Verify(context.Background(), "mg_ord-9_1700000000000", "")

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, InvalidResponse, gwErr.Kind)
}
