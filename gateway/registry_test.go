package gateway

import (
	"net/http"
	"testing"

	"zuricart/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *Registry {
	cfg := &config.Config{
		Env:       "development",
		PayHaven:  config.GatewayCredentials{MerchantID: "m", Secret: "k", Passphrase: "p"},
		MintGate:  config.GatewayCredentials{MerchantID: "m", Secret: "k"},
		Flexcore:  config.GatewayCredentials{MerchantID: "id", Secret: "sec", Passphrase: "hash"},
		MoWave:    config.GatewayCredentials{MerchantID: "id", Secret: "sec", Passphrase: "token"},
		CelloCash: config.GatewayCredentials{MerchantID: "key", Secret: "sign", Passphrase: "wh"},
	}
	return NewRegistry(cfg)
}

func TestResolveCountryAvailability(t *testing.T) {
	r := testRegistry()
	tests := []struct {
		method  string
		country string
		ok      bool
	}{
		{"payhaven", "ZA", true},
		{"payhaven", "KE", false},
		{"mintgate", "ZA", true},
		{"mintgate", "NG", false},
		{"flexcore", "NG", true},
		{"flexcore", "UG", false},
		{"mowave", "GH", true},
		{"mowave", "ZA", false},
		{"cellocash", "KE", true},
		{"cellocash", "ZA", false},
		{"nonexistent", "ZA", false},
	}
	for _, tt := range tests {
		t.Run(tt.method+"/"+tt.country, func(t *testing.T) {
			adapter, err := r.Resolve(tt.method, tt.country)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.method, adapter.Method())
			} else {
				assert.ErrorIs(t, err, ErrUnsupportedMethod)
			}
		})
	}
}

func TestResolveCaseInsensitiveCountry(t *testing.T) {
	r := testRegistry()
	adapter, err := r.Resolve("payhaven", "za")
	require.NoError(t, err)
	assert.Equal(t, "payhaven", adapter.Method())
}

func TestListAvailableMethods(t *testing.T) {
	r := testRegistry()

	za := r.ListAvailableMethods("ZA")
	var ids []string
	for _, m := range za {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"payhaven", "mintgate", "flexcore"}, ids)

	ug := r.ListAvailableMethods("UG")
	ids = nil
	for _, m := range ug {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"mowave", "cellocash"}, ids)

	assert.Empty(t, r.ListAvailableMethods("US"))
}

func TestListAvailableMethodsIsPure(t *testing.T) {
	r := testRegistry()
	first := r.ListAvailableMethods("KE")
	second := r.ListAvailableMethods("KE")
	assert.Equal(t, first, second)
}

func TestDetectSource(t *testing.T) {
	r := testRegistry()

	tests := []struct {
		name        string
		header      http.Header
		contentType string
		body        string
		want        string
	}{
		{
			name:   "cellocash signature header",
			header: http.Header{"X-Cellocash-Signature": {"abc"}},
			want:   "cellocash",
		},
		{
			name:   "mowave callback token",
			header: http.Header{"X-Callback-Token": {"tok"}},
			want:   "mowave",
		},
		{
			name:   "flexcore hash header",
			header: http.Header{"X-Flexcore-Hash": {"hash"}},
			want:   "flexcore",
		},
		{
			name:        "mintgate form field",
			header:      http.Header{},
			contentType: "application/x-www-form-urlencoded",
			body:        "PAY_REQUEST_ID=abc&REFERENCE=mg_x_1",
			want:        "mintgate",
		},
		{
			name:        "payhaven form field",
			header:      http.Header{},
			contentType: "application/x-www-form-urlencoded",
			body:        "ph_payment_id=123&m_payment_id=ph_x_1",
			want:        "payhaven",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, err := r.DetectSource(tt.header, tt.contentType, []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, adapter.Method())
		})
	}
}

func TestDetectSourceUnknown(t *testing.T) {
	r := testRegistry()

	_, err := r.DetectSource(http.Header{}, "application/json", []byte(`{"status":"success"}`))
	assert.ErrorIs(t, err, ErrUnknownWebhookSource)

	_, err = r.DetectSource(http.Header{}, "application/x-www-form-urlencoded", []byte("foo=bar"))
	assert.ErrorIs(t, err, ErrUnknownWebhookSource)
}

func TestCurrencyForCountry(t *testing.T) {
	tests := []struct {
		country string
		want    string
	}{
		{"ZA", "ZAR"}, {"NG", "NGN"}, {"GH", "GHS"}, {"KE", "KES"},
		{"UG", "UGX"}, {"TZ", "TZS"}, {"RW", "RWF"}, {"ZM", "ZMW"},
	}
	for _, tt := range tests {
		cur, ok := CurrencyForCountry(tt.country)
		assert.True(t, ok, tt.country)
		assert.Equal(t, tt.want, cur)
	}

	_, ok := CurrencyForCountry("US")
	assert.False(t, ok)
}

func TestDescribeAndAdapter(t *testing.T) {
	r := testRegistry()

	desc, ok := r.Describe("mowave")
	require.True(t, ok)
	assert.Equal(t, TypeMobileMoney, desc.Type)

	_, ok = r.Describe("nope")
	assert.False(t, ok)

	adapter, err := r.Adapter("cellocash")
	require.NoError(t, err)
	assert.Equal(t, "cellocash", adapter.Method())

	_, err = r.Adapter("nope")
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}
