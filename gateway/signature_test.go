package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalString(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		want   string
	}{
		{
			name:   "keys sorted alphabetically",
			fields: map[string]string{"b": "2", "a": "1", "c": "3"},
			want:   "a=1&b=2&c=3",
		},
		{
			name:   "empty values excluded",
			fields: map[string]string{"amount": "10.00", "return_url": "", "currency": "ZAR"},
			want:   "amount=10.00&currency=ZAR",
		},
		{
			name:   "empty map",
			fields: map[string]string{},
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalString(tt.fields))
		})
	}
}

func TestSignMD5Deterministic(t *testing.T) {
	fields := map[string]string{"merchant_id": "m1", "amount": "99.90"}
	sig := SignMD5(fields, "secret")
	assert.Len(t, sig, 32)
	assert.Equal(t, sig, SignMD5(fields, "secret"))
	assert.NotEqual(t, sig, SignMD5(fields, "other-secret"))
}

func TestVerifyMD5(t *testing.T) {
	fields := map[string]string{"REFERENCE": "mg_ord-1_1700000000000", "AMOUNT": "1000"}
	sig := SignMD5(fields, "s3cret")

	assert.True(t, VerifyMD5(fields, "s3cret", sig))
	assert.False(t, VerifyMD5(fields, "wrong", sig))

	tampered := map[string]string{"REFERENCE": "mg_ord-1_1700000000000", "AMOUNT": "1"}
	assert.False(t, VerifyMD5(tampered, "s3cret", sig))
}

func TestVerifyHMACSHA512(t *testing.T) {
	body := []byte(`{"reference":"cc_ord-1_1700000000000","status":"success"}`)
	sig := SignHMACSHA512(body, "whsec")
	assert.Len(t, sig, 128)

	assert.True(t, VerifyHMACSHA512(body, "whsec", sig))
	assert.False(t, VerifyHMACSHA512(body, "other", sig))
	assert.False(t, VerifyHMACSHA512([]byte(`{"status":"success"}`), "whsec", sig))
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, SecureCompare("abc", "abc"))
	assert.False(t, SecureCompare("abc", "abd"))
	assert.False(t, SecureCompare("abc", "abcd"))
}

func TestNewReference(t *testing.T) {
	ref := newReference("mg", "ord-42")
	assert.Regexp(t, `^mg_ord-42_\d+$`, ref)
}
