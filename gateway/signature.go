package gateway

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha512"
	"encoding/hex"
	"sort"
	"strings"
)

// CanonicalString flattens fields into an alphabetically key-sorted
// "k=v&k=v" string. Empty-valued fields are excluded so that optional
// parameters do not shift the signature.
func CanonicalString(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}
	return strings.Join(pairs, "&")
}

// SignMD5 computes the MD5 checksum over the canonical field string
// concatenated with the shared secret. MD5 is mandated by the providers
// that use it and is not swappable.
func SignMD5(fields map[string]string, secret string) string {
	sum := md5.Sum([]byte(CanonicalString(fields) + secret))
	return hex.EncodeToString(sum[:])
}

// VerifyMD5 recomputes the MD5 checksum over fields (the caller must
// have removed the signature field) and compares in constant time.
func VerifyMD5(fields map[string]string, secret, signature string) bool {
	return SecureCompare(SignMD5(fields, secret), signature)
}

// SignHMACSHA512 computes a hex HMAC-SHA512 over data.
func SignHMACSHA512(data []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMACSHA512 checks a hex HMAC-SHA512 signature over data.
func VerifyHMACSHA512(data []byte, secret, signature string) bool {
	return SecureCompare(SignHMACSHA512(data, secret), signature)
}

// SecureCompare compares two strings in constant time.
func SecureCompare(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
