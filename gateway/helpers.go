package gateway

import "time"

// withoutKey copies fields minus one key, for signature recomputation.
func withoutKey(fields map[string]string, key string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if k == key {
			continue
		}
		out[k] = v
	}
	return out
}

// truncate bounds raw provider payloads before they hit logs or audit
// columns.
func truncate(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max])
}

// initiationExpiry is how long a hosted checkout or on-device prompt
// stays valid before the client should re-initialize.
func initiationExpiry() time.Time {
	return time.Now().Add(30 * time.Minute)
}
