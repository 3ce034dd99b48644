package gateway

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"zuricart/config"
)

var (
	ErrUnsupportedMethod    = errors.New("payment method not available")
	ErrUnknownWebhookSource = errors.New("webhook source not recognized")
)

// MethodDescriptor is the client-facing summary of one payment method.
type MethodDescriptor struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	FeeDescription string `json:"fee_description"`
}

type entry struct {
	desc      MethodDescriptor
	countries map[string]bool
	adapter   Adapter
}

// Registry maps payment-method identifiers to adapter instances and
// enforces per-provider country availability. The table is fixed at
// construction; every lookup is pure.
type Registry struct {
	entries []entry
}

// NewRegistry constructs all five adapters from configuration. Adapters
// with missing credentials are still registered; their calls fail fast
// with a configuration error.
func NewRegistry(cfg *config.Config) *Registry {
	sandbox := cfg.Sandbox()
	return &Registry{entries: []entry{
		{
			desc:      MethodDescriptor{ID: "payhaven", Name: "PayHaven", Type: TypeCard, FeeDescription: "2.9% per transaction"},
			countries: countrySet("ZA"),
			adapter:   NewPayHaven(cfg.PayHaven, sandbox),
		},
		{
			desc:      MethodDescriptor{ID: "mintgate", Name: "MintGate", Type: TypeCard, FeeDescription: "2.5% + R1.50 per transaction"},
			countries: countrySet("ZA"),
			adapter:   NewMintGate(cfg.MintGate, sandbox),
		},
		{
			desc:      MethodDescriptor{ID: "flexcore", Name: "Flexcore", Type: TypeCard, FeeDescription: "3.2% per transaction"},
			countries: countrySet("ZA", "NG", "GH", "KE"),
			adapter:   NewFlexcore(cfg.Flexcore, sandbox),
		},
		{
			desc:      MethodDescriptor{ID: "mowave", Name: "MoWave Mobile Money", Type: TypeMobileMoney, FeeDescription: "1.5% per transaction"},
			countries: countrySet("GH", "UG", "RW", "ZM"),
			adapter:   NewMoWave(cfg.MoWave, sandbox),
		},
		{
			desc:      MethodDescriptor{ID: "cellocash", Name: "CelloCash", Type: TypeMobileMoney, FeeDescription: "1.8% per transaction"},
			countries: countrySet("KE", "TZ", "UG"),
			adapter:   NewCelloCash(cfg.CelloCash, sandbox),
		},
	}}
}

func countrySet(codes ...string) map[string]bool {
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set
}

// Resolve returns the adapter for methodID if it is available in the
// given country. A method that exists globally but not for this country
// still fails with ErrUnsupportedMethod.
func (r *Registry) Resolve(methodID, country string) (Adapter, error) {
	for _, e := range r.entries {
		if e.desc.ID == methodID {
			if !e.countries[strings.ToUpper(country)] {
				return nil, ErrUnsupportedMethod
			}
			return e.adapter, nil
		}
	}
	return nil, ErrUnsupportedMethod
}

// ListAvailableMethods returns the methods available for a country, in
// registration order. Pure function of the static table.
func (r *Registry) ListAvailableMethods(country string) []MethodDescriptor {
	country = strings.ToUpper(country)
	var methods []MethodDescriptor
	for _, e := range r.entries {
		if e.countries[country] {
			methods = append(methods, e.desc)
		}
	}
	return methods
}

// DetectSource identifies which adapter produced an inbound webhook from
// provider-specific markers: a distinct signature/token header for the
// JSON providers, a distinct form field for the form-POST providers.
func (r *Registry) DetectSource(header http.Header, contentType string, body []byte) (Adapter, error) {
	var methodID string
	switch {
	case header.Get("X-CelloCash-Signature") != "":
		methodID = "cellocash"
	case header.Get("X-Callback-Token") != "":
		methodID = "mowave"
	case header.Get("X-Flexcore-Hash") != "":
		methodID = "flexcore"
	case strings.Contains(contentType, "application/x-www-form-urlencoded"):
		form, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, ErrUnknownWebhookSource
		}
		switch {
		case form.Get("PAY_REQUEST_ID") != "":
			methodID = "mintgate"
		case form.Get("ph_payment_id") != "":
			methodID = "payhaven"
		}
	}
	if methodID == "" {
		return nil, ErrUnknownWebhookSource
	}
	for _, e := range r.entries {
		if e.desc.ID == methodID {
			return e.adapter, nil
		}
	}
	return nil, ErrUnknownWebhookSource
}

// countryCurrencies is the fixed country -> settlement currency table.
var countryCurrencies = map[string]string{
	"ZA": "ZAR",
	"NG": "NGN",
	"GH": "GHS",
	"KE": "KES",
	"UG": "UGX",
	"TZ": "TZS",
	"RW": "RWF",
	"ZM": "ZMW",
}

// CurrencyForCountry returns the settlement currency for a country code.
func CurrencyForCountry(country string) (string, bool) {
	cur, ok := countryCurrencies[strings.ToUpper(country)]
	return cur, ok
}

// Describe returns the descriptor for a method id regardless of country.
func (r *Registry) Describe(methodID string) (MethodDescriptor, bool) {
	for _, e := range r.entries {
		if e.desc.ID == methodID {
			return e.desc, true
		}
	}
	return MethodDescriptor{}, false
}

// Adapter returns the adapter for a method id without the country check.
// Used when operating on an already-initiated payment, whose method was
// validated at initiation time.
func (r *Registry) Adapter(methodID string) (Adapter, error) {
	for _, e := range r.entries {
		if e.desc.ID == methodID {
			return e.adapter, nil
		}
	}
	return nil, ErrUnsupportedMethod
}
