package driver

import (
	"net/http"
	"strconv"
	"strings"
)

// ProviderError is a failure reported by the provider itself, as opposed to
// a transport or encoding error.
//
// RawResponse holds the provider's response body for tracing. It must never
// contain API keys.
type ProviderError struct {
	Provider    string
	StatusCode  int
	Status      string // provider status name, e.g. RESOURCE_EXHAUSTED
	Message     string
	RawResponse []byte
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}
	var b strings.Builder
	b.WriteString(e.Provider)
	b.WriteString(" request failed")
	if e.StatusCode > 0 {
		b.WriteString(": status ")
		b.WriteString(strconv.Itoa(e.StatusCode))
		if e.Status != "" {
			b.WriteString(" (" + e.Status + ")")
		}
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// RateLimited reports a quota refusal: HTTP 429 or a RESOURCE_EXHAUSTED
// status name.
func (e *ProviderError) RateLimited() bool {
	if e == nil {
		return false
	}
	return e.StatusCode == http.StatusTooManyRequests || strings.EqualFold(e.Status, "RESOURCE_EXHAUSTED")
}
