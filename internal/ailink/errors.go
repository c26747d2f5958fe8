package ailink

import (
	"errors"
	"fmt"
	"strings"

	"github.com/viralstrategist/viralstrategist/internal/ailink/driver"
)

// ErrorKind classifies a dispatch failure.
type ErrorKind string

const (
	// KindRateLimited means the provider refused for quota reasons and
	// retries were exhausted.
	KindRateLimited ErrorKind = "rate_limited"
	// KindProvider covers every other provider or transport failure.
	KindProvider ErrorKind = "provider"
)

// ErrEmptyResponse is returned when a call succeeds but yields blank text.
var ErrEmptyResponse = errors.New("empty response content")

// DispatchError is the failure surfaced by Service.Dispatch.
type DispatchError struct {
	Kind       ErrorKind
	Code       string
	Provider   string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *DispatchError) Error() string {
	if e == nil {
		return "dispatch error"
	}
	if e.Kind == KindRateLimited {
		return fmt.Sprintf("%s rate limited after %d attempts: %v", e.Provider, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *DispatchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

var rateLimitMarkers = []string{"429", "resource_exhausted", "quota"}

// IsRateLimited reports whether err represents a provider quota refusal.
//
// A DispatchError answers by its Kind. Otherwise a rate-limited
// ProviderError qualifies, as does any error whose message carries one of
// the rate-limit markers.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}

	var derr *DispatchError
	if errors.As(err, &derr) && derr != nil {
		return derr.Kind == KindRateLimited
	}

	var perr *driver.ProviderError
	if errors.As(err, &perr) && perr.RateLimited() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func newDispatchError(provider string, attempts int, err error) *DispatchError {
	kind := KindProvider
	if IsRateLimited(err) {
		kind = KindRateLimited
	}
	code, _ := mapProviderError(err)
	if kind == KindRateLimited {
		code = CodeRateLimit
	}

	derr := &DispatchError{Kind: kind, Code: code, Provider: provider, Attempts: attempts, Err: err}
	var perr *driver.ProviderError
	if errors.As(err, &perr) && perr != nil {
		derr.StatusCode = perr.StatusCode
	}
	return derr
}
