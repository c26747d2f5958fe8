package ailink

import (
	"context"
	"errors"
	"strings"

	"github.com/viralstrategist/viralstrategist/internal/ailink/driver"
)

// Codes attached to DispatchError for logs and HTTP error details.
const (
	CodeTimeout     = "AILINK_PROVIDER_TIMEOUT"
	CodeAuth        = "AILINK_PROVIDER_AUTH"
	CodeRateLimit   = "AILINK_PROVIDER_RATE_LIMIT"
	CodeUnavailable = "AILINK_PROVIDER_UNAVAILABLE"
	CodeBadRequest  = "AILINK_PROVIDER_BAD_REQUEST"
	CodeCredential  = "AILINK_CREDENTIAL_MISSING"
	CodeError       = "AILINK_PROVIDER_ERROR"
)

// mapProviderError returns an ailink code and a short human message for err.
func mapProviderError(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout, "provider request timed out"
	}
	if errors.Is(err, ErrMissingCredential) {
		return CodeCredential, "provider credential missing"
	}

	var perr *driver.ProviderError
	if errors.As(err, &perr) && perr != nil {
		status := perr.StatusCode
		switch {
		case status == 401 || status == 403:
			return CodeAuth, "provider authentication failed"
		case status == 429:
			return CodeRateLimit, "provider rate limited"
		case status >= 500 && status <= 599:
			return CodeUnavailable, "provider unavailable"
		case status >= 400 && status <= 499:
			return CodeBadRequest, "provider rejected request"
		}
	}

	if strings.Contains(strings.ToLower(err.Error()), "unsupported content type") {
		return CodeBadRequest, "provider cannot accept attachment"
	}
	return CodeError, "provider request failed"
}
