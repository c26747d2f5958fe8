package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderErrorMessage(t *testing.T) {
	cases := []struct {
		name string
		err  *ProviderError
		want string
	}{
		{"status and name", &ProviderError{Provider: "gemini", StatusCode: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota"}, "gemini request failed: status 429 (RESOURCE_EXHAUSTED): quota"},
		{"status only", &ProviderError{Provider: "openai", StatusCode: 500, Message: "boom"}, "openai request failed: status 500: boom"},
		{"no status", &ProviderError{Provider: "gemini", Status: "blocked", Message: "safety"}, "gemini request failed: safety"},
		{"nil", nil, "provider error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestProviderErrorRateLimited(t *testing.T) {
	assert.True(t, (&ProviderError{StatusCode: 429}).RateLimited())
	assert.True(t, (&ProviderError{Status: "resource_exhausted"}).RateLimited())
	assert.False(t, (&ProviderError{StatusCode: 503}).RateLimited())

	var nilErr *ProviderError
	assert.False(t, nilErr.RateLimited())
}
