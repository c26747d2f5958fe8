package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viralstrategist/viralstrategist/internal/server/middleware"
	"github.com/viralstrategist/viralstrategist/internal/strategist"
)

func TestHTTPStatusFromCode(t *testing.T) {
	cases := map[string]int{
		CodeInvalidInput:       http.StatusBadRequest,
		CodeValidationFailed:   http.StatusBadRequest,
		CodeNotFound:           http.StatusNotFound,
		CodeConflict:           http.StatusConflict,
		CodePayloadTooLarge:    http.StatusRequestEntityTooLarge,
		CodeRateLimited:        http.StatusTooManyRequests,
		CodeServiceUnavailable: http.StatusServiceUnavailable,
		"SOMETHING_ELSE":       http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, HTTPStatusFromCode(code), code)
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromEnvelope(nil))
}

func TestFromStrategist(t *testing.T) {
	ctx := context.Background()

	missing := fmt.Errorf("%w: topic", strategist.ErrMissingInput)
	env := FromStrategist(ctx, missing)
	assert.Equal(t, CodeValidationFailed, env.Code)
	assert.Contains(t, env.Message, "topic")

	assert.Equal(t, CodeConflict, FromStrategist(ctx, strategist.ErrBusy).Code)
	assert.Equal(t, CodeTimeout, FromStrategist(ctx, context.DeadlineExceeded).Code)
	assert.Equal(t, CodeInternal, FromStrategist(ctx, fmt.Errorf("boom")).Code)
}

func TestEnsureEnvelope(t *testing.T) {
	env := EnsureEnvelope(NewConflictError("busy"))
	assert.Equal(t, CodeConflict, env.Code)

	env = EnsureEnvelope(fmt.Errorf("plain"))
	assert.Equal(t, CodeInternal, env.Code)
	assert.Equal(t, "plain", env.Context["wrapped_error"])

	env = EnsureEnvelope(nil)
	assert.Equal(t, CodeInternal, env.Code)
}

func TestRespondWithErrorUsesRequestID(t *testing.T) {
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondWithError(w, r, FromStrategist(r.Context(), strategist.ErrBusy))
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/ideas", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, CodeConflict, body.Error.Code)
	assert.Equal(t, "req-123", body.Error.RequestID)
	assert.NotEmpty(t, body.Error.Details["wrapped_error"])
}
