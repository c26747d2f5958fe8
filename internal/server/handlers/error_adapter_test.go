package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/viralstrategist/viralstrategist/internal/errors"
	"github.com/viralstrategist/viralstrategist/internal/strategist"
)

func TestRespondWithErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"busy", strategist.ErrBusy, http.StatusConflict, apperrors.CodeConflict},
		{"missing input", fmt.Errorf("%w: topic", strategist.ErrMissingInput), http.StatusBadRequest, apperrors.CodeValidationFailed},
		{"body limit", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, apperrors.CodePayloadTooLarge},
		{"envelope", apperrors.NewNotFoundError("gone"), http.StatusNotFound, apperrors.CodeNotFound},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError, apperrors.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondWithError(rec, httptest.NewRequest(http.MethodGet, "/v1/result", nil), tc.err)
			require.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decodeError(t, rec).Error.Code)
		})
	}
}

func TestSetHTTPErrorResponderRestores(t *testing.T) {
	var seen error
	restore := SetHTTPErrorResponder(func(w http.ResponseWriter, r *http.Request, err error) {
		seen = err
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	respondWithError(rec, httptest.NewRequest(http.MethodGet, "/", nil), strategist.ErrBusy)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	require.Error(t, seen)

	restore()
	rec = httptest.NewRecorder()
	respondWithError(rec, httptest.NewRequest(http.MethodGet, "/", nil), strategist.ErrBusy)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
