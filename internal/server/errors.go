package server

import (
	"net/http"

	apperrors "github.com/viralstrategist/viralstrategist/internal/errors"
)

// HandleError writes err as a JSON error envelope. Errors that are not
// envelopes become INTERNAL_ERROR with the original text kept in context.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	envelope := apperrors.EnsureEnvelope(err)
	if r != nil && r.Method == http.MethodHead {
		w.WriteHeader(apperrors.HTTPStatusFromEnvelope(envelope))
		return
	}
	apperrors.RespondWithEnvelope(w, r, envelope)
}
