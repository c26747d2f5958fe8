package handlers

import (
	stderrors "errors"
	"net/http"

	gferrors "github.com/fulmenhq/gofulmen/errors"

	apperrors "github.com/viralstrategist/viralstrategist/internal/errors"
)

// ErrorResponder writes err as an HTTP error response.
type ErrorResponder func(http.ResponseWriter, *http.Request, error)

var httpErrorResponder ErrorResponder = apperrors.RespondWithError

// SetHTTPErrorResponder routes handler errors through responder and returns a
// func restoring the previous one. A nil responder restores the default.
func SetHTTPErrorResponder(responder ErrorResponder) (restore func()) {
	prev := httpErrorResponder
	if responder == nil {
		responder = apperrors.RespondWithError
	}
	httpErrorResponder = responder
	return func() { httpErrorResponder = prev }
}

// respondWithError envelopes strategist and body-limit errors before
// handing them to the responder.
func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	httpErrorResponder(w, r, toEnvelope(r, err))
}

func toEnvelope(r *http.Request, err error) error {
	if err == nil {
		return nil
	}
	var envelope *gferrors.ErrorEnvelope
	if stderrors.As(err, &envelope) {
		return err
	}
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return apperrors.NewPayloadTooLargeError("request body too large")
	}
	return apperrors.FromStrategist(r.Context(), err)
}
