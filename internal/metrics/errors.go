package metrics

import (
	"strconv"

	"github.com/viralstrategist/viralstrategist/internal/observability"
)

// Error metric names
const (
	APIErrorsTotal       = "viral_api_errors_total"
	APIErrorsByRoute     = "viral_api_errors_by_route_total"
	PanicsTotalName      = "viral_server_panics_total"
	ActionRejectionsName = "viral_action_rejections_total"
)

// Rejection reasons for ActionRejectionsName.
const (
	RejectRateLimited = "rate_limited"
	RejectBusy        = "busy"
)

// RecordError counts an error envelope written by the HTTP surface.
func RecordError(errorCode string, httpStatus int) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(APIErrorsTotal, 1, map[string]string{
		"error_code":  errorCode,
		"http_status": strconv.Itoa(httpStatus),
	})
}

// RecordErrorByEndpoint counts an error under its chi route pattern.
func RecordErrorByEndpoint(route string, errorCode string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(APIErrorsByRoute, 1, map[string]string{
		"route":      route,
		"error_code": errorCode,
	})
}

// RecordPanic counts a handler panic caught by the recovery middleware.
func RecordPanic() {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(PanicsTotalName, 1, nil)
}

// RecordActionRejected counts an action that produced no model output,
// either because the provider kept answering 429 or because the session
// already had an action in flight.
func RecordActionRejected(mode string, reason string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(ActionRejectionsName, 1, map[string]string{
		"mode":   mode,
		"reason": reason,
	})
}
