package metrics

import (
	"strconv"
	"time"

	"github.com/viralstrategist/viralstrategist/internal/observability"
)

// Application-level metrics following Prometheus conventions
var (
	// Strategist actions
	DispatchTotal      = "viral_dispatch_total"
	DispatchDurationMs = "viral_dispatch_duration_ms"
	ExtractedItems     = "viral_extracted_items"

	// Provider retries
	RetriesTotal = "ailink_retries_total"

	// Health check metrics
	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"

	// Server lifecycle metrics
	ServerStartTime = "app_server_start_time_seconds"
)

// RecordDispatch records one finished strategist action.
func RecordDispatch(mode string, status string, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(
		DispatchTotal,
		1,
		map[string]string{
			"mode":   mode,
			"status": status,
		},
	)
	_ = observability.TelemetrySystem.Histogram(
		DispatchDurationMs,
		duration,
		map[string]string{"mode": mode},
	)
}

// RecordExtracted records how many items (fields, ideas, tags) an action produced.
func RecordExtracted(mode string, count int) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ExtractedItems,
			float64(count),
			map[string]string{"mode": mode},
		)
	}
}

// RecordRetry records a scheduled retry after a rate-limited attempt.
func RecordRetry(provider string, attempt int) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			RetriesTotal,
			1,
			map[string]string{
				"provider": provider,
				"attempt":  strconv.Itoa(attempt),
			},
		)
	}
}

// RecordHealthCheck records a health check execution. status is healthy,
// degraded or unhealthy.
func RecordHealthCheck(checkName string, status string, duration time.Duration) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerStartTime,
			float64(timestamp),
			nil,
		)
	}
}
