package handlers

import (
	"context"
	"fmt"

	"github.com/viralstrategist/viralstrategist/internal/ailink"
	"github.com/viralstrategist/viralstrategist/internal/observability"
)

// ProviderChecker is satisfied by *ailink.Service.
type ProviderChecker interface {
	Check() ([]ailink.ProviderStatus, error)
}

// ProviderCheck reports degraded while any prompt lacks a routable provider
// or a credential. No provider request is made.
func ProviderCheck(providers ProviderChecker) HealthChecker {
	return HealthCheckerFunc(func(ctx context.Context) error {
		if providers == nil {
			return fmt.Errorf("ailink service not configured")
		}
		if _, err := providers.Check(); err != nil {
			return fmt.Errorf("%w: %v", ErrDegraded, err)
		}
		return nil
	})
}

// TelemetryCheck reports degraded when metrics are enabled but the
// telemetry system never started.
func TelemetryCheck(enabled bool) HealthChecker {
	return HealthCheckerFunc(func(ctx context.Context) error {
		if enabled && observability.TelemetrySystem == nil {
			return fmt.Errorf("%w: telemetry not initialized", ErrDegraded)
		}
		return nil
	})
}
