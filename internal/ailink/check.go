package ailink

import (
	"errors"
	"fmt"
)

// ProviderStatus reports how one prompt would be routed, without calling the
// provider.
type ProviderStatus struct {
	PromptSlug string `json:"prompt"`
	ProviderID string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
	Credential string `json:"credential,omitempty"`
	Source     string `json:"source,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Check resolves every registered prompt and looks up its credential
// source. Keys are read but never returned.
func (s *Service) Check() ([]ProviderStatus, error) {
	if s == nil || s.Providers == nil || s.Registry == nil {
		return nil, errors.New("ailink service not configured")
	}

	var (
		statuses []ProviderStatus
		errs     []error
	)
	for _, def := range s.Registry.List() {
		status := ProviderStatus{PromptSlug: def.Config.Slug}

		resolved, err := s.Providers.Resolve(def.Config.Slug, def, "")
		if err == nil {
			status.ProviderID = resolved.ProviderID
			status.Model = resolved.Model
			status.Credential = resolved.Credential.Label
			status.Source, err = credentialSource(resolved.Credential)
		}
		if err != nil {
			status.Error = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", def.Config.Slug, err))
		}
		statuses = append(statuses, status)
	}
	return statuses, errors.Join(errs...)
}
