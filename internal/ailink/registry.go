package ailink

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/viralstrategist/viralstrategist/internal/ailink/driver"
	"github.com/viralstrategist/viralstrategist/internal/ailink/driver/gemini"
	"github.com/viralstrategist/viralstrategist/internal/ailink/driver/openai"
	"github.com/viralstrategist/viralstrategist/internal/ailink/prompt"
)

// DriverFactory builds a driver for one call with a freshly read key.
type DriverFactory func(cfg ProviderInstanceConfig, apiKey string, timeout time.Duration) driver.Driver

var (
	factoriesMu sync.RWMutex
	factories   = map[string]DriverFactory{
		"gemini": func(cfg ProviderInstanceConfig, apiKey string, timeout time.Duration) driver.Driver {
			client := gemini.NewClient(cfg.BaseURL, apiKey)
			client.Timeout = timeout
			return client
		},
		"openai": func(cfg ProviderInstanceConfig, apiKey string, timeout time.Duration) driver.Driver {
			client := openai.NewClient(cfg.BaseURL, apiKey)
			client.Timeout = timeout
			return client
		},
	}
)

// RegisterFactory installs or replaces the factory for an ai_provider value.
func RegisterFactory(aiProvider string, factory DriverFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[strings.ToLower(strings.TrimSpace(aiProvider))] = factory
}

func lookupFactory(aiProvider string) (DriverFactory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[strings.ToLower(strings.TrimSpace(aiProvider))]
	return f, ok
}

// Registry resolves roles to provider instances. It never caches drivers:
// each attempt builds one with the key read at that moment.
type Registry struct {
	cfg Config

	mu sync.Mutex
	rr map[string]int
}

// ResolvedProvider is the routing decision for one dispatch.
type ResolvedProvider struct {
	ProviderID string
	Provider   ProviderInstanceConfig
	Credential CredentialConfig
	Model      string
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg}
}

// Config returns the configuration the registry was built with.
func (r *Registry) Config() Config {
	if r == nil {
		return Config{}
	}
	return r.cfg
}

func (r *Registry) Resolve(role string, promptDef *prompt.Prompt, modelOverride string) (*ResolvedProvider, error) {
	providerID, providerCfg, err := r.resolveProvider(role)
	if err != nil {
		return nil, err
	}

	if _, ok := lookupFactory(providerCfg.AIProvider); !ok {
		aiProvider := strings.TrimSpace(providerCfg.AIProvider)
		if aiProvider == "" {
			aiProvider = "(unset)"
		}
		return nil, fmt.Errorf("unsupported ai_provider %q for provider %q", aiProvider, providerID)
	}

	cred, err := selectCredential(providerCfg, func(groupKey string, n int) int {
		return r.rrIndex(providerID+":"+groupKey, n)
	})
	if err != nil {
		return nil, err
	}

	model, err := resolveModel(providerCfg, promptDef, modelOverride)
	if err != nil {
		return nil, err
	}

	return &ResolvedProvider{
		ProviderID: providerID,
		Provider:   providerCfg,
		Credential: cred,
		Model:      model,
	}, nil
}

// Driver reads the credential and constructs a driver for one attempt.
func (r *Registry) Driver(resolved *ResolvedProvider) (driver.Driver, error) {
	if resolved == nil {
		return nil, fmt.Errorf("provider not resolved")
	}
	factory, ok := lookupFactory(resolved.Provider.AIProvider)
	if !ok {
		return nil, fmt.Errorf("unsupported ai_provider %q", resolved.Provider.AIProvider)
	}
	key, err := resolveAPIKey(resolved.Credential)
	if err != nil {
		return nil, err
	}
	return factory(resolved.Provider, key, r.Config().DefaultTimeout), nil
}

func (r *Registry) resolveProvider(role string) (string, ProviderInstanceConfig, error) {
	if r == nil {
		return "", ProviderInstanceConfig{}, fmt.Errorf("ailink registry not configured")
	}

	role = strings.TrimSpace(role)
	if role != "" {
		if providerID, ok := r.cfg.Routing[role]; ok {
			providerID = strings.TrimSpace(providerID)
			if providerID != "" {
				providerCfg, ok := r.cfg.Providers[providerID]
				if !ok {
					return "", ProviderInstanceConfig{}, fmt.Errorf("unknown provider %q for role %q", providerID, role)
				}
				if !providerCfg.Enabled {
					return "", ProviderInstanceConfig{}, fmt.Errorf("provider %q is disabled", providerID)
				}
				return providerID, providerCfg, nil
			}
		}

		for _, providerID := range sortedProviderIDs(r.cfg.Providers) {
			providerCfg := r.cfg.Providers[providerID]
			if providerCfg.Enabled && contains(providerCfg.Roles, role) {
				return providerID, providerCfg, nil
			}
		}
	}

	if id := strings.TrimSpace(r.cfg.DefaultProvider); id != "" {
		providerCfg, ok := r.cfg.Providers[id]
		if !ok {
			return "", ProviderInstanceConfig{}, fmt.Errorf("default provider %q not configured", id)
		}
		if !providerCfg.Enabled {
			return "", ProviderInstanceConfig{}, fmt.Errorf("default provider %q is disabled", id)
		}
		return id, providerCfg, nil
	}

	var onlyID string
	for providerID, providerCfg := range r.cfg.Providers {
		if !providerCfg.Enabled {
			continue
		}
		if onlyID != "" {
			return "", ProviderInstanceConfig{}, fmt.Errorf("no provider routing configured")
		}
		onlyID = providerID
	}
	if onlyID == "" {
		return "", ProviderInstanceConfig{}, fmt.Errorf("no enabled providers configured")
	}
	return onlyID, r.cfg.Providers[onlyID], nil
}

// selectCredential picks the credential source for a provider. Without any
// configured credential the default API_KEY environment variable is used.
func selectCredential(cfg ProviderInstanceConfig, rrNext func(groupKey string, n int) int) (CredentialConfig, error) {
	if len(cfg.Credentials) == 0 {
		return CredentialConfig{Label: "default", Enabled: true, APIKeyEnv: DefaultAPIKeyEnv}, nil
	}

	usable := make([]CredentialConfig, 0, len(cfg.Credentials))
	for _, cred := range cfg.Credentials {
		if cred.usable() {
			usable = append(usable, cred)
		}
	}
	if len(usable) == 0 {
		return CredentialConfig{}, fmt.Errorf("no enabled credentials configured")
	}

	if label := strings.TrimSpace(cfg.DefaultCredential); label != "" {
		for _, cred := range usable {
			if strings.EqualFold(strings.TrimSpace(cred.Label), label) {
				return cred, nil
			}
		}
	}

	highest := usable[0].Priority
	for _, cred := range usable[1:] {
		if cred.Priority > highest {
			highest = cred.Priority
		}
	}
	group := make([]CredentialConfig, 0, len(usable))
	for _, cred := range usable {
		if cred.Priority == highest {
			group = append(group, cred)
		}
	}

	if strings.EqualFold(strings.TrimSpace(cfg.SelectionPolicy), "round_robin") && rrNext != nil {
		return group[rrNext(fmt.Sprintf("p%d", highest), len(group))], nil
	}
	return group[0], nil
}

func resolveModel(providerCfg ProviderInstanceConfig, promptDef *prompt.Prompt, override string) (string, error) {
	if model := strings.TrimSpace(override); model != "" {
		return model, nil
	}

	// Provider config takes precedence over prompt hints.
	if providerCfg.Models != nil {
		if model := strings.TrimSpace(providerCfg.Models["default"]); model != "" {
			return model, nil
		}
	}

	for _, model := range preferredModels(promptDef) {
		if model = strings.TrimSpace(model); model != "" {
			return model, nil
		}
	}

	return "", fmt.Errorf("model not configured")
}

func preferredModels(promptDef *prompt.Prompt) []string {
	if promptDef == nil {
		return nil
	}

	value, ok := promptDef.Config.ProviderHints["preferred_models"]
	if !ok || value == nil {
		return nil
	}

	switch typed := value.(type) {
	case []string:
		return typed
	case []any:
		models := make([]string, 0, len(typed))
		for _, item := range typed {
			if s, ok := item.(string); ok {
				models = append(models, s)
			}
		}
		return models
	case string:
		return []string{typed}
	default:
		return nil
	}
}

func (r *Registry) rrIndex(key string, n int) int {
	if n <= 1 || r == nil {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rr == nil {
		r.rr = map[string]int{}
	}
	idx := r.rr[key] % n
	r.rr[key]++
	return idx
}

func sortedProviderIDs(providers map[string]ProviderInstanceConfig) []string {
	ids := make([]string, 0, len(providers))
	for id := range providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func contains(values []string, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return false
	}
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), needle) {
			return true
		}
	}
	return false
}
