package ailink

import "time"

// Config defines provider configuration for AILink.
//
// This is intentionally self-contained so it can be decoded straight from the
// "ailink" subtree of the application config.
type Config struct {
	DefaultProvider string        `mapstructure:"default_provider"`
	DefaultTimeout  time.Duration `mapstructure:"default_timeout"`

	// PromptsDir overrides the embedded prompt set when non-empty.
	PromptsDir string `mapstructure:"prompts_dir"`

	Retry RetryConfig `mapstructure:"retry"`

	// Providers is a set of provider instances keyed by a user-defined id (slug).
	// Each instance declares its underlying driver via AIProvider.
	Providers map[string]ProviderInstanceConfig `mapstructure:"providers"`

	// Routing maps a role (usually a prompt slug) to a provider id.
	Routing map[string]string `mapstructure:"routing"`
}

// RetryConfig controls backoff for rate-limited provider calls.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
	Multiplier float64       `mapstructure:"multiplier"`
	MaxDelay   time.Duration `mapstructure:"max_delay"`
}

// ProviderInstanceConfig defines a configured provider instance (e.g. "gemini").
type ProviderInstanceConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// AIProvider is the driver identifier ("gemini" or "openai").
	AIProvider string `mapstructure:"ai_provider"`

	// SelectionPolicy controls which credential is chosen.
	// Supported values: "priority" (default), "round_robin".
	SelectionPolicy string `mapstructure:"selection_policy"`

	// DefaultCredential, if set, forces selecting the matching credential label.
	DefaultCredential string `mapstructure:"default_credential"`

	BaseURL string            `mapstructure:"base_url"`
	Models  map[string]string `mapstructure:"models"`
	Roles   []string          `mapstructure:"roles"`

	Temperature *float64 `mapstructure:"temperature"`
	MaxTokens   *int     `mapstructure:"max_tokens"`

	Credentials []CredentialConfig `mapstructure:"credentials"`
}

// CredentialConfig describes where a provider key comes from.
//
// The key itself is resolved on every attempt (see resolveAPIKey), so neither
// this struct nor the registry ever holds a cached secret taken from the
// environment.
type CredentialConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Label      string `mapstructure:"label"`
	APIKeyEnv  string `mapstructure:"api_key_env"`
	DotenvFile string `mapstructure:"dotenv_file"`
	APIKey     string `mapstructure:"api_key"`
	Priority   int    `mapstructure:"priority"`
}
