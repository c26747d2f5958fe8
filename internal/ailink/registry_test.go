package ailink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viralstrategist/viralstrategist/internal/ailink/driver/gemini"
	"github.com/viralstrategist/viralstrategist/internal/ailink/driver/openai"
	"github.com/viralstrategist/viralstrategist/internal/ailink/prompt"
)

func geminiPrompt() *prompt.Prompt {
	return &prompt.Prompt{Config: prompt.Config{ProviderHints: map[string]any{"preferred_models": []any{"gemini-3-flash-preview"}}}}
}

func TestResolveModelUsesOverrideFirst(t *testing.T) {
	providerCfg := ProviderInstanceConfig{Models: map[string]string{"default": "m-default"}}

	model, err := resolveModel(providerCfg, geminiPrompt(), "override-model")
	require.NoError(t, err)
	require.Equal(t, "override-model", model)
}

func TestResolveModelPrefersProviderDefault(t *testing.T) {
	providerCfg := ProviderInstanceConfig{Models: map[string]string{"default": "m-default"}}

	model, err := resolveModel(providerCfg, geminiPrompt(), "")
	require.NoError(t, err)
	require.Equal(t, "m-default", model)
}

func TestResolveModelFallsBackToPromptPreferredModels(t *testing.T) {
	model, err := resolveModel(ProviderInstanceConfig{}, geminiPrompt(), "")
	require.NoError(t, err)
	require.Equal(t, "gemini-3-flash-preview", model)
}

func TestResolveModelErrorsWithoutAnySource(t *testing.T) {
	_, err := resolveModel(ProviderInstanceConfig{}, nil, "")
	require.Error(t, err)
}

func TestResolveProviderOrder(t *testing.T) {
	cfg := Config{
		DefaultProvider: "gemini",
		Providers: map[string]ProviderInstanceConfig{
			"gemini":   {Enabled: true, AIProvider: "gemini"},
			"backup":   {Enabled: true, AIProvider: "openai", Roles: []string{"viral-hashtags"}},
			"disabled": {Enabled: false, AIProvider: "openai"},
		},
		Routing: map[string]string{"viral-ideas": "backup", "broken": "disabled"},
	}
	reg := NewRegistry(cfg)

	id, _, err := reg.resolveProvider("viral-ideas")
	require.NoError(t, err)
	assert.Equal(t, "backup", id)

	id, _, err = reg.resolveProvider("viral-hashtags")
	require.NoError(t, err)
	assert.Equal(t, "backup", id)

	id, _, err = reg.resolveProvider("viral-scan")
	require.NoError(t, err)
	assert.Equal(t, "gemini", id)

	_, _, err = reg.resolveProvider("broken")
	require.Error(t, err)
}

func TestResolveProviderSingleEnabledWithoutDefault(t *testing.T) {
	reg := NewRegistry(Config{Providers: map[string]ProviderInstanceConfig{
		"only": {Enabled: true, AIProvider: "gemini"},
		"off":  {Enabled: false, AIProvider: "openai"},
	}})
	id, _, err := reg.resolveProvider("")
	require.NoError(t, err)
	assert.Equal(t, "only", id)

	_, _, err = NewRegistry(Config{}).resolveProvider("")
	require.Error(t, err)
}

func TestResolveRejectsUnknownDriver(t *testing.T) {
	reg := NewRegistry(Config{DefaultProvider: "x", Providers: map[string]ProviderInstanceConfig{
		"x": {Enabled: true, AIProvider: "carrier-pigeon", Models: map[string]string{"default": "m"}},
	}})
	_, err := reg.Resolve("", nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestSelectCredential(t *testing.T) {
	t.Run("implicit default", func(t *testing.T) {
		cred, err := selectCredential(ProviderInstanceConfig{}, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultAPIKeyEnv, cred.APIKeyEnv)
	})

	t.Run("highest priority", func(t *testing.T) {
		cred, err := selectCredential(ProviderInstanceConfig{Credentials: []CredentialConfig{
			{Label: "low", Enabled: true, Priority: 1},
			{Label: "high", Enabled: true, Priority: 5},
			{Label: "off", Enabled: false, Priority: 9},
		}}, nil)
		require.NoError(t, err)
		assert.Equal(t, "high", cred.Label)
	})

	t.Run("default credential label", func(t *testing.T) {
		cred, err := selectCredential(ProviderInstanceConfig{DefaultCredential: "LOW", Credentials: []CredentialConfig{
			{Label: "low", Enabled: true, Priority: 1},
			{Label: "high", Enabled: true, Priority: 5},
		}}, nil)
		require.NoError(t, err)
		assert.Equal(t, "low", cred.Label)
	})

	t.Run("round robin", func(t *testing.T) {
		reg := NewRegistry(Config{})
		cfg := ProviderInstanceConfig{SelectionPolicy: "round_robin", Credentials: []CredentialConfig{
			{Label: "a", Enabled: true},
			{Label: "b", Enabled: true},
		}}
		next := func(key string, n int) int { return reg.rrIndex("p:"+key, n) }
		var got []string
		for i := 0; i < 3; i++ {
			cred, err := selectCredential(cfg, next)
			require.NoError(t, err)
			got = append(got, cred.Label)
		}
		assert.Equal(t, []string{"a", "b", "a"}, got)
	})

	t.Run("all disabled", func(t *testing.T) {
		_, err := selectCredential(ProviderInstanceConfig{Credentials: []CredentialConfig{{Label: "x"}}}, nil)
		require.Error(t, err)
	})
}

func TestDriverBuildsConfiguredClient(t *testing.T) {
	stubEnv(t, map[string]string{"GEMINI_KEY": "g-key", "OPENAI_KEY": "o-key"})

	reg := NewRegistry(Config{})
	drv, err := reg.Driver(&ResolvedProvider{
		Provider:   ProviderInstanceConfig{AIProvider: "gemini"},
		Credential: CredentialConfig{APIKeyEnv: "GEMINI_KEY"},
	})
	require.NoError(t, err)
	client, ok := drv.(*gemini.Client)
	require.True(t, ok)
	assert.Equal(t, "g-key", client.APIKey)

	drv, err = reg.Driver(&ResolvedProvider{
		Provider:   ProviderInstanceConfig{AIProvider: "openai", BaseURL: "http://localhost:1"},
		Credential: CredentialConfig{APIKeyEnv: "OPENAI_KEY"},
	})
	require.NoError(t, err)
	oc, ok := drv.(*openai.Client)
	require.True(t, ok)
	assert.Equal(t, "o-key", oc.APIKey)
	assert.Equal(t, "http://localhost:1", oc.BaseURL)
}
