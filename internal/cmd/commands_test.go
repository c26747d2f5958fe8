package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viralstrategist/viralstrategist/internal/ailink"
	"github.com/viralstrategist/viralstrategist/internal/ailink/prompt"
)

func TestPromptTableListsEmbeddedPrompts(t *testing.T) {
	prompts, err := prompt.LoadDefaults()
	require.NoError(t, err)

	rendered := promptTable(prompts)
	for _, slug := range []string{"viral-scan", "viral-ideas", "viral-hashtags"} {
		assert.Contains(t, rendered, slug)
	}
}

func TestRunPromptsJSON(t *testing.T) {
	useProvider(t, chatReply(""))

	buf := &bytes.Buffer{}
	promptsCmd.SetOut(buf)
	promptsCmd.SetContext(context.Background())
	require.NoError(t, promptsCmd.Flags().Set("json", "true"))
	t.Cleanup(func() {
		_ = promptsCmd.Flags().Set("json", "false")
		promptsCmd.SetOut(nil)
	})

	require.NoError(t, runPrompts(promptsCmd, nil))

	var configs []prompt.Config
	require.NoError(t, json.Unmarshal(buf.Bytes(), &configs))
	assert.Len(t, configs, 3)
}

func TestProviderTable(t *testing.T) {
	rendered := providerTable([]ailink.ProviderStatus{
		{PromptSlug: "viral-scan", ProviderID: "gemini", Model: "m", Credential: "default", Source: "env:VIRALSTRATEGIST_API_KEY"},
		{PromptSlug: "viral-ideas", Error: "no credential configured"},
	})
	assert.Contains(t, rendered, "env:VIRALSTRATEGIST_API_KEY")
	assert.Contains(t, rendered, "no credential configured")
	assert.Equal(t, 1, countFailed([]ailink.ProviderStatus{{Error: "x"}, {}}))
}

func TestRunDoctorWithConfiguredProvider(t *testing.T) {
	useProvider(t, chatReply(""))

	buf := &bytes.Buffer{}
	doctorCmd.SetOut(buf)
	doctorCmd.SetContext(context.Background())
	t.Cleanup(func() { doctorCmd.SetOut(nil) })

	require.NoError(t, runDoctor(doctorCmd, nil))
	assert.Contains(t, buf.String(), "local")
	assert.NotContains(t, buf.String(), "test-key")
}
