package ailink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viralstrategist/viralstrategist/internal/ailink/prompt"
)

func TestApplyConditionals(t *testing.T) {
	cases := []struct {
		name string
		tmpl string
		vars map[string]string
		want string
	}{
		{"true branch", "{{#if a}}yes{{else}}no{{/if}}", map[string]string{"a": "1"}, "yes"},
		{"else branch", "{{#if a}}yes{{else}}no{{/if}}", nil, "no"},
		{"blank counts as missing", "{{#if a}}yes{{else}}no{{/if}}", map[string]string{"a": "  "}, "no"},
		{"no else", "x{{#if a}}yes{{/if}}y", nil, "xy"},
		{"nested", "{{#if a}}A{{#if b}}B{{else}}-{{/if}}{{else}}none{{/if}}", map[string]string{"a": "1"}, "A-"},
		{"unterminated", "{{#if a}}yes", map[string]string{"a": "1"}, "{{#if a}}yes"},
		{"two blocks", "{{#if a}}1{{/if}}{{#if b}}2{{/if}}", map[string]string{"b": "x"}, "2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, applyConditionals(tc.tmpl, tc.vars))
		})
	}
}

func TestApplyVarsDoesNotReexpandValues(t *testing.T) {
	out := applyVars("{{a}} {{b}}", map[string]string{"a": "{{b}}", "b": "B"})
	assert.Equal(t, "{{b}} B", out)
}

func TestRenderPromptEmbedsEveryParameter(t *testing.T) {
	reg, err := prompt.DefaultRegistry()
	require.NoError(t, err)

	vars := map[string]string{
		"niche":   "Edits/Clips",
		"goal":    "Follower",
		"mood":    "Ästhetisch",
		"region":  "Global",
		"topic":   "Sneaker Restoration",
		"visuals": "Close-ups, Zeitraffer",
	}
	for _, slug := range []string{"viral-scan", "viral-ideas", "viral-hashtags"} {
		t.Run(slug, func(t *testing.T) {
			def, err := reg.Get(slug)
			require.NoError(t, err)

			system, user, err := renderPrompt(def, vars)
			require.NoError(t, err)
			assert.Contains(t, system, "TIKTOK VIRAL STRATEGIST")
			assert.NotContains(t, user, "{{")
			for _, name := range def.Config.Input.RequiredVariables {
				assert.Contains(t, user, vars[name], "variable %s", name)
			}
		})
	}
}

func TestRenderScanPromptVideoBranch(t *testing.T) {
	reg, err := prompt.DefaultRegistry()
	require.NoError(t, err)
	def, err := reg.Get("viral-scan")
	require.NoError(t, err)

	_, user, err := renderPrompt(def, map[string]string{"has_video": "true"})
	require.NoError(t, err)
	assert.Contains(t, user, "Analysiere das beigefügte Video.")

	_, user, err = renderPrompt(def, nil)
	require.NoError(t, err)
	assert.Contains(t, user, "Kein Video vorhanden")
}
