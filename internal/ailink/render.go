package ailink

import (
	"errors"
	"strings"

	"github.com/viralstrategist/viralstrategist/internal/ailink/prompt"
)

// renderPrompt renders the system and user templates of def. Conditionals are
// resolved before substitution so a variable value can never open a block.
func renderPrompt(def *prompt.Prompt, vars map[string]string) (string, string, error) {
	if def == nil {
		return "", "", errors.New("prompt is required")
	}

	system := renderTemplate(def.Config.SystemTemplate, vars)
	if strings.TrimSpace(system) == "" {
		return "", "", errors.New("system prompt is required")
	}

	user := renderTemplate(def.Config.UserTemplate, vars)
	if strings.TrimSpace(user) == "" {
		return "", "", errors.New("user prompt is required")
	}
	return strings.TrimSpace(system), strings.TrimSpace(user), nil
}

func renderTemplate(template string, vars map[string]string) string {
	return applyVars(applyConditionals(template, vars), vars)
}

func applyVars(template string, vars map[string]string) string {
	if len(vars) == 0 {
		return template
	}
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// applyConditionals handles {{#if var}}content{{else}}fallback{{/if}} blocks.
// A variable that is present and not blank selects content; otherwise the
// fallback (or nothing) is used. Blocks nest.
func applyConditionals(template string, vars map[string]string) string {
	result := template
	for {
		start := strings.Index(result, "{{#if")
		if start == -1 {
			return result
		}
		tagEnd := strings.Index(result[start:], "}}")
		if tagEnd == -1 {
			return result
		}
		tagEnd += start

		name := strings.TrimSpace(result[start+len("{{#if") : tagEnd])
		body := tagEnd + 2

		block, ok := scanBlock(result, body)
		if !ok {
			return result
		}

		chosen := result[block.elseEnd:block.endStart]
		if strings.TrimSpace(vars[name]) != "" {
			chosen = result[body:block.elseStart]
		}
		result = result[:start] + chosen + result[block.endEnd:]
	}
}

// conditionalBlock holds offsets into the template. Without an else branch
// elseStart and elseEnd both equal endStart.
type conditionalBlock struct {
	elseStart, elseEnd int
	endStart, endEnd   int
}

func scanBlock(input string, from int) (conditionalBlock, bool) {
	depth := 0
	elseStart, elseEnd := -1, -1

	for pos := from; ; {
		open := strings.Index(input[pos:], "{{")
		if open == -1 {
			return conditionalBlock{}, false
		}
		open += pos

		closing := strings.Index(input[open:], "}}")
		if closing == -1 {
			return conditionalBlock{}, false
		}
		closing += open

		tag := strings.TrimSpace(input[open+2 : closing])
		switch {
		case tag == "#if" || strings.HasPrefix(tag, "#if "):
			depth++
		case tag == "/if" && depth > 0:
			depth--
		case tag == "/if":
			if elseStart == -1 {
				elseStart, elseEnd = open, open
			}
			return conditionalBlock{elseStart: elseStart, elseEnd: elseEnd, endStart: open, endEnd: closing + 2}, true
		case tag == "else" && depth == 0 && elseStart == -1:
			elseStart, elseEnd = open, closing+2
		}
		pos = closing + 2
	}
}
