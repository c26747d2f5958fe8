package gemini

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"

	"github.com/viralstrategist/viralstrategist/internal/ailink/content"
	"github.com/viralstrategist/viralstrategist/internal/ailink/driver"
)

// convertMessages flattens the conversation into the system instruction and
// the ordered parts of a single user turn.
func convertMessages(messages []content.Message) (string, []genai.Part, error) {
	system, rest := driver.SplitSystem(messages)
	if len(rest) == 0 {
		return "", nil, fmt.Errorf("messages are required")
	}

	var parts []genai.Part
	for _, msg := range rest {
		for _, block := range msg.Content {
			switch {
			case block.IsText():
				if block.Text != "" {
					parts = append(parts, genai.Text(block.Text))
				}
			case len(block.Data) > 0:
				parts = append(parts, genai.Blob{MIMEType: string(block.Type), Data: block.Data})
			default:
				return "", nil, fmt.Errorf("empty %s attachment", block.Type)
			}
		}
	}
	if len(parts) == 0 {
		return "", nil, fmt.Errorf("messages contain no content")
	}
	return system, parts, nil
}

func toDriverResponse(resp *genai.GenerateContentResponse) *driver.Response {
	out := &driver.Response{}
	if resp == nil {
		return out
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		cand := resp.Candidates[0]
		out.FinishReason = strings.ToLower(strings.TrimPrefix(cand.FinishReason.String(), "FinishReason"))
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if txt, ok := part.(genai.Text); ok {
					out.Content = append(out.Content, content.Text(string(txt)))
				}
			}
		}
	}

	if meta := resp.UsageMetadata; meta != nil {
		out.Usage = &driver.Usage{
			PromptTokens:     int(meta.PromptTokenCount),
			CompletionTokens: int(meta.CandidatesTokenCount),
			TotalTokens:      int(meta.TotalTokenCount),
		}
	}
	return out
}

// mapError turns SDK failures into driver.ProviderError so the dispatcher can
// classify them. Errors without an HTTP status are wrapped as-is.
func mapError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := strings.TrimSpace(gerr.Message)
		if msg == "" {
			msg = strings.TrimSpace(gerr.Body)
		}
		return &driver.ProviderError{
			Provider:    "gemini",
			StatusCode:  gerr.Code,
			Message:     msg,
			RawResponse: []byte(gerr.Body),
		}
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &driver.ProviderError{Provider: "gemini", Status: "blocked", Message: blocked.Error()}
	}

	return fmt.Errorf("gemini request failed: %w", err)
}
