package driver

import (
	"context"
	"strings"

	"github.com/viralstrategist/viralstrategist/internal/ailink/content"
)

// Driver defines the interface for AI completion providers.
type Driver interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *Request) (*Response, error)
	// Name returns the driver identifier (e.g., "gemini").
	Name() string
	// Capabilities returns what this driver supports.
	Capabilities() Capabilities
}

// Capabilities describes driver features.
type Capabilities struct {
	SupportsVideo     bool
	SupportsStreaming bool
	SupportedModels   []string
}

// Usage contains token usage statistics.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Request is a provider-agnostic completion request.
//
// A message with role "system" carries the system instruction; drivers map it
// to whatever their provider expects.
type Request struct {
	Model       string
	Messages    []content.Message
	Temperature *float64
	MaxTokens   *int
	PromptSlug  string
	Metadata    map[string]string
}

// Response is a provider-agnostic completion response.
type Response struct {
	Content      []content.ContentBlock
	FinishReason string
	Usage        *Usage
}

// Text joins all text blocks of the response.
func (r *Response) Text() string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.Content))
	for _, block := range r.Content {
		if block.IsText() {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// SplitSystem separates system messages from the conversation. Multiple
// system messages are joined with blank lines.
func SplitSystem(messages []content.Message) (string, []content.Message) {
	var system []string
	rest := make([]content.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Role != "system" {
			rest = append(rest, msg)
			continue
		}
		for _, block := range msg.Content {
			if block.IsText() && strings.TrimSpace(block.Text) != "" {
				system = append(system, block.Text)
			}
		}
	}
	return strings.Join(system, "\n\n"), rest
}
