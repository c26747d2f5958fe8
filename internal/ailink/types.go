package ailink

import (
	"time"

	"github.com/viralstrategist/viralstrategist/internal/ailink/content"
	"github.com/viralstrategist/viralstrategist/internal/ailink/driver"
)

// DispatchRequest is the high-level request for one prompt call.
type DispatchRequest struct {
	// Role selects a provider through routing; it defaults to PromptSlug.
	Role        string
	PromptSlug  string
	Variables   map[string]string
	Attachments []content.ContentBlock
	Model       string
}

// DispatchResponse is the joined model text plus call accounting.
type DispatchResponse struct {
	Text         string        `json:"text"`
	Provider     string        `json:"provider"`
	Model        string        `json:"model"`
	Attempts     int           `json:"attempts"`
	Backoff      time.Duration `json:"backoff"`
	FinishReason string        `json:"finish_reason,omitempty"`
	Usage        *driver.Usage `json:"usage,omitempty"`
}

// RetryEvent describes a scheduled retry after a rate-limited attempt.
type RetryEvent struct {
	Provider string
	Attempt  int
	Wait     time.Duration
	Err      error
}
