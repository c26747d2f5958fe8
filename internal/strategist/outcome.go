package strategist

import (
	"errors"
	"time"

	"github.com/viralstrategist/viralstrategist/internal/ailink"
	"github.com/viralstrategist/viralstrategist/internal/extract"
)

// Status summarises how an action ended.
type Status string

const (
	StatusOK          Status = "ok"
	StatusEmpty       Status = "empty"
	StatusFallback    Status = "fallback"
	StatusRateLimited Status = "rate_limited"
	StatusFailed      Status = "failed"
)

// RateLimitMessage is shown once rate-limit retries are exhausted.
const RateLimitMessage = "KI-LIMIT ERREICHT: Dein Gratis-Limit von Google ist für heute oder diese Minute aufgebraucht. Bitte 1-2 Minuten warten oder einen anderen Key nutzen."

// failurePrefix starts every generic failure message. It doubles as an
// extraction failure marker.
const failurePrefix = "FEHLER: "

// defaultEmptyMessage is used when a prompt declares none.
const defaultEmptyMessage = "Keine Daten empfangen."

// Outcome is the display-ready result of one action.
//
// On success exactly one of Record, Ideas and Hashtags is populated, matching
// Mode. Fields lists the record keys in prompt order. On failure Raw holds the
// display message and nothing is extracted.
type Outcome struct {
	ID        string            `json:"id"`
	Mode      Mode              `json:"mode"`
	Status    Status            `json:"status"`
	Message   string            `json:"message,omitempty"`
	Raw       string            `json:"raw"`
	Record    extract.Record    `json:"record,omitempty"`
	Ideas     []extract.Record  `json:"ideas,omitempty"`
	Hashtags  *extract.Hashtags `json:"hashtags,omitempty"`
	Fields    []string          `json:"fields,omitempty"`
	Provider  string            `json:"provider,omitempty"`
	Model     string            `json:"model,omitempty"`
	Attempts  int               `json:"attempts,omitempty"`
	Duration  time.Duration     `json:"duration_ns"`
	CreatedAt time.Time         `json:"created_at"`
}

// Failed reports whether the outcome carries no model data.
func (o *Outcome) Failed() bool {
	return o == nil || o.Status == StatusFailed || o.Status == StatusRateLimited || o.Status == StatusEmpty
}

// ItemCount is the number of extracted fields, ideas or tags.
func (o *Outcome) ItemCount() int {
	if o == nil {
		return 0
	}
	switch o.Mode {
	case ModeIdeas:
		n := 0
		for _, idea := range o.Ideas {
			if !idea.Empty() {
				n++
			}
		}
		return n
	case ModeHashtags:
		if o.Hashtags == nil {
			return 0
		}
		return len(o.Hashtags.Tags)
	default:
		n := 0
		for _, v := range o.Record {
			if v != "" {
				n++
			}
		}
		return n
	}
}

// failureDisplay converts a dispatch failure into its status and message.
func failureDisplay(err error, emptyMessage string) (Status, string) {
	switch {
	case errors.Is(err, ailink.ErrEmptyResponse):
		if emptyMessage == "" {
			emptyMessage = defaultEmptyMessage
		}
		return StatusEmpty, emptyMessage
	case ailink.IsRateLimited(err):
		return StatusRateLimited, RateLimitMessage
	}

	var derr *ailink.DispatchError
	if errors.As(err, &derr) && derr.Err != nil {
		return StatusFailed, failurePrefix + derr.Err.Error()
	}
	return StatusFailed, failurePrefix + err.Error()
}
