package strategist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/viralstrategist/viralstrategist/internal/ailink/content"
)

// Mode selects the prompt template and the extraction schema.
type Mode string

const (
	ModeAnalysis Mode = "analysis"
	ModeIdeas    Mode = "ideas"
	ModeHashtags Mode = "hashtags"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeAnalysis, ModeIdeas, ModeHashtags}

// DefaultPromptSlugs maps each mode to its embedded prompt.
var DefaultPromptSlugs = map[Mode]string{
	ModeAnalysis: "viral-scan",
	ModeIdeas:    "viral-ideas",
	ModeHashtags: "viral-hashtags",
}

// ParseMode accepts a mode name or its action verb ("analyze").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "analysis", "analyze", "scan":
		return ModeAnalysis, nil
	case "ideas", "idea":
		return ModeIdeas, nil
	case "hashtags", "tags":
		return ModeHashtags, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// ErrMissingInput is returned when a mode's required free-text input is blank.
var ErrMissingInput = errors.New("missing required input")

// Options is the catalog offered to users for the enumerated parameters.
// Values outside the catalog are passed through verbatim.
type Options struct {
	Niches  []string `json:"niches"`
	Goals   []string `json:"goals"`
	Moods   []string `json:"moods"`
	Regions []string `json:"regions"`
}

// DefaultOptions mirrors the selections of the original creator tool.
var DefaultOptions = Options{
	Niches:  []string{"Standard", "Edits/Clips", "Business", "Lifestyle"},
	Goals:   []string{"Views", "Follower", "Sales"},
	Moods:   []string{"Lustig", "Ernst", "Ästhetisch", "Aggressiv"},
	Regions: []string{"DE", "Global"},
}

// Params are the user inputs for one action. They are not modified by Run.
type Params struct {
	Niche     string `json:"niche"`
	Region    string `json:"region"`
	Goal      string `json:"goal"`
	Mood      string `json:"mood"`
	Topic     string `json:"topic,omitempty"`
	Visuals   string `json:"visuals,omitempty"`
	Video     []byte `json:"-"`
	VideoType string `json:"video_type,omitempty"`
}

// WithDefaults returns a copy with blank enumerated fields set to the first
// catalog entry and a missing video type set to video/mp4.
func (p Params) WithDefaults() Params {
	p.Niche = orFirst(p.Niche, DefaultOptions.Niches)
	p.Goal = orFirst(p.Goal, DefaultOptions.Goals)
	p.Mood = orFirst(p.Mood, DefaultOptions.Moods)
	p.Region = orFirst(p.Region, DefaultOptions.Regions)
	p.Topic = strings.TrimSpace(p.Topic)
	p.Visuals = strings.TrimSpace(p.Visuals)
	if len(p.Video) > 0 && strings.TrimSpace(p.VideoType) == "" {
		p.VideoType = string(content.ContentTypeMP4)
	}
	return p
}

// Validate enforces the per-mode preconditions: ideas need a topic, hashtags
// need a topic and visuals.
func Validate(mode Mode, p Params) error {
	var missing []string
	switch mode {
	case ModeAnalysis:
	case ModeIdeas:
		if strings.TrimSpace(p.Topic) == "" {
			missing = append(missing, "topic")
		}
	case ModeHashtags:
		if strings.TrimSpace(p.Topic) == "" {
			missing = append(missing, "topic")
		}
		if strings.TrimSpace(p.Visuals) == "" {
			missing = append(missing, "visuals")
		}
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingInput, strings.Join(missing, ", "))
	}
	return nil
}

// variables renders the params as prompt variables. Blank values are omitted
// so template conditionals see them as unset.
func (p Params) variables() map[string]string {
	vars := map[string]string{}
	set := func(k, v string) {
		if strings.TrimSpace(v) != "" {
			vars[k] = v
		}
	}
	set("niche", p.Niche)
	set("region", p.Region)
	set("goal", p.Goal)
	set("mood", p.Mood)
	set("topic", p.Topic)
	set("visuals", p.Visuals)
	if len(p.Video) > 0 {
		vars["has_video"] = "true"
	}
	return vars
}

func (p Params) attachments(mode Mode) []content.ContentBlock {
	if mode != ModeAnalysis || len(p.Video) == 0 {
		return nil
	}
	return []content.ContentBlock{content.Inline(content.ContentType(p.VideoType), p.Video)}
}

func orFirst(value string, catalog []string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	if len(catalog) == 0 {
		return ""
	}
	return catalog[0]
}
