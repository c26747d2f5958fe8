package prompt

import (
	"strings"

	"github.com/viralstrategist/viralstrategist/internal/extract"
)

// Config describes a prompt definition loaded from YAML.
type Config struct {
	Slug           string         `yaml:"slug" json:"slug"`
	Name           string         `yaml:"name,omitempty" json:"name,omitempty"`
	Description    string         `yaml:"description,omitempty" json:"description,omitempty"`
	Version        string         `yaml:"version,omitempty" json:"version,omitempty"`
	Mode           string         `yaml:"mode" json:"mode"`
	Input          InputSpec      `yaml:"input,omitempty" json:"input,omitempty"`
	SystemTemplate string         `yaml:"system_template,omitempty" json:"system_template,omitempty"`
	UserTemplate   string         `yaml:"user_template,omitempty" json:"user_template,omitempty"`
	EmptyMessage   string         `yaml:"empty_message,omitempty" json:"empty_message,omitempty"`
	Extraction     extract.Schema `yaml:"extraction" json:"extraction"`
	ProviderHints  map[string]any `yaml:"provider_hints,omitempty" json:"provider_hints,omitempty"`
}

// InputSpec defines prompt input requirements.
type InputSpec struct {
	RequiredVariables []string `yaml:"required_variables,omitempty" json:"required_variables,omitempty"`
	OptionalVariables []string `yaml:"optional_variables,omitempty" json:"optional_variables,omitempty"`
	AcceptsVideo      bool     `yaml:"accepts_video,omitempty" json:"accepts_video,omitempty"`
	VideoTypes        []string `yaml:"video_types,omitempty" json:"video_types,omitempty"`
}

// AcceptsVideoType reports whether an inline attachment of mediaType may be
// sent with this prompt. An empty VideoTypes list allows any video/* type.
func (s InputSpec) AcceptsVideoType(mediaType string) bool {
	if !s.AcceptsVideo {
		return false
	}
	if len(s.VideoTypes) == 0 {
		return strings.HasPrefix(mediaType, "video/")
	}
	for _, t := range s.VideoTypes {
		if strings.EqualFold(strings.TrimSpace(t), mediaType) {
			return true
		}
	}
	return false
}

// Prompt wraps a validated prompt configuration with its source.
type Prompt struct {
	Config Config
	Source string
}
