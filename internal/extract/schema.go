// Package extract turns free-text model replies into structured records.
//
// Extraction is best effort by construction: every field is optional, a miss
// is an empty string, and nothing in this package returns an error for
// malformed model output. The labels, delimiters and markers that drive it are
// data (see Schema) so prompt templates can drift without code changes.
package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind selects how a reply is shaped.
type Kind string

const (
	// KindRecord extracts one record from the whole reply.
	KindRecord Kind = "record"
	// KindBlocks splits the reply on a heading delimiter and extracts one record per block.
	KindBlocks Kind = "blocks"
	// KindHashtags collects hashtag tokens.
	KindHashtags Kind = "hashtags"
)

const (
	defaultMinBlockLength = 10
	defaultTokenPattern   = `#\w+`
)

// DefaultFailureMarkers are the literal strings that identify a formatted
// failure message rather than model data.
var DefaultFailureMarkers = []string{"FEHLER", "KI-LIMIT"}

// Field maps a record key to the labels that may introduce its value.
//
// Labels are tried in order; the first non-empty match wins. Strip lists
// substrings removed from the captured value (e.g. "%" for scores).
type Field struct {
	Name   string   `yaml:"name" json:"name"`
	Labels []string `yaml:"labels" json:"labels"`
	Strip  []string `yaml:"strip,omitempty" json:"strip,omitempty"`
}

// Schema describes the extraction applied to one mode's replies.
type Schema struct {
	Kind           Kind     `yaml:"kind" json:"kind"`
	Fields         []Field  `yaml:"fields,omitempty" json:"fields,omitempty"`
	Delimiter      string   `yaml:"delimiter,omitempty" json:"delimiter,omitempty"`
	MinBlockLength int      `yaml:"min_block_length,omitempty" json:"min_block_length,omitempty"`
	TokenPattern   string   `yaml:"token_pattern,omitempty" json:"token_pattern,omitempty"`
	FailureMarkers []string `yaml:"failure_markers,omitempty" json:"failure_markers,omitempty"`
}

// Validate reports structural problems that would make extraction meaningless.
func (s Schema) Validate() error {
	switch s.Kind {
	case KindRecord, KindBlocks, KindHashtags:
	case "":
		return fmt.Errorf("extraction kind is required")
	default:
		return fmt.Errorf("unknown extraction kind %q", s.Kind)
	}

	if s.Kind != KindHashtags && len(s.Fields) == 0 {
		return fmt.Errorf("extraction kind %q requires fields", s.Kind)
	}

	seen := make(map[string]struct{}, len(s.Fields))
	for i, f := range s.Fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return fmt.Errorf("field %d missing name", i)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("duplicate field %q", name)
		}
		seen[name] = struct{}{}
		if len(f.Labels) == 0 {
			return fmt.Errorf("field %q has no labels", name)
		}
		for _, label := range f.Labels {
			if strings.TrimSpace(label) == "" {
				return fmt.Errorf("field %q has an empty label", name)
			}
		}
	}

	if s.Kind == KindBlocks {
		if strings.TrimSpace(s.Delimiter) == "" {
			return fmt.Errorf("extraction kind %q requires a delimiter", s.Kind)
		}
		if _, err := regexp.Compile(s.Delimiter); err != nil {
			return fmt.Errorf("invalid delimiter: %w", err)
		}
	}
	if s.TokenPattern != "" {
		if _, err := regexp.Compile(s.TokenPattern); err != nil {
			return fmt.Errorf("invalid token pattern: %w", err)
		}
	}
	return nil
}

// FieldNames returns the record keys in schema order.
func (s Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

func (s Schema) minBlockLength() int {
	if s.MinBlockLength <= 0 {
		return defaultMinBlockLength
	}
	return s.MinBlockLength
}

func (s Schema) failureMarkers() []string {
	if s.FailureMarkers == nil {
		return DefaultFailureMarkers
	}
	return s.FailureMarkers
}

func (s Schema) tokenPattern() string {
	if strings.TrimSpace(s.TokenPattern) == "" {
		return defaultTokenPattern
	}
	return s.TokenPattern
}
