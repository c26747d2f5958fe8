package prompt

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterFence = "---"

// Load parses and validates one prompt file. The file is either plain YAML or
// YAML frontmatter between "---" fences followed by a markdown body; the
// body becomes the system template when the frontmatter has none.
func Load(source string, data []byte) (*Prompt, error) {
	front, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", source, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(front, &cfg); err != nil {
		return nil, fmt.Errorf("parse prompt %s: invalid yaml: %w", source, err)
	}

	cfg.SystemTemplate = strings.TrimSpace(cfg.SystemTemplate)
	if cfg.SystemTemplate == "" {
		cfg.SystemTemplate = strings.TrimSpace(body)
	}
	if cfg.SystemTemplate == "" {
		return nil, fmt.Errorf("prompt %s missing system_template", source)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate prompt %s: %w", source, err)
	}
	return &Prompt{Config: cfg, Source: source}, nil
}

// splitFrontmatter returns the YAML part and the markdown body. Without an
// opening fence the whole input is YAML and the body is empty.
func splitFrontmatter(data []byte) ([]byte, string, error) {
	text := strings.ReplaceAll(string(bytes.TrimSpace(data)), "\r\n", "\n")
	if text == "" {
		return nil, "", fmt.Errorf("empty prompt")
	}

	first, rest, _ := strings.Cut(text, "\n")
	if strings.TrimSpace(first) != frontmatterFence {
		return []byte(text), "", nil
	}

	lines := strings.Split(rest, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == frontmatterFence {
			front := strings.Join(lines[:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return []byte(front), body, nil
		}
	}
	return nil, "", fmt.Errorf("frontmatter is not closed with %q", frontmatterFence)
}

var knownModes = map[string]struct{}{
	"analysis": {},
	"ideas":    {},
	"hashtags": {},
}

func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Slug) == "" {
		return fmt.Errorf("slug is required")
	}
	if _, ok := knownModes[cfg.Mode]; !ok {
		return fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	for _, name := range cfg.Input.RequiredVariables {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("required variable names must not be blank")
		}
	}
	if len(cfg.Input.VideoTypes) > 0 && !cfg.Input.AcceptsVideo {
		return fmt.Errorf("video_types set but accepts_video is false")
	}
	if err := cfg.Extraction.Validate(); err != nil {
		return fmt.Errorf("extraction: %w", err)
	}
	return nil
}
