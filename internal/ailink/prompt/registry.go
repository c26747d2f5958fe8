package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// Registry provides access to prompt definitions.
type Registry interface {
	Get(slug string) (*Prompt, error)
	List() []*Prompt
}

// InMemoryRegistry indexes prompts by slug.
type InMemoryRegistry struct {
	bySlug map[string]*Prompt
	slugs  []string // sorted
}

// NewRegistry indexes prompts. Nil entries are skipped; a blank or repeated
// slug is an error that names both sources.
func NewRegistry(prompts []*Prompt) (*InMemoryRegistry, error) {
	reg := &InMemoryRegistry{bySlug: make(map[string]*Prompt, len(prompts))}
	for _, p := range prompts {
		if p == nil {
			continue
		}
		slug := strings.TrimSpace(p.Config.Slug)
		if slug == "" {
			return nil, fmt.Errorf("prompt %s has no slug", sourceOf(p))
		}
		if prev, ok := reg.bySlug[slug]; ok {
			return nil, fmt.Errorf("duplicate prompt slug %q in %s and %s", slug, sourceOf(prev), sourceOf(p))
		}
		reg.bySlug[slug] = p
		reg.slugs = append(reg.slugs, slug)
	}
	sort.Strings(reg.slugs)
	return reg, nil
}

// Get returns the prompt for the slug.
func (r *InMemoryRegistry) Get(slug string) (*Prompt, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry not configured")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("prompt slug is required")
	}
	p, ok := r.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("prompt %q not found", slug)
	}
	return p, nil
}

// List returns prompts sorted by slug.
func (r *InMemoryRegistry) List() []*Prompt {
	if r == nil {
		return nil
	}
	out := make([]*Prompt, 0, len(r.slugs))
	for _, slug := range r.slugs {
		out = append(out, r.bySlug[slug])
	}
	return out
}

// ForMode returns the prompts of reg serving mode, sorted by slug.
func ForMode(reg Registry, mode string) []*Prompt {
	if reg == nil {
		return nil
	}
	var out []*Prompt
	for _, p := range reg.List() {
		if p.Config.Mode == mode {
			out = append(out, p)
		}
	}
	return out
}

func sourceOf(p *Prompt) string {
	if p.Source != "" {
		return p.Source
	}
	return "(inline)"
}
