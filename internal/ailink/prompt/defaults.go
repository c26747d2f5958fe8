package prompt

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
)

//go:embed prompts/*.md
var defaultPromptsFS embed.FS

// LoadDefaults loads the embedded prompt set.
func LoadDefaults() ([]*Prompt, error) {
	prompts, err := loadFS(defaultPromptsFS, "prompts", "embedded:")
	if err != nil {
		return nil, fmt.Errorf("embedded prompts: %w", err)
	}
	return prompts, nil
}

// LoadFromDir reads every *.md prompt file in dir. Subdirectories and other
// extensions are ignored.
func LoadFromDir(dir string) ([]*Prompt, error) {
	if info, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("prompts dir: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("prompts dir %s is not a directory", dir)
	}
	return loadFS(os.DirFS(dir), ".", dir+string(os.PathSeparator))
}

// DefaultRegistry builds a registry from embedded prompts.
func DefaultRegistry() (Registry, error) {
	prompts, err := LoadDefaults()
	if err != nil {
		return nil, err
	}
	return NewRegistry(prompts)
}

// loadFS parses the *.md files directly under root in name order. Each
// prompt's Source is sourcePrefix followed by the file name.
func loadFS(fsys fs.FS, root, sourcePrefix string) ([]*Prompt, error) {
	names, err := fs.Glob(fsys, path.Join(root, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("scan prompts: %w", err)
	}
	sort.Strings(names)

	prompts := make([]*Prompt, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read prompt %s: %w", name, err)
		}
		p, err := Load(sourcePrefix+path.Base(name), data)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}
	return prompts, nil
}
