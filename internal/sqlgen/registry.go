package sqlgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry is the catalog of query templates. Templates are validated when
// added: every placeholder a body references must appear in the declared
// parameter list, so authoring mistakes fail at load time instead of
// rendering silently-empty SQL.
type Registry struct {
	templates map[string]Template
	order     []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]Template)}
}

// DefaultRegistry creates a registry preloaded with the built-in catalog.
func DefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	for _, t := range builtinTemplates {
		if err := r.Add(t); err != nil {
			return nil, fmt.Errorf("builtin template %s: %w", t.Key, err)
		}
	}
	return r, nil
}

// Add validates and registers a template. Re-adding an existing key
// replaces it without changing catalog order.
func (r *Registry) Add(t Template) error {
	if t.Key == "" {
		return fmt.Errorf("template key is required")
	}
	segments, err := compileBody(t.Body)
	if err != nil {
		return err
	}

	declared := map[string]bool{}
	for _, p := range t.Parameters {
		declared[p] = true
	}
	for _, name := range referencedNames(segments) {
		if !declared[name] {
			return fmt.Errorf("body references undeclared parameter %q", name)
		}
	}

	if _, exists := r.templates[t.Key]; !exists {
		r.order = append(r.order, t.Key)
	}
	r.templates[t.Key] = t
	return nil
}

// Get returns the template for a key.
func (r *Registry) Get(key string) (Template, error) {
	t, ok := r.templates[key]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, key)
	}
	return t, nil
}

// List returns all templates in registration order.
func (r *Registry) List() []Template {
	out := make([]Template, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.templates[key])
	}
	return out
}

// LoadDir merges template definitions from *.yaml files in dir into the
// registry. Each file holds one template document. A missing directory is
// not an error; a malformed file is.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read template dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		path := filepath.Join(dir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", path, err)
		}

		var t Template
		if err := yaml.Unmarshal(content, &t); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", path, err)
		}
		if err := r.Add(t); err != nil {
			return fmt.Errorf("template file %s: %w", path, err)
		}
	}
	return nil
}
