package templates

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry holds the portfolio templates and the section types they may use
type Registry struct {
	catalog      *Catalog
	templates    map[string]*Template
	sectionTypes map[string]*SectionType
	mu           sync.RWMutex
}

// NewRegistry creates a registry from the embedded template catalog
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/templates.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read templates.yaml: %w", err)
	}
	return NewRegistryFromYAML(data)
}

// NewRegistryFromYAML creates a registry from raw catalog YAML
func NewRegistryFromYAML(data []byte) (*Registry, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal template catalog: %w", err)
	}

	r := &Registry{
		catalog:      &catalog,
		templates:    make(map[string]*Template, len(catalog.Templates)),
		sectionTypes: make(map[string]*SectionType, len(catalog.SectionTypes)),
	}
	for i := range catalog.SectionTypes {
		r.sectionTypes[catalog.SectionTypes[i].ID] = &catalog.SectionTypes[i]
	}
	for i := range catalog.Templates {
		tmpl := &catalog.Templates[i]
		used := make(map[string]bool, len(tmpl.Sections))
		for _, section := range tmpl.Sections {
			st, ok := r.sectionTypes[section.Type]
			if !ok {
				return nil, fmt.Errorf("template %s uses unknown section type %s", tmpl.ID, section.Type)
			}
			if used[section.Type] && !st.Repeatable {
				return nil, fmt.Errorf("template %s repeats non-repeatable section type %s", tmpl.ID, section.Type)
			}
			used[section.Type] = true
		}
		r.templates[tmpl.ID] = tmpl
	}

	if _, ok := r.templates[catalog.DefaultTemplate]; !ok {
		return nil, fmt.Errorf("default template %q is not defined", catalog.DefaultTemplate)
	}

	return r, nil
}

// DefaultTemplate returns the ID of the template used when none is requested
func (r *Registry) DefaultTemplate() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalog.DefaultTemplate
}

// GetTemplate returns a template by ID
func (r *Registry) GetTemplate(id string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tmpl, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("unknown template: %s", id)
	}
	return tmpl, nil
}

// HasSectionType reports whether sectionType is allowed in portfolios
func (r *Registry) HasSectionType(sectionType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.sectionTypes[sectionType]
	return ok
}

// IsRepeatable reports whether sectionType may appear more than once in a portfolio.
// Unknown types are not repeatable.
func (r *Registry) IsRepeatable(sectionType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.sectionTypes[sectionType]
	return ok && st.Repeatable
}

// ListTemplates returns all templates (ordered as defined in YAML)
func (r *Registry) ListTemplates() []Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalog.Templates
}

// ListSectionTypes returns all section types (ordered as defined in YAML)
func (r *Registry) ListSectionTypes() []SectionType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalog.SectionTypes
}
