package templates

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// SectionType describes a kind of section a template can render
type SectionType struct {
	// Section type identifier (set during YAML unmarshaling)
	ID string `yaml:"-" json:"id"`

	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`

	// Repeatable section types may appear more than once in a portfolio
	Repeatable bool `yaml:"repeatable" json:"repeatable"`
}

// DefaultSection is a section seeded into new portfolios built from a template
type DefaultSection struct {
	Type    string                 `yaml:"type" json:"type"`
	Title   string                 `yaml:"title" json:"title"`
	Content map[string]interface{} `yaml:"content" json:"content,omitempty"`
}

// ContentJSON encodes the seeded content as an opaque section payload
func (d DefaultSection) ContentJSON() (json.RawMessage, error) {
	if len(d.Content) == 0 {
		return nil, nil
	}
	return json.Marshal(d.Content)
}

// Template is a named layout with its default theme and sections
type Template struct {
	// Template identifier (set during YAML unmarshaling)
	ID string `yaml:"-" json:"id"`

	DisplayName string                 `yaml:"display_name" json:"display_name"`
	Description string                 `yaml:"description" json:"description"`
	Theme       map[string]interface{} `yaml:"theme" json:"theme,omitempty"`
	Sections    []DefaultSection       `yaml:"sections" json:"sections"`
}

// Catalog is the full template file
type Catalog struct {
	DefaultTemplate string        `yaml:"default_template" json:"default_template"`
	SectionTypes    []SectionType `yaml:"-" json:"section_types"` // Ordered, populated by custom unmarshaler
	Templates       []Template    `yaml:"-" json:"templates"`     // Ordered, populated by custom unmarshaler
}

// UnmarshalYAML implements custom YAML unmarshaling to preserve key order from the YAML file
func (c *Catalog) UnmarshalYAML(node *yaml.Node) error {
	type mapsOnly struct {
		DefaultTemplate string                 `yaml:"default_template"`
		SectionTypes    map[string]SectionType `yaml:"section_types"`
		Templates       map[string]Template    `yaml:"templates"`
	}
	var m mapsOnly
	if err := node.Decode(&m); err != nil {
		return err
	}
	c.DefaultTemplate = m.DefaultTemplate

	// node.Content alternates: key, value, key, value...
	for i := 0; i+1 < len(node.Content); i += 2 {
		valueNode := node.Content[i+1]
		switch node.Content[i].Value {
		case "section_types":
			for _, key := range orderedKeys(valueNode) {
				st := m.SectionTypes[key]
				st.ID = key
				c.SectionTypes = append(c.SectionTypes, st)
			}
		case "templates":
			for _, key := range orderedKeys(valueNode) {
				tmpl := m.Templates[key]
				tmpl.ID = key
				c.Templates = append(c.Templates, tmpl)
			}
		}
	}

	return nil
}

func orderedKeys(mapping *yaml.Node) []string {
	keys := make([]string, 0, len(mapping.Content)/2)
	for j := 0; j < len(mapping.Content); j += 2 {
		keys = append(keys, mapping.Content[j].Value)
	}
	return keys
}
