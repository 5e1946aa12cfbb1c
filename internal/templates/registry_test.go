package templates

import (
	"strings"
	"testing"
)

func TestNewRegistry_Embedded(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	if r.DefaultTemplate() != "minimal" {
		t.Fatalf("default template = %q, want minimal", r.DefaultTemplate())
	}

	templates := r.ListTemplates()
	wantOrder := []string{"minimal", "developer", "creative", "professional"}
	if len(templates) != len(wantOrder) {
		t.Fatalf("got %d templates, want %d", len(templates), len(wantOrder))
	}
	for i, id := range wantOrder {
		if templates[i].ID != id {
			t.Errorf("templates[%d] = %s, want %s", i, templates[i].ID, id)
		}
	}

	if !r.HasSectionType("projects") {
		t.Error("expected projects section type")
	}
	if r.HasSectionType("blink-tag") {
		t.Error("unexpected section type accepted")
	}
}

func TestGetTemplate(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	tmpl, err := r.GetTemplate("professional")
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	if len(tmpl.Sections) == 0 || tmpl.Sections[0].Type != "hero" {
		t.Fatalf("unexpected sections: %+v", tmpl.Sections)
	}

	last := tmpl.Sections[len(tmpl.Sections)-1]
	content, err := last.ContentJSON()
	if err != nil {
		t.Fatalf("ContentJSON: %v", err)
	}
	if string(content) != `{"show_form":true}` {
		t.Fatalf("content = %s", content)
	}

	if _, err := r.GetTemplate("nope"); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestNewRegistryFromYAML_Errors(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "unknown section type",
			yaml: `
default_template: a
section_types:
  hero: {display_name: Hero}
templates:
  a:
    sections:
      - type: footer
`,
			wantErr: "unknown section type",
		},
		{
			name: "missing default",
			yaml: `
default_template: b
section_types:
  hero: {display_name: Hero}
templates:
  a:
    sections:
      - type: hero
`,
			wantErr: "default template",
		},
		{
			name: "repeated single section",
			yaml: `
default_template: a
section_types:
  hero: {display_name: Hero, repeatable: false}
templates:
  a:
    sections:
      - type: hero
      - type: hero
`,
			wantErr: "non-repeatable",
		},
		{
			name:    "malformed",
			yaml:    "templates: [",
			wantErr: "unmarshal",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRegistryFromYAML([]byte(tc.yaml))
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestIsRepeatable(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	for sectionType, want := range map[string]bool{
		"hero":     false,
		"contact":  false,
		"projects": true,
		"gallery":  true,
		"marquee":  false,
	} {
		if got := registry.IsRepeatable(sectionType); got != want {
			t.Errorf("IsRepeatable(%q) = %v, want %v", sectionType, got, want)
		}
	}
}
