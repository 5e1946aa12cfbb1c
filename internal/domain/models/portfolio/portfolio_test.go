package portfolio

import (
	"testing"
	"time"
)

func TestClone_ThemeIsIndependent(t *testing.T) {
	orig := &Portfolio{
		ID: "p1",
		Theme: JSONMap{
			"primary": "#000",
			"fonts":   map[string]interface{}{"heading": "Inter"},
			"palette": []interface{}{"#111", map[string]interface{}{"accent": "#f00"}},
		},
	}

	c := orig.Clone()
	c.Theme["primary"] = "#fff"
	c.Theme["fonts"].(map[string]interface{})["heading"] = "Serif"
	c.Theme["palette"].([]interface{})[0] = "#222"
	c.Theme["palette"].([]interface{})[1].(map[string]interface{})["accent"] = "#0f0"

	if orig.Theme["primary"] != "#000" {
		t.Errorf("primary = %v", orig.Theme["primary"])
	}
	if got := orig.Theme["fonts"].(map[string]interface{})["heading"]; got != "Inter" {
		t.Errorf("nested map mutated through clone: heading = %v", got)
	}
	palette := orig.Theme["palette"].([]interface{})
	if palette[0] != "#111" {
		t.Errorf("nested array mutated through clone: %v", palette[0])
	}
	if got := palette[1].(map[string]interface{})["accent"]; got != "#f00" {
		t.Errorf("map inside array mutated through clone: accent = %v", got)
	}
}

func TestClone_PointersAndSlices(t *testing.T) {
	desc := "about"
	published := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	accepted := published.Add(time.Hour)
	orig := &Portfolio{
		Description:   &desc,
		PublishedAt:   &published,
		Sections:      []Section{{ID: "s1", Type: "hero"}},
		Collaborators: []Collaborator{{UserID: "u2", AcceptedAt: &accepted}},
	}

	c := orig.Clone()
	*c.Description = "changed"
	*c.PublishedAt = time.Time{}
	c.Sections[0].Type = "about"
	*c.Collaborators[0].AcceptedAt = time.Time{}

	if *orig.Description != "about" || !orig.PublishedAt.Equal(published) {
		t.Fatal("scalar pointers shared with clone")
	}
	if orig.Sections[0].Type != "hero" {
		t.Fatal("sections shared with clone")
	}
	if !orig.Collaborators[0].AcceptedAt.Equal(accepted) {
		t.Fatal("collaborator acceptance time shared with clone")
	}
}

func TestJSONMapCopy_Nil(t *testing.T) {
	var m JSONMap
	if m.Copy() != nil {
		t.Fatal("copy of nil map should be nil")
	}
	if (&Portfolio{}).Clone().Theme != nil {
		t.Fatal("clone should keep a nil theme nil")
	}
}
