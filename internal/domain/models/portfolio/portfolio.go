package portfolio

import (
	"encoding/json"
	"time"
)

// JSONMap holds free-form JSON objects such as theme settings
type JSONMap map[string]interface{}

// Portfolio is the central document: content plus ownership, visibility,
// version history and engagement counters.
type Portfolio struct {
	ID          string     `json:"id" bson:"_id"`
	Slug        string     `json:"slug" bson:"slug"`
	OwnerID     string     `json:"owner_id" bson:"owner_id"`
	Title       string     `json:"title" bson:"title"`
	Description *string    `json:"description,omitempty" bson:"description,omitempty"`
	Template    string     `json:"template" bson:"template"`
	Theme       JSONMap    `json:"theme,omitempty" bson:"theme,omitempty"`
	Sections    []Section  `json:"sections" bson:"sections"`
	IsPublic    bool       `json:"is_public" bson:"is_public"`
	PublishedAt *time.Time `json:"published_at,omitempty" bson:"published_at,omitempty"`

	Collaborators []Collaborator `json:"collaborators" bson:"collaborators"`

	Version int      `json:"version" bson:"version"`
	Backups []Backup `json:"backups,omitempty" bson:"backups"`

	Stats Stats `json:"stats" bson:"stats"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Section is one block of portfolio content. Content is opaque to the lifecycle
// engine; its shape depends on Type and is owned by the client templates.
type Section struct {
	ID      string          `json:"id" bson:"id"`
	Type    string          `json:"type" bson:"type"`
	Title   string          `json:"title" bson:"title"`
	Content json.RawMessage `json:"content,omitempty" bson:"content,omitempty"`
	Order   int             `json:"order" bson:"order"`
	Visible bool            `json:"visible" bson:"visible"`
}

// Backup is a retained copy of a prior state. Snapshot is the JSON encoding of
// the document at Version, without its own backups.
type Backup struct {
	Version   int             `json:"version" bson:"version"`
	Snapshot  json.RawMessage `json:"snapshot" bson:"snapshot"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	CreatedBy string          `json:"created_by" bson:"created_by"`
}

// Stats holds engagement counters. Counters only grow.
type Stats struct {
	Views       int64      `json:"views" bson:"views"`
	UniqueViews int64      `json:"unique_views" bson:"unique_views"`
	LastViewed  *time.Time `json:"last_viewed,omitempty" bson:"last_viewed,omitempty"`
	Shares      int64      `json:"shares" bson:"shares"`
	Downloads   int64      `json:"downloads" bson:"downloads"`
}

// StatsDelta describes one atomic counter increment
type StatsDelta struct {
	Views       int64
	UniqueViews int64
	Shares      int64
	Downloads   int64
	ViewedAt    *time.Time // sets last_viewed when non-nil
}

// IsPublished reports whether the document is in the Published state
func (p *Portfolio) IsPublished() bool {
	return p.IsPublic && p.PublishedAt != nil
}

// FindCollaborator returns the collaborator entry for userID, or nil
func (p *Portfolio) FindCollaborator(userID string) *Collaborator {
	for i := range p.Collaborators {
		if p.Collaborators[i].UserID == userID {
			return &p.Collaborators[i]
		}
	}
	return nil
}

// Clone returns a deep copy. Section content and snapshots are immutable
// byte slices and are shared.
func (p *Portfolio) Clone() *Portfolio {
	c := *p

	if p.Description != nil {
		d := *p.Description
		c.Description = &d
	}
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		c.PublishedAt = &t
	}
	if p.Stats.LastViewed != nil {
		t := *p.Stats.LastViewed
		c.Stats.LastViewed = &t
	}
	if p.Theme != nil {
		c.Theme = p.Theme.Copy()
	}

	c.Sections = append([]Section(nil), p.Sections...)
	c.Backups = append([]Backup(nil), p.Backups...)

	c.Collaborators = make([]Collaborator, len(p.Collaborators))
	for i, collab := range p.Collaborators {
		c.Collaborators[i] = collab
		if collab.AcceptedAt != nil {
			t := *collab.AcceptedAt
			c.Collaborators[i].AcceptedAt = &t
		}
	}

	return &c
}

// Copy returns a deep copy of m, descending into nested objects and arrays
func (m JSONMap) Copy() JSONMap {
	if m == nil {
		return nil
	}
	out := make(JSONMap, len(m))
	for k, v := range m {
		out[k] = copyJSONValue(v)
	}
	return out
}

func copyJSONValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return map[string]interface{}(JSONMap(val).Copy())
	case JSONMap:
		return val.Copy()
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = copyJSONValue(item)
		}
		return out
	default:
		return v
	}
}
