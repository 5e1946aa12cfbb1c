package portfolio

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"folio/internal/domain"
	models "folio/internal/domain/models/portfolio"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestBeforeUpdate_SnapshotExcludesBackups(t *testing.T) {
	m := NewBackupManager(0)
	m.now = fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	doc := &models.Portfolio{
		ID:      "p-1",
		Slug:    "old-slug",
		Title:   "Old",
		Version: 4,
		Backups: []models.Backup{{Version: 3, Snapshot: json.RawMessage(`{}`)}},
	}

	entry, newVersion, err := m.BeforeUpdate(doc, "editor-1")
	if err != nil {
		t.Fatalf("BeforeUpdate: %v", err)
	}
	if newVersion != 5 {
		t.Fatalf("newVersion = %d, want 5", newVersion)
	}
	if entry.Version != 4 || entry.CreatedBy != "editor-1" || !entry.CreatedAt.Equal(m.now()) {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(entry.Snapshot, &raw); err != nil {
		t.Fatalf("snapshot is not JSON: %v", err)
	}
	if _, ok := raw["backups"]; ok {
		t.Fatal("snapshot must not contain backups")
	}
	if raw["slug"] != "old-slug" {
		t.Fatalf("snapshot slug = %v, want old-slug", raw["slug"])
	}
	// The source document is untouched
	if len(doc.Backups) != 1 {
		t.Fatal("BeforeUpdate mutated the document")
	}
}

func TestApply_EvictsOldestFirst(t *testing.T) {
	m := NewBackupManager(10)
	doc := &models.Portfolio{ID: "p-1", Version: 1}

	for i := 0; i < 12; i++ {
		entry, newVersion, err := m.BeforeUpdate(doc, "owner")
		if err != nil {
			t.Fatalf("BeforeUpdate: %v", err)
		}
		m.Apply(doc, entry, newVersion)
	}

	if doc.Version != 13 {
		t.Fatalf("version = %d, want 13", doc.Version)
	}
	if len(doc.Backups) != 10 {
		t.Fatalf("len(backups) = %d, want 10", len(doc.Backups))
	}
	for i, b := range doc.Backups {
		if want := i + 3; b.Version != want {
			t.Fatalf("backups[%d].Version = %d, want %d", i, b.Version, want)
		}
	}
}

func TestFindBackup(t *testing.T) {
	doc := &models.Portfolio{
		ID:      "p-1",
		Backups: []models.Backup{{Version: 2}, {Version: 3}},
	}

	b, err := FindBackup(doc, 3)
	if err != nil || b.Version != 3 {
		t.Fatalf("FindBackup(3) = %+v, %v", b, err)
	}
	if _, err := FindBackup(doc, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("FindBackup(1) error = %v, want not found", err)
	}
}

func TestDecodeSnapshot_RoundTrip(t *testing.T) {
	desc := "about me"
	doc := &models.Portfolio{
		ID:          "p-1",
		Title:       "Title",
		Description: &desc,
		Sections: []models.Section{
			{ID: "s1", Type: "about", Content: json.RawMessage(`{"text":"hi"}`)},
		},
		Version: 2,
	}

	snap, err := Snapshot(doc)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	restored, err := DecodeSnapshot(&models.Backup{Version: 2, Snapshot: snap})
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if restored.Title != "Title" || *restored.Description != "about me" || len(restored.Sections) != 1 {
		t.Fatalf("restored = %+v", restored)
	}
	if string(restored.Sections[0].Content) != `{"text":"hi"}` {
		t.Fatalf("section content = %s", restored.Sections[0].Content)
	}
}
