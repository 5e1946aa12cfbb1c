package mongo

import (
	"testing"
	"time"

	models "folio/internal/domain/models/portfolio"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestReplaceFields_NeverWritesStats(t *testing.T) {
	p := &models.Portfolio{
		ID:      "p-1",
		Slug:    "s",
		Version: 3,
		Stats:   models.Stats{Views: 10},
	}

	fields := replaceFields(p)
	for key := range fields {
		if key == "stats" || key == "_id" || key == "created_at" {
			t.Fatalf("replace must not write %q", key)
		}
	}
	if fields["version"] != 3 {
		t.Fatalf("version = %v, want 3", fields["version"])
	}
	// nil lists are stored as empty arrays
	if got, ok := fields["backups"].([]models.Backup); !ok || got == nil {
		t.Fatalf("backups = %#v, want empty slice", fields["backups"])
	}
}

func TestStatsUpdate(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	update := statsUpdate(models.StatsDelta{Views: 1, UniqueViews: 1, ViewedAt: &now})
	inc := update["$inc"].(bson.M)
	if inc["stats.views"] != int64(1) || inc["stats.unique_views"] != int64(1) {
		t.Fatalf("$inc = %v", inc)
	}
	set, ok := update["$set"].(bson.M)
	if !ok || !set["stats.last_viewed"].(time.Time).Equal(now) {
		t.Fatalf("$set = %v", update["$set"])
	}

	shareOnly := statsUpdate(models.StatsDelta{Shares: 1})
	if _, ok := shareOnly["$set"]; ok {
		t.Fatal("share must not touch last_viewed")
	}
}

func TestSlugFilter(t *testing.T) {
	if f := slugFilter("a", ""); len(f) != 1 {
		t.Fatalf("filter without exclusion = %v", f)
	}
	f := slugFilter("a", "p-1")
	ne, ok := f["_id"].(bson.M)
	if !ok || ne["$ne"] != "p-1" {
		t.Fatalf("filter with exclusion = %v", f)
	}
}
