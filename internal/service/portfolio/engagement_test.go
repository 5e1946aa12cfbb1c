package portfolio

import (
	"context"
	"errors"
	"sync"
	"testing"

	"folio/internal/domain"
	"folio/internal/repository/memory"
	"folio/internal/service/auth"
)

func TestRecordView_ConcurrentIncrementsAreNotLost(t *testing.T) {
	repo := memory.NewPortfolioRepository()
	s := newTestService(t, repo)
	engagement := NewEngagementService(repo, auth.NewAccessEvaluator(), testLogger())
	ctx := context.Background()

	doc := mustCreate(t, s, "owner", "Popular")
	if _, err := s.Publish(ctx, doc.ID, "owner"); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(unique bool) {
			defer wg.Done()
			if _, err := engagement.RecordView(ctx, doc.ID, "", unique); err != nil {
				t.Errorf("RecordView: %v", err)
			}
		}(i%4 == 0)
	}
	wg.Wait()

	stored, err := repo.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Stats.Views != 100 {
		t.Fatalf("views = %d, want 100", stored.Stats.Views)
	}
	if stored.Stats.UniqueViews != 25 {
		t.Fatalf("unique views = %d, want 25", stored.Stats.UniqueViews)
	}
	if stored.Stats.UniqueViews > stored.Stats.Views {
		t.Fatal("unique views exceed views")
	}
	if stored.Stats.LastViewed == nil {
		t.Fatal("last viewed not set")
	}
	// Counters never version or back up the document
	if stored.Version != 2 || len(stored.Backups) != 1 {
		t.Fatalf("version=%d backups=%d, want 2 and 1", stored.Version, len(stored.Backups))
	}
}

func TestRecordShareAndDownload(t *testing.T) {
	repo := memory.NewPortfolioRepository()
	s := newTestService(t, repo)
	engagement := NewEngagementService(repo, auth.NewAccessEvaluator(), testLogger())
	ctx := context.Background()

	doc := mustCreate(t, s, "owner", "Shared")

	if _, err := engagement.RecordShare(ctx, doc.ID, "owner"); err != nil {
		t.Fatalf("RecordShare: %v", err)
	}
	stats, err := engagement.RecordDownload(ctx, doc.ID, "owner")
	if err != nil {
		t.Fatalf("RecordDownload: %v", err)
	}
	if stats.Shares != 1 || stats.Downloads != 1 || stats.Views != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestRecordView_PrivateHiddenFromStrangers(t *testing.T) {
	repo := memory.NewPortfolioRepository()
	s := newTestService(t, repo)
	engagement := NewEngagementService(repo, auth.NewAccessEvaluator(), testLogger())
	ctx := context.Background()

	doc := mustCreate(t, s, "owner", "Private")

	if _, err := engagement.RecordView(ctx, doc.ID, "stranger", true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if _, err := engagement.RecordView(ctx, "missing", "owner", false); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}

	stored, _ := repo.GetByID(ctx, doc.ID)
	if stored.Stats.Views != 0 {
		t.Fatalf("views = %d, want 0", stored.Stats.Views)
	}
}
