package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestTracker(t *testing.T) (*VisitTracker, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	tracker, err := NewVisitTracker("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create visit tracker: %v", err)
	}
	t.Cleanup(func() { tracker.Close() })
	return tracker, s
}

func TestFirstVisit_OncePerDay(t *testing.T) {
	tracker, _ := setupTestTracker(t)
	ctx := context.Background()
	tracker.now = func() time.Time { return time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC) }

	first, err := tracker.FirstVisit(ctx, "p-1", "visitor-a")
	if err != nil {
		t.Fatalf("FirstVisit failed: %v", err)
	}
	if !first {
		t.Fatal("expected first visit")
	}

	again, err := tracker.FirstVisit(ctx, "p-1", "visitor-a")
	if err != nil {
		t.Fatalf("FirstVisit failed: %v", err)
	}
	if again {
		t.Fatal("second visit on the same day counted as first")
	}

	// Other visitors and other portfolios are independent
	if other, _ := tracker.FirstVisit(ctx, "p-1", "visitor-b"); !other {
		t.Error("expected first visit for another visitor")
	}
	if other, _ := tracker.FirstVisit(ctx, "p-2", "visitor-a"); !other {
		t.Error("expected first visit for another portfolio")
	}
}

func TestFirstVisit_ExpiresAtEndOfDay(t *testing.T) {
	tracker, s := setupTestTracker(t)
	ctx := context.Background()
	tracker.now = func() time.Time { return time.Date(2026, 4, 10, 22, 0, 0, 0, time.UTC) }

	if _, err := tracker.FirstVisit(ctx, "p-1", "v"); err != nil {
		t.Fatalf("FirstVisit failed: %v", err)
	}

	key := tracker.key("p-1", "v", tracker.now())
	if ttl := s.TTL(key); ttl != 2*time.Hour {
		t.Fatalf("TTL = %v, want 2h", ttl)
	}

	s.FastForward(2 * time.Hour)
	if s.Exists(key) {
		t.Fatal("marker should expire at midnight UTC")
	}

	// Next day the same visitor is unique again
	tracker.now = func() time.Time { return time.Date(2026, 4, 11, 0, 0, 1, 0, time.UTC) }
	first, err := tracker.FirstVisit(ctx, "p-1", "v")
	if err != nil {
		t.Fatalf("FirstVisit failed: %v", err)
	}
	if !first {
		t.Fatal("expected first visit on the next day")
	}
}

func TestFirstVisit_RedisDown(t *testing.T) {
	tracker, s := setupTestTracker(t)
	s.Close()

	if _, err := tracker.FirstVisit(context.Background(), "p-1", "v"); err == nil {
		t.Fatal("expected error when redis is unavailable")
	}
}

func TestNewVisitTracker_BadURL(t *testing.T) {
	if _, err := NewVisitTracker("not a url"); err == nil {
		t.Fatal("expected parse error")
	}
}
