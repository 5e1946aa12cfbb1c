// Package redis tracks unique portfolio visitors in Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// VisitTracker records one marker key per portfolio, visitor and UTC day
type VisitTracker struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewVisitTracker connects to redisURL and verifies the connection
func NewVisitTracker(redisURL string) (*VisitTracker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewVisitTrackerWithClient(client), nil
}

// NewVisitTrackerWithClient creates a tracker from an existing Redis client
func NewVisitTrackerWithClient(client *redis.Client) *VisitTracker {
	return &VisitTracker{
		client: client,
		prefix: "visit:",
		now:    time.Now,
	}
}

// key generates the Redis key for a visitor's visit to a portfolio on day
func (t *VisitTracker) key(portfolioID, visitorKey string, day time.Time) string {
	return fmt.Sprintf("%s%s:%s:%s", t.prefix, portfolioID, day.Format("2006-01-02"), visitorKey)
}

// FirstVisit reports whether this is the visitor's first visit today (UTC).
// The marker expires at the end of the day.
func (t *VisitTracker) FirstVisit(ctx context.Context, portfolioID, visitorKey string) (bool, error) {
	now := t.now().UTC()
	ttl := endOfDay(now).Sub(now)

	first, err := t.client.SetNX(ctx, t.key(portfolioID, visitorKey, now), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("record visit: %w", err)
	}
	return first, nil
}

// Ping checks the Redis connection
func (t *VisitTracker) Ping(ctx context.Context) error {
	return t.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (t *VisitTracker) Close() error {
	return t.client.Close()
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}
