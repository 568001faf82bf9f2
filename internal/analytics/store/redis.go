package store

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/golinks/internal/analytics"
)

const dayLayout = "2006-01-02"

// Redis persists analytics events as per-day counters: creations per day,
// and accesses per link per day.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a new Redis-backed analytics store.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		client: client,
		prefix: "stats:",
	}
}

func (r *Redis) SaveLinkCreated(ctx context.Context, event *analytics.LinkCreatedEvent) error {
	key := r.prefix + "created:" + event.CreatedAt.UTC().Format(dayLayout)

	return r.client.Incr(ctx, key).Err()
}

func (r *Redis) SaveLinkAccessed(ctx context.Context, event *analytics.LinkAccessedEvent) error {
	day := event.AccessedAt.UTC().Format(dayLayout)

	pipe := r.client.Pipeline()
	pipe.Incr(ctx, r.prefix+"accessed:"+day)
	pipe.HIncrBy(ctx, r.prefix+"accessed:links:"+day, event.Link, 1)
	_, err := pipe.Exec(ctx)

	return err
}

// Compile-time check.
var _ analytics.Store = (*Redis)(nil)
