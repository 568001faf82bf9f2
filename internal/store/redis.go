package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/golinks/internal/linkdir"
)

// RedisStore is a Redis implementation of linkdir.Repository and
// linkdir.UserRepository. Each link lives in a hash keyed by its canonical
// slug; Lua scripts keep Create insert-only and Increment atomic per key.
// An owner index set backs ListByOwner.
type RedisStore struct {
	client      *redis.Client
	linkPrefix  string // "link:" + relative key -> link hash
	ownerPrefix string // "links:owner:" + owner -> set of relative keys
	usersKey    string // set of verified user ids
}

// NewRedisStore creates a new Redis-backed link store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:      client,
		linkPrefix:  "link:",
		ownerPrefix: "links:owner:",
		usersKey:    "users",
	}
}

var createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then return 0 end
redis.call('HSET', KEYS[1],
	'target', ARGV[1], 'owner', ARGV[2], 'clicks', 0,
	'created', ARGV[3], 'updated', ARGV[3])
redis.call('SADD', KEYS[2], ARGV[4])
return 1
`)

var incrementScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
return redis.call('HINCRBY', KEYS[1], 'clicks', 1)
`)

var setTargetScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return 0 end
redis.call('HSET', KEYS[1], 'target', ARGV[1], 'updated', ARGV[2])
return 1
`)

var setOwnerScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return 0 end
local prev = redis.call('HGET', KEYS[1], 'owner')
redis.call('HSET', KEYS[1], 'owner', ARGV[1], 'updated', ARGV[2])
if prev then redis.call('SREM', ARGV[3] .. prev, ARGV[4]) end
redis.call('SADD', ARGV[3] .. ARGV[1], ARGV[4])
return 1
`)

var deleteScript = redis.NewScript(`
local owner = redis.call('HGET', KEYS[1], 'owner')
local removed = redis.call('DEL', KEYS[1])
if owner then redis.call('SREM', ARGV[1] .. owner, ARGV[2]) end
return removed
`)

func (r *RedisStore) linkKey(key linkdir.Key) string {
	return r.linkPrefix + key.Relative()
}

func (r *RedisStore) Get(ctx context.Context, key linkdir.Key) (*linkdir.Link, error) {
	fields, err := r.client.HGetAll(ctx, r.linkKey(key)).Result()
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, linkdir.ErrNotFound
	}

	return linkFromHash(key, fields)
}

func (r *RedisStore) Create(ctx context.Context, link *linkdir.Link) error {
	created, err := createScript.Run(ctx, r.client,
		[]string{r.linkKey(link.Key), r.ownerPrefix + link.Owner},
		link.Target, link.Owner, link.CreatedAt.UnixMilli(), link.Key.Relative(),
	).Int()
	if err != nil {
		return err
	}

	if created == 0 {
		return linkdir.ErrExists
	}

	return nil
}

func (r *RedisStore) SetTarget(ctx context.Context, key linkdir.Key, target string, updatedAt time.Time) error {
	updated, err := setTargetScript.Run(ctx, r.client,
		[]string{r.linkKey(key)},
		target, updatedAt.UnixMilli(),
	).Int()
	if err != nil {
		return err
	}

	if updated == 0 {
		return linkdir.ErrNotFound
	}

	return nil
}

func (r *RedisStore) SetOwner(ctx context.Context, key linkdir.Key, owner string, updatedAt time.Time) error {
	updated, err := setOwnerScript.Run(ctx, r.client,
		[]string{r.linkKey(key)},
		owner, updatedAt.UnixMilli(), r.ownerPrefix, key.Relative(),
	).Int()
	if err != nil {
		return err
	}

	if updated == 0 {
		return linkdir.ErrNotFound
	}

	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key linkdir.Key) (bool, error) {
	removed, err := deleteScript.Run(ctx, r.client,
		[]string{r.linkKey(key)},
		r.ownerPrefix, key.Relative(),
	).Int()
	if err != nil {
		return false, err
	}

	return removed > 0, nil
}

func (r *RedisStore) Increment(ctx context.Context, key linkdir.Key) (*linkdir.Link, error) {
	clicks, err := incrementScript.Run(ctx, r.client, []string{r.linkKey(key)}).Int64()
	if err != nil {
		return nil, err
	}

	if clicks < 0 {
		return nil, linkdir.ErrNotFound
	}

	fields, err := r.client.HGetAll(ctx, r.linkKey(key)).Result()
	if err != nil {
		return nil, err
	}

	link, err := linkFromHash(key, fields)
	if err != nil {
		return nil, err
	}

	// The script's return value is the authoritative count for this call.
	link.Clicks = clicks

	return link, nil
}

func (r *RedisStore) ListByOwner(ctx context.Context, owner string) ([]*linkdir.Link, error) {
	members, err := r.client.SMembers(ctx, r.ownerPrefix+owner).Result()
	if err != nil {
		return nil, err
	}

	var links []*linkdir.Link

	for _, member := range members {
		link, err := r.Get(ctx, linkdir.Key(member))
		if err != nil {
			if errors.Is(err, linkdir.ErrNotFound) {
				continue
			}

			return nil, err
		}

		links = append(links, link)
	}

	return links, nil
}

func (r *RedisStore) FindOrCreate(ctx context.Context, id string) (*linkdir.User, error) {
	if err := r.client.SAdd(ctx, r.usersKey, id).Err(); err != nil {
		return nil, err
	}

	return &linkdir.User{ID: id}, nil
}

func (r *RedisStore) Exists(ctx context.Context, id string) (bool, error) {
	return r.client.SIsMember(ctx, r.usersKey, id).Result()
}

// linkFromHash decodes the stored hash fields. Timestamps are stored as
// epoch milliseconds.
func linkFromHash(key linkdir.Key, fields map[string]string) (*linkdir.Link, error) {
	link := &linkdir.Link{
		Key:    key,
		Target: fields["target"],
		Owner:  fields["owner"],
	}

	if raw, ok := fields["clicks"]; ok {
		clicks, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode clicks for %s: %w", key.Relative(), err)
		}

		link.Clicks = clicks
	}

	if raw, ok := fields["created"]; ok {
		millis, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode created for %s: %w", key.Relative(), err)
		}

		link.CreatedAt = time.UnixMilli(millis)
	}

	if raw, ok := fields["updated"]; ok {
		millis, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode updated for %s: %w", key.Relative(), err)
		}

		link.UpdatedAt = time.UnixMilli(millis)
	}

	return link, nil
}

// Compile-time checks.
var (
	_ linkdir.Repository     = (*RedisStore)(nil)
	_ linkdir.UserRepository = (*RedisStore)(nil)
)
