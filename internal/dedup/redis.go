package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisTTL bounds how long visited keys live so an abandoned crawl
// does not pin its visited set in Redis forever.
const DefaultRedisTTL = 24 * time.Hour

// RedisStore shares a visited set across crawler processes. Each crawl
// uses its own key prefix so concurrent crawls stay independent.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to Redis at addr and namespaces keys under
// prefix, typically the crawl or spider name.
func NewRedisStore(addr, prefix string, ttl time.Duration) (*RedisStore, error) {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("dedup: redis ping failed: %w", err)
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}, nil
}

// Seen marks the key with SETNX and reports whether another process (or an
// earlier request of this crawl) got there first.
func (r *RedisStore) Seen(ctx context.Context, key string) (bool, error) {
	set, err := r.client.SetNX(ctx, r.prefix+":seen:"+key, 1, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup: redis setnx failed: %w", err)
	}
	// SETNX succeeded means the key was new.
	return !set, nil
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
