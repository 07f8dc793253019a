package cache

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// Backend stores opaque cache payloads. Get reports ok=false on a miss; err is reserved for backend failures.
type Backend interface {
	Get(ctx context.Context, key string) (val []byte, ok bool, err error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// MemoryBackend is a size-bounded in-process backend. Each entry expires after the ttl passed to Set.
type MemoryBackend struct {
	lru *expirable.LRU[string, memEntry]
	now func() time.Time
}

type memEntry struct {
	val     []byte
	expires time.Time // zero: never
}

// NewMemoryBackend returns a backend holding at most size entries (0 means unbounded).
func NewMemoryBackend(size int) *MemoryBackend {
	// no LRU-wide ttl: expiry is per entry
	return &MemoryBackend{lru: expirable.NewLRU[string, memEntry](size, nil, 0), now: time.Now}
}

func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	e, ok := b.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !b.now().Before(e.expires) {
		b.lru.Remove(key)
		return nil, false, nil
	}
	return e.val, true, nil
}

// Set stores val for ttl. A non-positive ttl keeps the entry until it is evicted.
func (b *MemoryBackend) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	e := memEntry{val: val}
	if ttl > 0 {
		e.expires = b.now().Add(ttl)
	}
	b.lru.Add(key, e)
	return nil
}

// Len returns the number of stored entries. Expired entries count until they are read or evicted.
func (b *MemoryBackend) Len() int {
	return b.lru.Len()
}

// RedisBackend shares cache entries across server replicas.
type RedisBackend struct {
	client redis.UniversalClient
}

// NewRedisBackend wraps an existing client. The caller owns the client and closes it.
func NewRedisBackend(client redis.UniversalClient) *RedisBackend {
	return &RedisBackend{client: client}
}

// NewRedisBackendFromURL parses a redis:// URL and returns a backend with its own client.
func NewRedisBackendFromURL(url string) (*RedisBackend, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisBackend{client: redis.NewClient(opt)}, nil
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return b.client.Set(ctx, key, val, ttl).Err()
}

// Ping checks connectivity; used by the health service.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
