// Package cache provides a short-lived result cache for stats queries. It absorbs bursts of identical
// queries: entries live for a fixed ttl and are never invalidated by ingestion.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"tracking-analytics/backend/internal/metrics"
)

// Key identifies a cached result. Storage is the short backend key; Canonical is the full
// parameter encoding, stored alongside the value and compared on read.
type Key struct {
	Storage   string
	Canonical string
}

type entry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// ResultCache is a read-through cache over a Backend.
type ResultCache struct {
	backend Backend
	ttl     time.Duration
	group   singleflight.Group
}

// New returns a ResultCache storing entries in backend for ttl.
func New(backend Backend, ttl time.Duration) *ResultCache {
	return &ResultCache{backend: backend, ttl: ttl}
}

// TTL returns the entry lifetime.
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}

// computeTimeout bounds a shared compute, which no longer follows any single caller's deadline.
const computeTimeout = 30 * time.Second

// GetOrCompute returns the cached value for key, or runs compute, stores its result and returns it.
// Concurrent misses for the same key share one compute call, run on a context detached from the
// callers' cancellation: a caller that gives up gets its own ctx.Err() while the others keep waiting.
// Errors from compute are returned and never cached. Backend failures are logged and bypassed.
// A nil cache always computes on ctx.
func GetOrCompute[T any](ctx context.Context, c *ResultCache, key Key, compute func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return compute(ctx)
	}
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if v, ok := lookup[T](ctx, c, key); ok {
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		return v, nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()

	ch := c.group.DoChan(key.Canonical, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), computeTimeout)
		defer cancel()
		v, err := compute(sctx)
		if err != nil {
			return nil, err
		}
		c.store(sctx, key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func lookup[T any](ctx context.Context, c *ResultCache, key Key) (T, bool) {
	var zero T
	raw, ok, err := c.backend.Get(ctx, key.Storage)
	if err != nil {
		log.Printf("cache: get %s: %v", key.Storage, err)
		metrics.CacheErrorsTotal.WithLabelValues("get").Inc()
		return zero, false
	}
	if !ok {
		return zero, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		log.Printf("cache: decode %s: %v", key.Storage, err)
		metrics.CacheErrorsTotal.WithLabelValues("decode").Inc()
		return zero, false
	}
	if e.Key != key.Canonical {
		// storage key collision; treat as a miss
		return zero, false
	}
	var v T
	if err := json.Unmarshal(e.Value, &v); err != nil {
		log.Printf("cache: decode %s: %v", key.Storage, err)
		metrics.CacheErrorsTotal.WithLabelValues("decode").Inc()
		return zero, false
	}
	return v, true
}

func (c *ResultCache) store(ctx context.Context, key Key, v any) {
	val, err := json.Marshal(v)
	if err != nil {
		log.Printf("cache: encode %s: %v", key.Storage, err)
		metrics.CacheErrorsTotal.WithLabelValues("set").Inc()
		return
	}
	raw, err := json.Marshal(entry{Key: key.Canonical, Value: val})
	if err != nil {
		metrics.CacheErrorsTotal.WithLabelValues("set").Inc()
		return
	}
	if err := c.backend.Set(ctx, key.Storage, raw, c.ttl); err != nil {
		log.Printf("cache: set %s: %v", key.Storage, err)
		metrics.CacheErrorsTotal.WithLabelValues("set").Inc()
	}
}
